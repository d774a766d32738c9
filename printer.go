/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Printer identity, capabilities and state
 */

package main

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"
)

// PrinterState represents the IPP "printer-state" enum
type PrinterState int

// Printer states, RFC 8011
const (
	PrinterIdle       PrinterState = 3
	PrinterProcessing PrinterState = 4
	PrinterStopped    PrinterState = 5
)

// String returns the printer state keyword
func (s PrinterState) String() string {
	switch s {
	case PrinterIdle:
		return "idle"
	case PrinterProcessing:
		return "processing"
	case PrinterStopped:
		return "stopped"
	}

	return "unknown"
}

// PrinterInfo is the printer identity and capabilities,
// fixed at startup
type PrinterInfo struct {
	Name     string   // Printer name ("ty" in DNS-SD terms)
	Location string   // Human-readable location
	UUID     string   // Normalized UUID
	Formats  []string // Supported document MIME types
	Color    bool     // Color printing
	Duplex   bool     // Two-sided printing
	Staple   bool     // Stapling
	Copies   bool     // Multiple copies
	Host     string   // Advertised hostname (with domain suffix)
	Port     int      // TCP port
}

// URI returns the printer URI
func (info *PrinterInfo) URI() string {
	return fmt.Sprintf("ipp://%s:%d/%s", info.Host, info.Port, IppResourcePath)
}

// AdminURL returns the printer's administrative URL
func (info *PrinterInfo) AdminURL() string {
	return fmt.Sprintf("http://%s:%d/", info.Host, info.Port)
}

// Printer is the process-wide printer object. It is constructed
// once at startup and mutated only through the dispatcher
type Printer struct {
	Info      PrinterInfo // Identity and capabilities
	store     *JobStore   // Job registry
	startedAt time.Time   // For "printer-up-time"
	active    int32       // In-flight print operations
}

// NewPrinter creates the Printer
func NewPrinter(info PrinterInfo, store *JobStore) *Printer {
	return &Printer{
		Info:      info,
		store:     store,
		startedAt: time.Now(),
	}
}

// State derives the printer state from in-flight activity
func (p *Printer) State() PrinterState {
	if atomic.LoadInt32(&p.active) > 0 {
		return PrinterProcessing
	}

	return PrinterIdle
}

// StartJob and EndJob bracket an in-flight print operation
func (p *Printer) StartJob() { atomic.AddInt32(&p.active, 1) }
func (p *Printer) EndJob()   { atomic.AddInt32(&p.active, -1) }

// FormatSupported checks the document format against the
// advertised set
func (p *Printer) FormatSupported(format string) bool {
	for _, f := range p.Info.Formats {
		if strings.EqualFold(f, format) {
			return true
		}
	}

	return false
}

// Attributes builds the printer attributes group. When the
// request named specific attributes, only those are returned;
// requested names we don't know are silently ignored
func (p *Printer) Attributes(requested []string) Group {
	all := len(requested) == 0
	for _, name := range requested {
		if name == "all" {
			all = true
			break
		}
	}

	want := func(name string) bool {
		if all {
			return true
		}
		for _, r := range requested {
			if r == name {
				return true
			}
		}
		return false
	}

	group := Group{Tag: TagPrinterGroup}
	add := func(name string, tag Tag, data ValueData) {
		if want(name) {
			group.Add(MakeAttribute(name, tag, data))
		}
	}

	info := &p.Info

	add("printer-name", TagName, String(info.Name))
	add("printer-info", TagText, String(info.Name))
	add("printer-make-and-model", TagText, String(info.Name))
	add("printer-location", TagText, String(info.Location))
	add("printer-uuid", TagURI, String("urn:uuid:"+info.UUID))
	add("printer-uri-supported", TagURI, String(info.URI()))
	add("uri-authentication-supported", TagKeyword, String("none"))
	add("uri-security-supported", TagKeyword, String("none"))
	add("printer-state", TagEnum, Integer(p.State()))
	add("printer-state-reasons", TagKeyword, String("none"))
	add("printer-is-accepting-jobs", TagBoolean, Boolean(true))
	add("queued-job-count", TagInteger, Integer(p.store.ActiveCount()))
	add("printer-up-time", TagInteger,
		Integer(time.Since(p.startedAt)/time.Second+1))
	add("color-supported", TagBoolean, Boolean(info.Color))
	add("pdf-override-supported", TagKeyword, String("not-attempted"))
	add("charset-configured", TagCharset, String("utf-8"))
	add("charset-supported", TagCharset, String("utf-8"))
	add("natural-language-configured", TagLanguage, String("en-us"))
	add("generated-natural-language-supported", TagLanguage, String("en-us"))
	add("compression-supported", TagKeyword, String("none"))
	add("document-format-default", TagMimeType, String("application/octet-stream"))

	if want("document-format-supported") {
		attr := Attribute{Name: "document-format-supported"}
		for _, f := range info.Formats {
			attr.Values = append(attr.Values, Value{TagMimeType, String(f)})
		}
		group.Add(attr)
	}

	if want("ipp-versions-supported") {
		group.Add(Attribute{
			Name: "ipp-versions-supported",
			Values: []Value{
				{TagKeyword, String("1.1")},
				{TagKeyword, String("2.0")},
			},
		})
	}

	if want("operations-supported") {
		attr := Attribute{Name: "operations-supported"}
		for _, op := range supportedOps {
			attr.Values = append(attr.Values, Value{TagEnum, Integer(op)})
		}
		group.Add(attr)
	}

	if want("sides-supported") {
		attr := Attribute{Name: "sides-supported"}
		attr.Values = append(attr.Values, Value{TagKeyword, String("one-sided")})
		if info.Duplex {
			attr.Values = append(attr.Values,
				Value{TagKeyword, String("two-sided-long-edge")},
				Value{TagKeyword, String("two-sided-short-edge")})
		}
		group.Add(attr)
	}

	return group
}
