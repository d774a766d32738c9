/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * DNS-SD publisher
 */

package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/grandcat/zeroconf"
)

// CUPS printer-type bits used in the "printer-type" TXT key
const (
	printerTypeColor  = 0x000004
	printerTypeDuplex = 0x000008
	printerTypeStaple = 0x000040
	printerTypeCopies = 0x000080
)

// airprintURF is the raster capability string mobile clients
// expect in the "URF" TXT key
const airprintURF = "CP1,IS1-5-7,MT1-2-8-9-10-11,OB10,PQ4,RS300,SRGB24,V1.4,W8"

// DNSSdTxtItem represents a single TXT record item
type DNSSdTxtItem struct {
	Key, Value string
}

// DNSSdTxtRecord represents a TXT record
type DNSSdTxtRecord []DNSSdTxtItem

// Add adds an item to the record
func (txt *DNSSdTxtRecord) Add(key, value string) {
	*txt = append(*txt, DNSSdTxtItem{key, value})
}

// AddNotEmpty adds an item if its value is not empty.
// It returns true if the item was actually added
func (txt *DNSSdTxtRecord) AddNotEmpty(key, value string) bool {
	if value == "" {
		return false
	}

	txt.Add(key, value)
	return true
}

// AddFlag adds a boolean item in the "T"/"F" convention
func (txt *DNSSdTxtRecord) AddFlag(key string, value bool) {
	if value {
		txt.Add(key, "T")
	} else {
		txt.Add(key, "F")
	}
}

// export formats the record for registration
func (txt DNSSdTxtRecord) export() []string {
	exported := make([]string, 0, len(txt))
	for _, item := range txt {
		exported = append(exported, item.Key+"="+item.Value)
	}

	return exported
}

// DNSSdPublisher advertises the printer as an _ipp._tcp service.
// It registers once at startup and unregisters at shutdown;
// neither is on any request's critical path
type DNSSdPublisher struct {
	instance string           // Service instance name
	host     string           // Advertised host (DNS label + domain)
	ip       string           // Advertised address
	port     int              // TCP port
	txt      DNSSdTxtRecord   // TXT record
	server   *zeroconf.Server // Underlying mDNS responder
}

// NewDNSSdPublisher creates the publisher for the printer
func NewDNSSdPublisher(printer *Printer) *DNSSdPublisher {
	info := &printer.Info

	return &DNSSdPublisher{
		instance: info.Name,
		host:     info.Host,
		ip:       LocalIP().String(),
		port:     info.Port,
		txt:      printerTxtRecord(info, printer.State()),
	}
}

// printerTxtRecord builds the TXT record from the printer
// identity. Key set and order follow what IPP clients (CUPS,
// mobile OS print dialogs) look for
func printerTxtRecord(info *PrinterInfo, state PrinterState) DNSSdTxtRecord {
	var txt DNSSdTxtRecord

	txt.Add("txtvers", "1")
	txt.Add("qtotal", "1")
	txt.Add("rp", IppResourcePath)
	txt.Add("ty", info.Name)
	txt.Add("adminurl", info.AdminURL())
	txt.AddNotEmpty("note", info.Location)
	txt.Add("pdl", strings.Join(info.Formats, ","))
	txt.Add("UUID", info.UUID)
	txt.AddFlag("Color", info.Color)
	txt.AddFlag("Duplex", info.Duplex)
	txt.AddFlag("Staple", info.Staple)
	txt.AddFlag("Copies", info.Copies)
	txt.Add("printer-state", strconv.Itoa(int(state)))
	txt.Add("printer-type", fmt.Sprintf("0x%x", printerTypeBits(info)))
	txt.Add("URF", airprintURF)

	// Vendor and model identifiers for mobile discovery
	mfg, mdl := info.Name, ""
	if i := strings.IndexByte(info.Name, ' '); i > 0 {
		mfg, mdl = info.Name[:i], info.Name[i+1:]
	}
	txt.Add("usb_MFG", mfg)
	txt.AddNotEmpty("usb_MDL", mdl)

	return txt
}

// printerTypeBits computes the CUPS printer-type bitmask
func printerTypeBits(info *PrinterInfo) int {
	bits := 0
	if info.Color {
		bits |= printerTypeColor
	}
	if info.Duplex {
		bits |= printerTypeDuplex
	}
	if info.Staple {
		bits |= printerTypeStaple
	}
	if info.Copies {
		bits |= printerTypeCopies
	}

	return bits
}

// Publish registers the service. A failure here is fatal for
// the caller: a printer nobody can discover is of no use
func (publisher *DNSSdPublisher) Publish() error {
	server, err := zeroconf.RegisterProxy(
		publisher.instance,
		"_ipp._tcp", "local.",
		publisher.port,
		strings.TrimSuffix(publisher.host, ".local"),
		[]string{publisher.ip},
		publisher.txt.export(),
		nil)

	if err != nil {
		return fmt.Errorf("DNS-SD: %s", err)
	}

	publisher.server = server

	Log.Info("DNS-SD: %q published at %s:%d",
		publisher.instance, publisher.ip, publisher.port)
	for _, item := range publisher.txt {
		Log.Debug("  %s=%s", item.Key, item.Value)
	}

	return nil
}

// Unpublish removes the service
func (publisher *DNSSdPublisher) Unpublish() {
	if publisher.server != nil {
		publisher.server.Shutdown()
		publisher.server = nil
	}

	Log.Info("DNS-SD: %q removed", publisher.instance)
}
