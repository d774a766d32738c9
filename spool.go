/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Spool directory: persisting received documents
 */

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// FileSink saves finalized documents into the spool directory
// and, when a converter is configured, hands each saved file to
// it on a separate goroutine. The Print-Job response never waits
// for conversion
type FileSink struct {
	dir       string        // Spool directory
	converter Converter     // nil if conversion is disabled
	timeout   time.Duration // Converter run time limit
}

// NewFileSink creates the sink. The directory must exist
func NewFileSink(dir string, converter Converter, timeout time.Duration) *FileSink {
	return &FileSink{
		dir:       dir,
		converter: converter,
		timeout:   timeout,
	}
}

// Consume implements DocumentSink
func (sink *FileSink) Consume(job *Job) (string, error) {
	name := fmt.Sprintf("job-%d.%s", job.ID, formatExtension(job.Format))
	path := filepath.Join(sink.dir, name)

	err := os.WriteFile(path, job.Data, 0644)
	if err != nil {
		return "", err
	}

	Log.Info("JOB %d: saved to %s", job.ID, path)

	if sink.converter != nil && formatConvertible(job.Format) {
		go sink.convert(job.ID, path)
	}

	return path, nil
}

// convert runs the converter with a bounded timeout. A failure
// is logged and the original artifact is left untouched
func (sink *FileSink) convert(id int, path string) {
	ctx, cancel := context.WithTimeout(context.Background(), sink.timeout)
	defer cancel()

	out, err := sink.converter.Convert(ctx, path)
	if err != nil {
		Log.Error("JOB %d: conversion failed: %s", id, err)
		return
	}

	Log.Info("JOB %d: converted to %s", id, out)
}

// formatExtension maps the document MIME type to a file extension
func formatExtension(format string) string {
	switch format {
	case "application/pdf":
		return "pdf"
	case "application/postscript":
		return "ps"
	case "image/pwg-raster":
		return "pwg"
	case "image/urf":
		return "urf"
	case "image/jpeg":
		return "jpg"
	case "text/plain":
		return "txt"
	}

	return "bin"
}

// formatConvertible reports whether the document is worth
// feeding to the PDF converter. PDF input is left as-is
func formatConvertible(format string) bool {
	return format == "application/postscript" ||
		format == "application/octet-stream"
}
