/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Document conversion via external tools
 */

package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Converter turns a spooled document into a PDF. Convert returns
// the path of the produced file
type Converter interface {
	Convert(ctx context.Context, path string) (string, error)
}

// Ghostscript converts PostScript and PCL-ish input by shelling
// out to gs
type Ghostscript struct {
	Command string // Interpreter binary, normally "gs"
}

// NewGhostscript creates the converter
func NewGhostscript(command string) *Ghostscript {
	return &Ghostscript{Command: command}
}

// Convert implements Converter. On any failure the partial
// output, if created, is removed and the input file is left alone
func (gs *Ghostscript) Convert(ctx context.Context, path string) (string, error) {
	out := outputPath(path)

	cmd := exec.CommandContext(ctx, gs.Command,
		"-dSAFER", "-dBATCH", "-dNOPAUSE", "-dQUIET",
		"-sDEVICE=pdfwrite",
		"-sOutputFile="+out,
		path)

	if err := cmd.Run(); err != nil {
		os.Remove(out)
		return "", fmt.Errorf("%s: %s", gs.Command, err)
	}

	return out, nil
}

// outputPath derives the converted file name from the input,
// replacing the extension with .pdf
func outputPath(path string) string {
	if i := strings.LastIndexByte(path, '.'); i > 0 {
		path = path[:i]
	}

	return path + ".pdf"
}
