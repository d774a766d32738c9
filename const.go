/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Configuration constants
 */

package main

import (
	"time"
)

const (
	// ProgramName is used in logs and the Server: header
	ProgramName = "ipp-emu"

	// ProgramVersion is the program version
	ProgramVersion = "0.1.0"

	// ConfFileName defines the name of the ipp-emu configuration file
	ConfFileName = "ipp-emu.conf"

	// PathConfDir defines the path to the configuration directory
	PathConfDir = "/etc/ipp-emu"

	// IppContentType is the MIME type of IPP message bodies
	IppContentType = "application/ipp"

	// IppResourcePath is the printer's resource path, both in the
	// printer URI and in the DNS-SD "rp" TXT key
	IppResourcePath = "ipp/print"

	// HTTPMaxBody limits the size of a single request body
	HTTPMaxBody = 128 * 1024 * 1024

	// HTTPIdleTimeout specifies how long an idle connection is
	// kept before it is closed
	HTTPIdleTimeout = 60 * time.Second

	// HTTPBodyTimeout specifies how much time a client has to
	// deliver a request body
	HTTPBodyTimeout = 5 * time.Minute
)
