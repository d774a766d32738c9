/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Common errors
 */

package main

import (
	"errors"
)

// Error values for ipp-emu
var (
	ErrUnknownJob   = errors.New("no such job")
	ErrInvalidState = errors.New("job is in the wrong state")
	ErrChunkFraming = errors.New("invalid chunked framing")
)

// Message codec errors. The decoder wraps them with the
// offset of the offending byte
var (
	ErrMsgTruncated   = errors.New("message truncated")
	ErrMsgBadTag      = errors.New("invalid tag")
	ErrMsgBadValue    = errors.New("invalid value encoding")
	ErrMsgNoGroup     = errors.New("attribute outside of a group")
	ErrMsgOrphanValue = errors.New("additional value without preceding attribute")
	ErrMsgTooLong     = errors.New("name or value exceeds 64 KiB")
)
