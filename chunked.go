/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Chunked request bodies and the raw-frame workaround
 */

package main

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Some mobile print clients declare "Transfer-Encoding: chunked"
// but then deliver the IPP message as one raw frame, without
// chunk-size lines. An IPP message always starts with its version
// bytes, and no valid chunk-size line does, so the first byte
// tells the two apart.
//
// This is a workaround for specific clients, not general HTTP
// behaviour: the raw sniff deliberately runs before standard
// chunk parsing.

// looksLikeRawIPP reports whether the bytes open an IPP message
// rather than a chunk-size line. 0x01 and 0x02 are the known
// major versions of the protocol
func looksLikeRawIPP(prefix []byte) bool {
	return len(prefix) > 0 && (prefix[0] == 0x01 || prefix[0] == 0x02)
}

// readChunked decodes a standard chunked body: hex chunk-size
// line, CRLF-terminated chunk data, zero-size terminator and
// optional trailer lines. Framing violations are reported as
// ErrChunkFraming
func readChunked(br *bufio.Reader, limit int) ([]byte, error) {
	var body bytes.Buffer

	for {
		line, err := readChunkLine(br)
		if err != nil {
			return nil, err
		}

		// Chunk extensions, if any, follow a semicolon
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}

		size, err := strconv.ParseUint(strings.TrimSpace(line), 16, 31)
		if err != nil {
			return nil, fmt.Errorf("%w: bad chunk size %q",
				ErrChunkFraming, line)
		}

		if size == 0 {
			break
		}

		if body.Len()+int(size) > limit {
			return nil, fmt.Errorf("%w: body exceeds %d bytes",
				ErrChunkFraming, limit)
		}

		if _, err := io.CopyN(&body, br, int64(size)); err != nil {
			return nil, fmt.Errorf("%w: chunk data truncated",
				ErrChunkFraming)
		}

		// Chunk data is followed by CRLF
		crlf := make([]byte, 2)
		if _, err := io.ReadFull(br, crlf); err != nil ||
			crlf[0] != '\r' || crlf[1] != '\n' {
			return nil, fmt.Errorf("%w: missing chunk terminator",
				ErrChunkFraming)
		}
	}

	// Consume trailer lines up to the final empty line
	for {
		line, err := readChunkLine(br)
		if err != nil {
			return nil, err
		}

		if line == "" {
			break
		}
	}

	return body.Bytes(), nil
}

// readChunkLine reads a single CRLF-terminated line
func readChunkLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrChunkFraming, err)
	}

	return strings.TrimRight(line, "\r\n"), nil
}
