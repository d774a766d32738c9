/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * UUID handling
 */

package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UUIDNormalize parses an UUID and reformats it into the
// standard form (xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx).
// Many common variations are recognized: "urn:" and "uuid:"
// prefixes, curly brackets, missing dashes, upper case.
// If the input is not a valid UUID, it returns an empty string
func UUIDNormalize(in string) string {
	s := strings.ToLower(in)
	s = strings.TrimPrefix(s, "urn:")
	s = strings.TrimPrefix(s, "uuid:")

	var digits [32]byte
	cnt := 0

	for i := 0; i < len(s); i++ {
		c := s[i]

		if '0' <= c && c <= '9' || 'a' <= c && c <= 'f' {
			if cnt == 32 {
				return ""
			}

			digits[cnt] = c
			cnt++
		}
	}

	if cnt != 32 {
		return ""
	}

	return fmt.Sprintf("%s-%s-%s-%s-%s",
		digits[0:8], digits[8:12], digits[12:16],
		digits[16:20], digits[20:32])
}

// UUIDGenerate returns a fresh random UUID in the standard form
func UUIDGenerate() string {
	return uuid.NewString()
}
