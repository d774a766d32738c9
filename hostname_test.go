/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Hostname handling tests
 */

package main

import (
	"strings"
	"testing"
)

// TestHostnameSanitize tests DNS label derivation
func TestHostnameSanitize(t *testing.T) {
	tests := []struct{ in, out string }{
		{"myhost", "myhost"},
		{"MyHost", "myhost"},
		{"myhost.example.com", "myhost"},
		{"my host", "my-host"},
		{"My Printer!!", "my-printer"},
		{"--my--host--", "my-host"},
		{"büro-drucker", "b-ro-drucker"},
		{"printer42", "printer42"},

		// Nothing valid remains
		{"", DefaultHostLabel},
		{"###", DefaultHostLabel},
		{"...", DefaultHostLabel},
	}

	for _, test := range tests {
		out := HostnameSanitize(test.in)
		if out != test.out {
			t.Errorf("HostnameSanitize(%q): expected %q, present %q",
				test.in, test.out, out)
		}
	}
}

// TestHostname checks the advertised name shape
func TestHostname(t *testing.T) {
	name := Hostname()

	if !strings.HasSuffix(name, ".local") {
		t.Errorf("missing .local suffix: %q", name)
	}

	label := strings.TrimSuffix(name, ".local")
	if HostnameSanitize(label) != label {
		t.Errorf("advertised label not sanitized: %q", label)
	}
}

// TestLocalIP checks that address discovery never fails outright
func TestLocalIP(t *testing.T) {
	ip := LocalIP()
	if ip == nil {
		t.Errorf("no local address discovered")
	}
}
