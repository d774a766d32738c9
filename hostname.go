/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Hostname and local address discovery
 */

package main

import (
	"net"
	"os"
	"strings"
)

// DefaultHostLabel is advertised when the machine hostname
// cannot be turned into a valid DNS label
const DefaultHostLabel = "ipp-emu"

// HostnameSanitize converts a free-form name into a DNS label:
// lower-cased, only alphanumerics and hyphens, each run of other
// characters collapsed into a single hyphen, no hyphen at either
// end. Any domain suffix is stripped first. If nothing valid
// remains, the default label is returned
func HostnameSanitize(name string) string {
	// Strip the domain suffix, ".local" or otherwise
	if i := strings.IndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}

	var label strings.Builder
	pending := false // A hyphen is owed before the next character

	for _, c := range strings.ToLower(name) {
		valid := c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
		if !valid {
			pending = label.Len() > 0
			continue
		}

		if pending {
			label.WriteByte('-')
			pending = false
		}

		label.WriteRune(c)
	}

	if label.Len() == 0 {
		return DefaultHostLabel
	}

	return label.String()
}

// Hostname returns the sanitized machine hostname with the
// ".local" suffix, suitable for mDNS advertising
func Hostname() string {
	name, err := os.Hostname()
	if err != nil {
		name = ""
	}

	return HostnameSanitize(name) + ".local"
}

// LocalIP guesses the machine's primary IP address by routing
// a UDP socket towards a public address; no packet is actually
// sent. Falls back to loopback
func LocalIP() net.IP {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return net.IPv4(127, 0, 0, 1)
	}
	defer conn.Close()

	return conn.LocalAddr().(*net.UDPAddr).IP
}
