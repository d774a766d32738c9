/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * Configuration tests
 */

package main

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

// withConf saves and restores the global configuration around
// a test
func withConf(t *testing.T, body func()) {
	t.Helper()

	saved := Conf
	defer func() { Conf = saved }()

	body()
}

// writeConfFile drops a configuration file into a temp dir
func writeConfFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ConfFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %s", err)
	}

	return path
}

// TestConfLoadFile loads a complete configuration file
func TestConfLoadFile(t *testing.T) {
	withConf(t, func() {
		path := writeConfFile(t, `
[printer]
name = Back Office LaserJet
location = floor 3
uuid = 01234567-89ab-cdef-0123-456789abcdef
formats = application/pdf, image/jpeg
color = false
duplex = true

[network]
port = 7000
dns-sd = false
loopback-only = true
ipv6 = false

[spool]
directory = /tmp/jobs
retention = 30m

[convert]
enable = false
command = gsx
timeout = 1m

[logging]
level = debug
console-color = false
file = /tmp/ipp-emu.log
`)

		if err := confLoadFile(path); err != nil {
			t.Fatalf("load: %s", err)
		}

		if Conf.PrinterName != "Back Office LaserJet" {
			t.Errorf("printer.name: %q", Conf.PrinterName)
		}
		if Conf.Location != "floor 3" {
			t.Errorf("printer.location: %q", Conf.Location)
		}
		if Conf.Color || !Conf.Duplex {
			t.Errorf("capability flags: color %v, duplex %v",
				Conf.Color, Conf.Duplex)
		}

		formats := []string{"application/pdf", "image/jpeg"}
		if !reflect.DeepEqual(Conf.Formats, formats) {
			t.Errorf("printer.formats: %v", Conf.Formats)
		}

		if Conf.Port != 7000 {
			t.Errorf("network.port: %d", Conf.Port)
		}
		if Conf.DNSSdEnable || !Conf.LoopbackOnly || Conf.IPV6Enable {
			t.Errorf("network flags: dns-sd %v, loopback %v, ipv6 %v",
				Conf.DNSSdEnable, Conf.LoopbackOnly, Conf.IPV6Enable)
		}

		if Conf.SpoolDir != "/tmp/jobs" {
			t.Errorf("spool.directory: %q", Conf.SpoolDir)
		}
		if Conf.Retention != 30*time.Minute {
			t.Errorf("spool.retention: %s", Conf.Retention)
		}

		if Conf.ConvertEnable || Conf.ConvertCommand != "gsx" ||
			Conf.ConvertTimeout != time.Minute {
			t.Errorf("convert section: %v %q %s", Conf.ConvertEnable,
				Conf.ConvertCommand, Conf.ConvertTimeout)
		}

		if Conf.LogLevel != LogDebug || Conf.ColorConsole ||
			Conf.LogFile != "/tmp/ipp-emu.log" {
			t.Errorf("logging section: %v %v %q", Conf.LogLevel,
				Conf.ColorConsole, Conf.LogFile)
		}
	})
}

// TestConfDefaultsKept checks that unset keys keep their defaults
func TestConfDefaultsKept(t *testing.T) {
	withConf(t, func() {
		path := writeConfFile(t, "[printer]\nname = Lonely Key\n")

		if err := confLoadFile(path); err != nil {
			t.Fatalf("load: %s", err)
		}

		if Conf.PrinterName != "Lonely Key" {
			t.Errorf("printer.name: %q", Conf.PrinterName)
		}
		if Conf.Port != 6310 {
			t.Errorf("default port lost: %d", Conf.Port)
		}
		if Conf.Retention != time.Hour {
			t.Errorf("default retention lost: %s", Conf.Retention)
		}
	})
}

// TestConfMissingFile checks that a missing file is not an error
func TestConfMissingFile(t *testing.T) {
	withConf(t, func() {
		path := filepath.Join(t.TempDir(), ConfFileName)

		if err := confLoadFile(path); err != nil {
			t.Errorf("missing file: %s", err)
		}
	})
}

// TestConfBadValues feeds invalid values to the loader
func TestConfBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad port", "[network]\nport = 99999\n"},
		{"port not a number", "[network]\nport = many\n"},
		{"bad bool", "[printer]\ncolor = maybe\n"},
		{"bad duration", "[spool]\nretention = sometimes\n"},
		{"negative duration", "[spool]\nretention = -5m\n"},
		{"bad log level", "[logging]\nlevel = chatty\n"},
		{"empty formats", "[printer]\nformats = ,\n"},
	}

	for _, test := range tests {
		withConf(t, func() {
			path := writeConfFile(t, test.content)

			if err := confLoadFile(path); err == nil {
				t.Errorf("%s: error expected", test.name)
			}
		})
	}
}
