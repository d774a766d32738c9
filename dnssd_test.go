/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * DNS-SD record assembly tests
 */

package main

import (
	"strings"
	"testing"
)

// testPrinterInfo returns a fixed identity for record tests
func testPrinterInfo() *PrinterInfo {
	return &PrinterInfo{
		Name:     "Acme LaserWriter 9000",
		Location: "floor 3",
		UUID:     "01234567-89ab-cdef-0123-456789abcdef",
		Formats:  []string{"application/pdf", "application/postscript"},
		Color:    true,
		Duplex:   true,
		Host:     "acme.local",
		Port:     6310,
	}
}

// txtValue finds a key in the record, "" if absent
func txtValue(txt DNSSdTxtRecord, key string) string {
	for _, item := range txt {
		if item.Key == key {
			return item.Value
		}
	}

	return ""
}

// TestPrinterTxtRecord checks the advertised TXT keys
func TestPrinterTxtRecord(t *testing.T) {
	txt := printerTxtRecord(testPrinterInfo(), PrinterIdle)

	tests := []struct{ key, value string }{
		{"txtvers", "1"},
		{"qtotal", "1"},
		{"rp", "ipp/print"},
		{"ty", "Acme LaserWriter 9000"},
		{"note", "floor 3"},
		{"pdl", "application/pdf,application/postscript"},
		{"UUID", "01234567-89ab-cdef-0123-456789abcdef"},
		{"Color", "T"},
		{"Duplex", "T"},
		{"Staple", "F"},
		{"Copies", "F"},
		{"printer-state", "3"},
		{"printer-type", "0xc"},
		{"adminurl", "http://acme.local:6310/"},
		{"usb_MFG", "Acme"},
		{"usb_MDL", "LaserWriter 9000"},
	}

	for _, test := range tests {
		if value := txtValue(txt, test.key); value != test.value {
			t.Errorf("%s: expected %q, present %q",
				test.key, test.value, value)
		}
	}

	if txtValue(txt, "URF") == "" {
		t.Errorf("URF key missing")
	}
}

// TestPrinterTxtRecordSingleWordName checks the vendor split of
// a name without a model part
func TestPrinterTxtRecordSingleWordName(t *testing.T) {
	info := testPrinterInfo()
	info.Name = "Printy"
	info.Location = ""

	txt := printerTxtRecord(info, PrinterIdle)

	if mfg := txtValue(txt, "usb_MFG"); mfg != "Printy" {
		t.Errorf("usb_MFG: %q", mfg)
	}

	for _, item := range txt {
		if item.Key == "usb_MDL" || item.Key == "note" {
			t.Errorf("empty %s must be omitted", item.Key)
		}
	}
}

// TestTxtRecordExport checks the key=value form handed to the
// mDNS responder
func TestTxtRecordExport(t *testing.T) {
	var txt DNSSdTxtRecord
	txt.Add("txtvers", "1")
	txt.AddFlag("Color", false)
	txt.AddNotEmpty("note", "")

	exported := txt.export()
	expected := []string{"txtvers=1", "Color=F"}

	if strings.Join(exported, " ") != strings.Join(expected, " ") {
		t.Errorf("expected %v, present %v", expected, exported)
	}
}
