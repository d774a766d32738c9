/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP tags
 */

package main

import (
	"fmt"
)

// Tag represents an IPP tag. Tags below 0x10 are delimiters
// (group boundaries and the end-of-attributes marker), the
// rest are value tags
type Tag byte

// Delimiter tags
const (
	TagZero             Tag = 0x00 // Never valid on the wire
	TagOperationGroup   Tag = 0x01 // Operation attributes group
	TagJobGroup         Tag = 0x02 // Job attributes group
	TagEnd              Tag = 0x03 // End of attributes
	TagPrinterGroup     Tag = 0x04 // Printer attributes group
	TagUnsupportedGroup Tag = 0x05 // Unsupported attributes group
)

// Value tags
const (
	TagUnsupportedValue Tag = 0x10
	TagDefault          Tag = 0x11
	TagUnknown          Tag = 0x12
	TagNoValue          Tag = 0x13
	TagNotSettable      Tag = 0x15
	TagDeleteAttr       Tag = 0x16
	TagAdminDefine      Tag = 0x17

	TagInteger Tag = 0x21
	TagBoolean Tag = 0x22
	TagEnum    Tag = 0x23

	TagString          Tag = 0x30 // octetString
	TagDateTime        Tag = 0x31
	TagResolution      Tag = 0x32
	TagRange           Tag = 0x33
	TagBeginCollection Tag = 0x34
	TagTextLang        Tag = 0x35
	TagNameLang        Tag = 0x36
	TagEndCollection   Tag = 0x37

	TagText       Tag = 0x41
	TagName       Tag = 0x42
	TagKeyword    Tag = 0x44
	TagURI        Tag = 0x45
	TagURIScheme  Tag = 0x46
	TagCharset    Tag = 0x47
	TagLanguage   Tag = 0x48
	TagMimeType   Tag = 0x49
	TagMemberName Tag = 0x4a
)

// IsDelimiter reports whether the tag is a delimiter tag
func (t Tag) IsDelimiter() bool {
	return t < 0x10
}

// IsGroup reports whether the tag opens an attribute group
func (t Tag) IsGroup() bool {
	return t.IsDelimiter() && t != TagEnd && t != TagZero
}

// valueKind classifies value tags by the encoding of their payload
type valueKind int

const (
	kindBinary     valueKind = iota // Raw octets, carried as-is
	kindInteger                     // 4 bytes, big-endian, signed
	kindBoolean                     // 1 byte, 0 or 1
	kindString                      // Bytes, interpreted as a string
	kindRange                       // Two 4-byte integers
	kindResolution                  // Two 4-byte integers plus a unit byte
)

// kind returns the value encoding for the tag
//
// Tags this program has no use for (collections, dateTime,
// textWithLanguage, out-of-band tags) are carried as raw octets,
// so messages containing them still round-trip byte-exact.
// Collection members arrive on the wire as separate nameless
// attributes and are preserved as additional values of the
// begin-collection attribute, the way IPP/1.x parsers treat them
func (t Tag) kind() valueKind {
	switch t {
	case TagInteger, TagEnum:
		return kindInteger
	case TagBoolean:
		return kindBoolean
	case TagText, TagName, TagKeyword, TagURI, TagURIScheme,
		TagCharset, TagLanguage, TagMimeType, TagMemberName:
		return kindString
	case TagRange:
		return kindRange
	case TagResolution:
		return kindResolution
	}

	return kindBinary
}

// String returns the tag name
func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}

	return fmt.Sprintf("0x%2.2x", byte(t))
}

var tagNames = map[Tag]string{
	TagOperationGroup:   "operation-attributes-tag",
	TagJobGroup:         "job-attributes-tag",
	TagEnd:              "end-of-attributes-tag",
	TagPrinterGroup:     "printer-attributes-tag",
	TagUnsupportedGroup: "unsupported-attributes-tag",

	TagUnsupportedValue: "unsupported",
	TagDefault:          "default",
	TagUnknown:          "unknown",
	TagNoValue:          "no-value",
	TagNotSettable:      "not-settable",
	TagDeleteAttr:       "delete-attribute",
	TagAdminDefine:      "admin-define",

	TagInteger: "integer",
	TagBoolean: "boolean",
	TagEnum:    "enum",

	TagString:          "octetString",
	TagDateTime:        "dateTime",
	TagResolution:      "resolution",
	TagRange:           "rangeOfInteger",
	TagBeginCollection: "begCollection",
	TagTextLang:        "textWithLanguage",
	TagNameLang:        "nameWithLanguage",
	TagEndCollection:   "endCollection",

	TagText:       "textWithoutLanguage",
	TagName:       "nameWithoutLanguage",
	TagKeyword:    "keyword",
	TagURI:        "uri",
	TagURIScheme:  "uriScheme",
	TagCharset:    "charset",
	TagLanguage:   "naturalLanguage",
	TagMimeType:   "mimeMediaType",
	TagMemberName: "memberAttrName",
}
