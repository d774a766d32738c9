/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP message model
 */

package main

import (
	"encoding/binary"
	"fmt"
)

// Version represents an IPP protocol version, major and minor
// parts packed into a 16-bit word
type Version uint16

// DefaultVersion is IPP 2.0
const DefaultVersion Version = 0x0200

// MakeVersion makes Version from major and minor parts
func MakeVersion(major, minor uint8) Version {
	return Version(major)<<8 | Version(minor)
}

// Major returns the major part of the version
func (v Version) Major() uint8 {
	return uint8(v >> 8)
}

// Minor returns the minor part of the version
func (v Version) Minor() uint8 {
	return uint8(v)
}

// String converts the version to a string ("2.0" and so on)
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major(), v.Minor())
}

// Message represents a single IPP message, either a request
// or a response. Code carries the operation code in requests
// and the status code in responses
type Message struct {
	Version   Version // Protocol version
	Code      uint16  // Op for requests, Status for responses
	RequestID uint32  // Set by client, mirrored by server
	Groups    []Group // Attribute groups, in wire order
}

// Group is a delimited group of attributes
type Group struct {
	Tag   Tag         // Group delimiter tag
	Attrs []Attribute // Attributes of the group
}

// Attribute is a named sequence of tagged values
type Attribute struct {
	Name   string  // Attribute name
	Values []Value // One or more values
}

// Value is a single tagged attribute value
type Value struct {
	Tag  Tag       // Value tag
	Data ValueData // Decoded payload
}

// ValueData is implemented by the concrete value types
type ValueData interface {
	encode() []byte
	String() string
}

// Integer is the payload of integer and enum values
type Integer int32

func (v Integer) encode() []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	return buf[:]
}

func (v Integer) String() string { return fmt.Sprintf("%d", int32(v)) }

// Boolean is the payload of boolean values
type Boolean bool

func (v Boolean) encode() []byte {
	if v {
		return []byte{1}
	}
	return []byte{0}
}

func (v Boolean) String() string { return fmt.Sprintf("%t", bool(v)) }

// String is the payload of all character-string values
type String string

func (v String) encode() []byte { return []byte(v) }
func (v String) String() string { return string(v) }

// Binary is the payload of octetString values and of any
// value tag this program doesn't interpret
type Binary []byte

func (v Binary) encode() []byte { return []byte(v) }
func (v Binary) String() string { return fmt.Sprintf("%x", []byte(v)) }

// Range is the payload of rangeOfInteger values
type Range struct {
	Lower, Upper int32
}

func (v Range) encode() []byte {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(v.Lower))
	binary.BigEndian.PutUint32(buf[4:8], uint32(v.Upper))
	return buf[:]
}

func (v Range) String() string { return fmt.Sprintf("%d-%d", v.Lower, v.Upper) }

// Resolution is the payload of resolution values. Units is
// 3 for dots per inch, 4 for dots per centimeter
type Resolution struct {
	Xres, Yres int32
	Units      uint8
}

func (v Resolution) encode() []byte {
	var buf [9]byte
	binary.BigEndian.PutUint32(buf[0:4], uint32(v.Xres))
	binary.BigEndian.PutUint32(buf[4:8], uint32(v.Yres))
	buf[8] = v.Units
	return buf[:]
}

func (v Resolution) String() string {
	unit := "unknown"
	switch v.Units {
	case 3:
		unit = "dpi"
	case 4:
		unit = "dpcm"
	}
	return fmt.Sprintf("%dx%d %s", v.Xres, v.Yres, unit)
}

// NewRequest creates a new request message
func NewRequest(v Version, op Op, id uint32) *Message {
	return &Message{
		Version:   v,
		Code:      uint16(op),
		RequestID: id,
	}
}

// NewResponse creates a new response message
func NewResponse(v Version, status Status, id uint32) *Message {
	return &Message{
		Version:   v,
		Code:      uint16(status),
		RequestID: id,
	}
}

// MakeAttribute makes a single-value attribute
func MakeAttribute(name string, tag Tag, data ValueData) Attribute {
	return Attribute{
		Name:   name,
		Values: []Value{{tag, data}},
	}
}

// Add appends an attribute to the group
func (g *Group) Add(attr Attribute) {
	g.Attrs = append(g.Attrs, attr)
}

// AddGroup appends a group to the message and returns it
// for population
func (m *Message) AddGroup(tag Tag) *Group {
	m.Groups = append(m.Groups, Group{Tag: tag})
	return &m.Groups[len(m.Groups)-1]
}

// Group returns the first group with the given tag, nil if none
func (m *Message) Group(tag Tag) *Group {
	for i := range m.Groups {
		if m.Groups[i].Tag == tag {
			return &m.Groups[i]
		}
	}

	return nil
}

// Attr returns the named attribute of the first group with the
// given tag, nil if absent
func (m *Message) Attr(group Tag, name string) *Attribute {
	g := m.Group(group)
	if g == nil {
		return nil
	}

	for i := range g.Attrs {
		if g.Attrs[i].Name == name {
			return &g.Attrs[i]
		}
	}

	return nil
}

// StrAttr returns the named attribute of the group as a string,
// "" if absent or not a string
func (m *Message) StrAttr(group Tag, name string) string {
	attr := m.Attr(group, name)
	if attr == nil || len(attr.Values) == 0 {
		return ""
	}

	if s, ok := attr.Values[0].Data.(String); ok {
		return string(s)
	}

	return ""
}

// IntAttr returns the named attribute of the group as an int.
// The second return value is false if the attribute is absent
// or not an integer
func (m *Message) IntAttr(group Tag, name string) (int, bool) {
	attr := m.Attr(group, name)
	if attr == nil || len(attr.Values) == 0 {
		return 0, false
	}

	if v, ok := attr.Values[0].Data.(Integer); ok {
		return int(v), true
	}

	return 0, false
}

// StrsAttr returns all string values of the named attribute
func (m *Message) StrsAttr(group Tag, name string) []string {
	attr := m.Attr(group, name)
	if attr == nil {
		return nil
	}

	var strs []string
	for _, v := range attr.Values {
		if s, ok := v.Data.(String); ok {
			strs = append(strs, string(s))
		}
	}

	return strs
}
