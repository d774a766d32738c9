/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP message decoder
 */

package main

import (
	"encoding/binary"
	"fmt"
)

// Wire format:
//
//	2 bytes:  Version
//	2 bytes:  Code (operation or status)
//	4 bytes:  RequestID
//	variable: attribute groups
//	1 byte:   TagEnd
//	variable: document data, if any
//
// Each group starts with its delimiter tag, followed by attributes:
//
//	1 byte:   value tag
//	2+N bytes: name length, name
//	2+N bytes: value length, value
//
// An attribute with an empty name is an additional value of the
// preceding attribute.

// msgDecoder decodes a single message from a byte slice
type msgDecoder struct {
	data []byte // Input bytes
	off  int    // Current offset
}

// DecodeMessage parses an IPP message. It returns the decoded
// message and the remaining bytes following the end-of-attributes
// tag (the document data, for operations that carry one)
func DecodeMessage(data []byte) (*Message, []byte, error) {
	md := msgDecoder{data: data}

	if len(data) < 8 {
		return nil, nil, md.error(ErrMsgTruncated)
	}

	m := &Message{
		Version:   Version(binary.BigEndian.Uint16(data[0:2])),
		Code:      binary.BigEndian.Uint16(data[2:4]),
		RequestID: binary.BigEndian.Uint32(data[4:8]),
	}
	md.off = 8

	var group *Group
	var prev *Attribute

	for {
		tag, err := md.tag()
		if err != nil {
			return nil, nil, err
		}

		switch {
		case tag == TagZero:
			md.off-- // Report the offset of the tag itself
			return nil, nil, md.error(ErrMsgBadTag)

		case tag == TagEnd:
			return m, md.data[md.off:], nil

		case tag.IsGroup():
			group = m.AddGroup(tag)
			prev = nil

		default:
			name, err := md.bytes()
			if err != nil {
				return nil, nil, err
			}

			value, err := md.value(tag)
			if err != nil {
				return nil, nil, err
			}

			switch {
			case len(name) == 0:
				if prev == nil {
					return nil, nil, md.error(ErrMsgOrphanValue)
				}
				prev.Values = append(prev.Values, value)

			case group == nil:
				return nil, nil, md.error(ErrMsgNoGroup)

			default:
				group.Add(Attribute{
					Name:   string(name),
					Values: []Value{value},
				})
				prev = &group.Attrs[len(group.Attrs)-1]
			}
		}
	}
}

// tag fetches the next tag byte
func (md *msgDecoder) tag() (Tag, error) {
	if md.off >= len(md.data) {
		return TagZero, md.error(ErrMsgTruncated)
	}

	t := Tag(md.data[md.off])
	md.off++

	return t, nil
}

// bytes fetches a 2-byte length prefix followed by that many bytes
func (md *msgDecoder) bytes() ([]byte, error) {
	if md.off+2 > len(md.data) {
		return nil, md.error(ErrMsgTruncated)
	}

	length := int(binary.BigEndian.Uint16(md.data[md.off : md.off+2]))
	md.off += 2

	if md.off+length > len(md.data) {
		return nil, md.error(ErrMsgTruncated)
	}

	data := md.data[md.off : md.off+length]
	md.off += length

	return data, nil
}

// value fetches and unpacks a single tagged value
func (md *msgDecoder) value(tag Tag) (Value, error) {
	raw, err := md.bytes()
	if err != nil {
		return Value{}, err
	}

	var data ValueData

	switch tag.kind() {
	case kindInteger:
		if len(raw) != 4 {
			return Value{}, md.valueError(tag, len(raw))
		}
		data = Integer(binary.BigEndian.Uint32(raw))

	case kindBoolean:
		if len(raw) != 1 || raw[0] > 1 {
			return Value{}, md.valueError(tag, len(raw))
		}
		data = Boolean(raw[0] == 1)

	case kindString:
		data = String(raw)

	case kindRange:
		if len(raw) != 8 {
			return Value{}, md.valueError(tag, len(raw))
		}
		data = Range{
			Lower: int32(binary.BigEndian.Uint32(raw[0:4])),
			Upper: int32(binary.BigEndian.Uint32(raw[4:8])),
		}

	case kindResolution:
		if len(raw) != 9 {
			return Value{}, md.valueError(tag, len(raw))
		}
		data = Resolution{
			Xres:  int32(binary.BigEndian.Uint32(raw[0:4])),
			Yres:  int32(binary.BigEndian.Uint32(raw[4:8])),
			Units: raw[8],
		}

	default:
		// Copy, so the value doesn't alias the input buffer
		data = Binary(append([]byte(nil), raw...))
	}

	return Value{Tag: tag, Data: data}, nil
}

// error wraps a codec error with the current offset
func (md *msgDecoder) error(err error) error {
	return fmt.Errorf("%w at 0x%x", err, md.off)
}

// valueError wraps ErrMsgBadValue with tag and length detail
func (md *msgDecoder) valueError(tag Tag, length int) error {
	return fmt.Errorf("%w: %s of %d bytes at 0x%x",
		ErrMsgBadValue, tag, length, md.off)
}
