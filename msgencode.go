/* ipp-emu - Virtual IPP printer, advertised over DNS-SD
 *
 * Copyright (C) 2026 and up by the ipp-emu authors
 * See LICENSE for license terms and conditions
 *
 * IPP message encoder
 */

package main

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeBytes encodes the message into a byte slice.
// DecodeMessage is its exact inverse for any well-formed message
func (m *Message) EncodeBytes() ([]byte, error) {
	var buf bytes.Buffer

	err := m.Encode(&buf)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Encode writes the encoded message to out
func (m *Message) Encode(out io.Writer) error {
	var buf bytes.Buffer

	var hdr [8]byte
	binary.BigEndian.PutUint16(hdr[0:2], uint16(m.Version))
	binary.BigEndian.PutUint16(hdr[2:4], m.Code)
	binary.BigEndian.PutUint32(hdr[4:8], m.RequestID)
	buf.Write(hdr[:])

	for i := range m.Groups {
		g := &m.Groups[i]

		if !g.Tag.IsGroup() {
			return fmt.Errorf("%s: not a group tag", g.Tag)
		}

		buf.WriteByte(byte(g.Tag))

		for _, attr := range g.Attrs {
			err := encodeAttribute(&buf, attr)
			if err != nil {
				return err
			}
		}
	}

	buf.WriteByte(byte(TagEnd))

	_, err := out.Write(buf.Bytes())
	return err
}

// encodeAttribute encodes a single attribute. The first value
// carries the attribute name, additional values go with an
// empty name
func encodeAttribute(buf *bytes.Buffer, attr Attribute) error {
	if len(attr.Values) == 0 {
		return fmt.Errorf("%q: attribute without values", attr.Name)
	}

	name := attr.Name
	for _, v := range attr.Values {
		if v.Tag.IsDelimiter() {
			return fmt.Errorf("%q: %s: not a value tag", attr.Name, v.Tag)
		}

		data := v.Data.encode()
		if len(name) > 0xffff || len(data) > 0xffff {
			return fmt.Errorf("%q: %w", attr.Name, ErrMsgTooLong)
		}

		buf.WriteByte(byte(v.Tag))
		encodeU16(buf, len(name))
		buf.WriteString(name)
		encodeU16(buf, len(data))
		buf.Write(data)

		name = ""
	}

	return nil
}

// encodeU16 writes a 2-byte big-endian length
func encodeU16(buf *bytes.Buffer, n int) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(n))
	buf.Write(b[:])
}
