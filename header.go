// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"encoding/binary"
	"fmt"

	"github.com/miekg/dns"
)

// HeaderSize is the size of the fixed DNS header.
const HeaderSize = 12

// MaxMessageSize is the largest datagram we send or accept.
const MaxMessageSize = 512

// Flag patterns used by this package. The flags field is otherwise opaque.
const (
	// FlagsQuery is a standard query with recursion desired.
	FlagsQuery uint16 = 0x0100

	// FlagsResponse is a standard response with recursion available.
	FlagsResponse uint16 = 0x8180

	// FlagsNotFound is OR-ed into [FlagsResponse] when the name is unknown.
	FlagsNotFound uint16 = dns.RcodeNameError
)

// Record types and classes.
const (
	// TypeA is the IPv4 address record type.
	TypeA = dns.TypeA

	// ClassINET is the Internet class.
	ClassINET uint16 = dns.ClassINET
)

// Header is the fixed 12-byte DNS message header.
type Header struct {
	ID              uint16
	Flags           uint16
	QuestionCount   uint16
	AnswerCount     uint16
	AuthorityCount  uint16
	AdditionalCount uint16
}

// Rcode returns the response code stored in the low four bits of the flags.
func (h Header) Rcode() uint16 {
	return h.Flags & 0x000f
}

// Append appends the wire representation of the header to b.
func (h Header) Append(b []byte) []byte {
	b = binary.BigEndian.AppendUint16(b, h.ID)
	b = binary.BigEndian.AppendUint16(b, h.Flags)
	b = binary.BigEndian.AppendUint16(b, h.QuestionCount)
	b = binary.BigEndian.AppendUint16(b, h.AnswerCount)
	b = binary.BigEndian.AppendUint16(b, h.AuthorityCount)
	return binary.BigEndian.AppendUint16(b, h.AdditionalCount)
}

// UnpackHeader decodes the header at the beginning of msg.
func UnpackHeader(msg []byte) (Header, error) {
	if len(msg) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTooShort, HeaderSize, len(msg))
	}
	h := Header{
		ID:              binary.BigEndian.Uint16(msg[0:2]),
		Flags:           binary.BigEndian.Uint16(msg[2:4]),
		QuestionCount:   binary.BigEndian.Uint16(msg[4:6]),
		AnswerCount:     binary.BigEndian.Uint16(msg[6:8]),
		AuthorityCount:  binary.BigEndian.Uint16(msg[8:10]),
		AdditionalCount: binary.BigEndian.Uint16(msg[10:12]),
	}
	return h, nil
}
