// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"encoding/binary"
	"fmt"
	"math"
	"net/netip"
)

// answerTailSize is the size of the type, class, TTL, and data length
// fields following the name.
const answerTailSize = 10

// Answer is a resource record of the answer section.
type Answer struct {
	Name  string
	Type  uint16
	Class uint16
	TTL   uint32
	Data  []byte
}

// NewAddressAnswer returns an IN A record mapping name to addr.
//
// The addr MUST be an IPv4 address (or an IPv4-mapped IPv6 address).
func NewAddressAnswer(name string, addr netip.Addr, ttl uint32) Answer {
	a4 := addr.Unmap().As4()
	return Answer{
		Name:  name,
		Type:  TypeA,
		Class: ClassINET,
		TTL:   ttl,
		Data:  a4[:],
	}
}

// Address returns the IPv4 address carried by an address record. The
// second return value is false if the answer is not an address record.
func (a Answer) Address() (netip.Addr, bool) {
	if a.Type != TypeA || len(a.Data) != 4 {
		return netip.Addr{}, false
	}
	return netip.AddrFrom4([4]byte(a.Data)), true
}

// Append appends the wire representation of the answer to b.
func (a Answer) Append(b []byte) ([]byte, error) {
	if len(a.Data) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes of resource data", ErrTooManyRecords, len(a.Data))
	}
	b, err := AppendName(b, a.Name)
	if err != nil {
		return nil, err
	}
	b = binary.BigEndian.AppendUint16(b, a.Type)
	b = binary.BigEndian.AppendUint16(b, a.Class)
	b = binary.BigEndian.AppendUint32(b, a.TTL)
	b = binary.BigEndian.AppendUint16(b, uint16(len(a.Data)))
	return append(b, a.Data...), nil
}

// UnpackAnswer decodes the answer starting at off inside msg and returns
// the offset of the following byte. The resource data is copied.
func UnpackAnswer(msg []byte, off int) (Answer, int, error) {
	name, off, err := UnpackName(msg, off)
	if err != nil {
		return Answer{}, off, err
	}
	if len(msg)-off < answerTailSize {
		return Answer{}, off, fmt.Errorf("%w: answer needs %d bytes after the name, have %d",
			ErrTooShort, answerTailSize, len(msg)-off)
	}
	a := Answer{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[off : off+2]),
		Class: binary.BigEndian.Uint16(msg[off+2 : off+4]),
		TTL:   binary.BigEndian.Uint32(msg[off+4 : off+8]),
	}
	length := int(binary.BigEndian.Uint16(msg[off+8 : off+10]))
	off += answerTailSize
	if len(msg)-off < length {
		return Answer{}, off, fmt.Errorf("%w: answer declares %d bytes of data, have %d",
			ErrTruncatedMessage, length, len(msg)-off)
	}
	a.Data = make([]byte, length)
	copy(a.Data, msg[off:off+length])
	return a, off + length, nil
}
