// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"encoding/binary"
	"fmt"
	"strings"
)

const (
	// nameMaxLabelLength is the largest label length.
	nameMaxLabelLength = 63

	// nameMaxLength is the largest encoded name length.
	nameMaxLength = 255

	// namePointerMask selects the two bits marking a compression pointer.
	namePointerMask = 0xc0

	// nameMaxPointerJumps bounds the pointers followed while decoding a name.
	nameMaxPointerJumps = 5
)

// AppendName appends the uncompressed wire representation of name to b.
//
// Empty labels are skipped, so "example.com." and "example.com" produce
// the same bytes and "" encodes the root name.
func AppendName(b []byte, name string) ([]byte, error) {
	size := 1 // terminating zero
	for _, label := range strings.Split(name, ".") {
		if label == "" {
			continue
		}
		if len(label) > nameMaxLabelLength {
			return nil, fmt.Errorf("%w: %d bytes in %q", ErrLabelTooLong, len(label), name)
		}
		size += 1 + len(label)
		if size > nameMaxLength {
			return nil, fmt.Errorf("%w: %q", ErrNameTooLong, name)
		}
		b = append(b, byte(len(label)))
		b = append(b, label...)
	}
	return append(b, 0), nil
}

// UnpackName decodes the name starting at off inside msg, which must be
// the whole message so that compression pointers can be resolved.
//
// The returned offset is where the caller should continue parsing: right
// after the terminating zero, or right after the first pointer if the
// name is compressed.
func UnpackName(msg []byte, off int) (string, int, error) {
	var (
		labels []string
		pos    = off
		resume = -1
		jumps  = 0
	)
	for {
		if pos >= len(msg) {
			return "", off, fmt.Errorf("%w: name at offset %d", ErrTruncatedMessage, pos)
		}
		length := int(msg[pos])

		switch {
		case length&namePointerMask == namePointerMask:
			if pos+1 >= len(msg) {
				return "", off, fmt.Errorf("%w: at offset %d", ErrInvalidPointer, pos)
			}
			if resume < 0 {
				resume = pos + 2
			}
			jumps++
			if jumps > nameMaxPointerJumps {
				return "", off, fmt.Errorf("%w: at offset %d", ErrCompressionLoop, pos)
			}
			pos = int(binary.BigEndian.Uint16(msg[pos:pos+2]) & 0x3fff)

		case length == 0:
			if resume < 0 {
				resume = pos + 1
			}
			return strings.Join(labels, "."), resume, nil

		case length > nameMaxLabelLength:
			return "", off, fmt.Errorf("%w: 0x%02x at offset %d", ErrInvalidLabel, length, pos)

		default:
			pos++
			if pos+length > len(msg) {
				return "", off, fmt.Errorf("%w: label at offset %d", ErrTruncatedMessage, pos-1)
			}
			labels = append(labels, strings.ToValidUTF8(string(msg[pos:pos+length]), "\uFFFD"))
			pos += length
		}
	}
}
