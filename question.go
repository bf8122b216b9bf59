// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"encoding/binary"
	"fmt"
)

// questionTailSize is the size of the type and class fields following the name.
const questionTailSize = 4

// Question is an entry of the question section.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// Append appends the wire representation of the question to b.
func (q Question) Append(b []byte) ([]byte, error) {
	b, err := AppendName(b, q.Name)
	if err != nil {
		return nil, err
	}
	b = binary.BigEndian.AppendUint16(b, q.Type)
	return binary.BigEndian.AppendUint16(b, q.Class), nil
}

// UnpackQuestion decodes the question starting at off inside msg and
// returns the offset of the following byte.
func UnpackQuestion(msg []byte, off int) (Question, int, error) {
	name, off, err := UnpackName(msg, off)
	if err != nil {
		return Question{}, off, err
	}
	if len(msg)-off < questionTailSize {
		return Question{}, off, fmt.Errorf("%w: question needs %d bytes after the name, have %d",
			ErrTooShort, questionTailSize, len(msg)-off)
	}
	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[off : off+2]),
		Class: binary.BigEndian.Uint16(msg[off+2 : off+4]),
	}
	return q, off + questionTailSize, nil
}
