// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"fmt"
	"math"

	"github.com/miekg/dns"
)

// Message is a DNS message containing only questions and answers.
//
// Authority and additional records are neither encoded nor decoded.
type Message struct {
	Header    Header
	Questions []Question
	Answers   []Answer
}

// Pack returns the wire representation of the message.
//
// The question and answer counts are taken from the sections rather than
// from the header, and the authority and additional counts are zero, so
// the counts always match the records that follow.
func (m *Message) Pack() ([]byte, error) {
	if len(m.Questions) > math.MaxUint16 || len(m.Answers) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d questions, %d answers", ErrTooManyRecords, len(m.Questions), len(m.Answers))
	}
	header := m.Header
	header.QuestionCount = uint16(len(m.Questions))
	header.AnswerCount = uint16(len(m.Answers))
	header.AuthorityCount = 0
	header.AdditionalCount = 0

	buf := header.Append(make([]byte, 0, MaxMessageSize))
	var err error
	for i, q := range m.Questions {
		if buf, err = q.Append(buf); err != nil {
			return nil, fmt.Errorf("question #%d: %w", i, err)
		}
	}
	for i, a := range m.Answers {
		if buf, err = a.Append(buf); err != nil {
			return nil, fmt.Errorf("answer #%d: %w", i, err)
		}
	}
	return buf, nil
}

// ParseMessage decodes the header followed by exactly as many questions
// and answers as the header declares. Any failure aborts the whole decode.
func ParseMessage(raw []byte) (*Message, error) {
	header, err := UnpackHeader(raw)
	if err != nil {
		return nil, err
	}

	// The counts only bound the iterations: we never preallocate from them.
	msg := &Message{Header: header}
	off := HeaderSize
	for i := 0; i < int(header.QuestionCount); i++ {
		var q Question
		if q, off, err = UnpackQuestion(raw, off); err != nil {
			return nil, fmt.Errorf("question #%d: %w", i, err)
		}
		msg.Questions = append(msg.Questions, q)
	}
	for i := 0; i < int(header.AnswerCount); i++ {
		var a Answer
		if a, off, err = UnpackAnswer(raw, off); err != nil {
			return nil, fmt.Errorf("answer #%d: %w", i, err)
		}
		msg.Answers = append(msg.Answers, a)
	}
	return msg, nil
}

// String renders the message in the dig-like presentation format.
func (m *Message) String() string {
	raw, err := m.Pack()
	if err != nil {
		return fmt.Sprintf(";; invalid message: %s", err)
	}
	msg := new(dns.Msg)
	if err := msg.Unpack(raw); err != nil {
		return fmt.Sprintf(";; invalid message: %s", err)
	}
	return msg.String()
}
