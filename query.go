// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"strings"
	"unicode/utf8"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

// Query is a DNS address query.
//
// Construct using [NewQuery] or set the MANDATORY fields.
type Query struct {
	// ID is the OPTIONAL transaction ID.
	ID uint16

	// Name is the MANDATORY domain name to query.
	Name string

	// Type is the query type.
	Type uint16

	// Class is the query class.
	Class uint16
}

// NewQuery constructs a new [*Query] with safe defaults.
//
// By default, the query uses a randomized ID and asks for the IPv4
// address of name in the Internet class.
func NewQuery(name string) *Query {
	return &Query{
		ID:    dns.Id(),
		Name:  name,
		Type:  TypeA,
		Class: ClassINET,
	}
}

// Clone returns a deep copy of the query.
func (q *Query) Clone() *Query {
	return &Query{
		ID:    q.ID,
		Name:  q.Name,
		Type:  q.Type,
		Class: q.Class,
	}
}

// NewMsg creates a new [*Message] from the [*Query].
//
// The message has the [FlagsQuery] flags, one question, and no answers.
func (q *Query) NewMsg() (*Message, error) {
	// IDNA encode the domain name only when needed, so ASCII names
	// are sent byte-for-byte and keep their case.
	punyName := q.Name
	if !queryIsASCII(punyName) {
		var err error
		if punyName, err = idna.Lookup.ToASCII(punyName); err != nil {
			return nil, err
		}
	}

	// We write names without the trailing dot.
	punyName = strings.TrimSuffix(punyName, ".")

	// Make sure the name fits the wire format before sending it.
	if _, err := AppendName(nil, punyName); err != nil {
		return nil, err
	}

	msg := &Message{
		Header: Header{
			ID:            q.ID,
			Flags:         FlagsQuery,
			QuestionCount: 1,
		},
		Questions: []Question{{
			Name:  punyName,
			Type:  q.Type,
			Class: q.Class,
		}},
	}
	return msg, nil
}

func queryIsASCII(name string) bool {
	for i := 0; i < len(name); i++ {
		if name[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
