// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

// DefaultTTL is the default TTL in seconds of the answers built by a [*Responder].
const DefaultTTL = 3600

const (
	// responderMinBackoff is the pause after the first failed read.
	responderMinBackoff = 5 * time.Millisecond

	// responderMaxBackoff bounds the pause between failed reads.
	responderMaxBackoff = time.Second
)

// ErrNoQuestion indicates that a query does not contain any question.
var ErrNoQuestion = errors.New("DNS query without questions")

// Responder answers address queries using a [*Table].
//
// Construct using [NewResponder] or set the MANDATORY fields.
type Responder struct {
	// Table is the MANDATORY table of known names.
	Table *Table

	// TTL is the OPTIONAL TTL of the answers. When zero, we use [DefaultTTL].
	TTL uint32

	// Logger is the OPTIONAL logger. When nil, we do not log.
	Logger *zap.Logger
}

// NewResponder constructs a new [*Responder] using table.
func NewResponder(table *Table) *Responder {
	return &Responder{
		Table: table,
		TTL:   DefaultTTL,
	}
}

// Respond builds the response to query, which MUST contain at least one
// question. Only the first question is answered.
//
// When the name is known, the response contains one address record.
// Otherwise, it contains no answers and has [FlagsNotFound] set.
func (r *Responder) Respond(query *Message) (*Message, error) {
	if len(query.Questions) < 1 {
		return nil, ErrNoQuestion
	}
	q0 := query.Questions[0]

	resp := &Message{
		Header: Header{
			ID:            query.Header.ID,
			Flags:         FlagsResponse,
			QuestionCount: 1,
		},
		Questions: []Question{q0},
	}

	addr, found := r.Table.Lookup(q0.Name)
	if !found {
		resp.Header.Flags |= FlagsNotFound
		return resp, nil
	}
	resp.Answers = []Answer{NewAddressAnswer(q0.Name, addr, r.ttl())}
	resp.Header.AnswerCount = 1
	return resp, nil
}

// Handle parses the raw query, builds the response, and serializes it.
func (r *Responder) Handle(rawQuery []byte) ([]byte, error) {
	logger := r.logger()

	query, err := ParseMessage(rawQuery)
	if err != nil {
		return nil, err
	}
	resp, err := r.Respond(query)
	if err != nil {
		return nil, err
	}
	if ce := logger.Check(zap.DebugLevel, "dns query answered"); ce != nil {
		ce.Write(
			zap.Uint16("id", query.Header.ID),
			zap.String("name", query.Questions[0].Name),
			zap.Bool("found", len(resp.Answers) > 0),
		)
	}
	return resp.Pack()
}

// Serve reads queries from conn and answers them one at a time until
// ctx is done, in which case it returns the ctx error.
//
// Malformed queries are dropped. Errors reading or writing a datagram
// are logged and do not stop the loop, except for [net.ErrClosed].
// Consecutive read errors are spaced by an exponential backoff.
func (r *Responder) Serve(ctx context.Context, conn net.PacketConn) error {
	logger := r.logger()

	// Unblock the pending read when ctx is done.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := make([]byte, MaxMessageSize+1)
	var backoff time.Duration
	for {
		count, addr, err := conn.ReadFrom(buf)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, net.ErrClosed) {
			return err
		}
		if err != nil {
			backoff = min(max(2*backoff, responderMinBackoff), responderMaxBackoff)
			logger.Warn("dns read failed", zap.Error(err), zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}
		backoff = 0

		if count > MaxMessageSize {
			logger.Debug("dns query dropped", zap.Stringer("from", addr),
				zap.Error(fmt.Errorf("%w: more than %d bytes", ErrMessageTooLarge, MaxMessageSize)))
			continue
		}
		rawResp, err := r.Handle(buf[:count])
		if err != nil {
			logger.Debug("dns query dropped", zap.Stringer("from", addr), zap.Error(err))
			continue
		}

		if _, err := conn.WriteTo(rawResp, addr); err != nil {
			logger.Warn("dns write failed", zap.Stringer("to", addr), zap.Error(err))
			continue
		}
		logger.Debug("dns response sent", zap.Stringer("to", addr), zap.Int("size", len(rawResp)))
	}
}

func (r *Responder) ttl() uint32 {
	if r.TTL > 0 {
		return r.TTL
	}
	return DefaultTTL
}

func (r *Responder) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}
