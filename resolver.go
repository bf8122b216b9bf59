// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// DefaultTimeout is the default time a [*Resolver] waits for the reply.
const DefaultTimeout = 5 * time.Second

// Outcome is the outcome of a successful resolution attempt.
type Outcome int

const (
	// OutcomeAddress means the reply contains an address record.
	OutcomeAddress = Outcome(iota)

	// OutcomeNotFound means the server replied that the name does not exist.
	OutcomeNotFound

	// OutcomeNoAddress means the reply is not a not-found reply but
	// contains no address record.
	OutcomeNoAddress

	// OutcomeNoReply means no datagram arrived before the deadline, or
	// the server port is unreachable.
	OutcomeNoReply
)

// String implements [fmt.Stringer].
func (o Outcome) String() string {
	switch o {
	case OutcomeAddress:
		return "address"
	case OutcomeNotFound:
		return "not found"
	case OutcomeNoAddress:
		return "no address found"
	case OutcomeNoReply:
		return "no reply"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// Result is the result of [*Resolver.Exchange].
//
// Malformed replies and transport failures are reported as errors
// instead, so they stay distinct from every [Outcome].
type Result struct {
	// Outcome tells which of the other fields are meaningful.
	Outcome Outcome

	// Addr is the resolved address when Outcome is [OutcomeAddress].
	Addr netip.Addr

	// Query is the query message we sent.
	Query *Message

	// Response is the reply unless Outcome is [OutcomeNoReply].
	Response *Message
}

// Resolver resolves names by sending a single UDP query to a server.
//
// A resolver handles one outstanding query at a time per call and never
// retries. Construct using [NewResolver] or set the MANDATORY fields.
type Resolver struct {
	// Server is the MANDATORY server endpoint (e.g., "127.0.0.1:8053").
	Server string

	// Timeout is the OPTIONAL time to wait for the reply. When zero,
	// we use [DefaultTimeout].
	Timeout time.Duration

	// Dialer is the OPTIONAL dialer. When nil, we use a zero [net.Dialer].
	Dialer *net.Dialer

	// Logger is the OPTIONAL logger. When nil, we do not log.
	Logger *zap.Logger
}

// NewResolver constructs a new [*Resolver] querying server.
func NewResolver(server string) *Resolver {
	return &Resolver{
		Server:  server,
		Timeout: DefaultTimeout,
	}
}

// Resolve resolves the IPv4 address of name using a fresh [*Query].
func (r *Resolver) Resolve(ctx context.Context, name string) (*Result, error) {
	return r.Exchange(ctx, NewQuery(name))
}

// Exchange sends query to the server and waits for the reply.
//
// The ctx bounds dialing and may shorten the wait for the reply.
func (r *Resolver) Exchange(ctx context.Context, query *Query) (*Result, error) {
	logger := r.logger()

	// 1. build and serialize the query message
	queryMsg, err := query.NewMsg()
	if err != nil {
		return nil, err
	}
	rawQuery, err := queryMsg.Pack()
	if err != nil {
		return nil, err
	}

	// 2. create the socket
	conn, err := r.dialer().DialContext(ctx, "udp", r.Server)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	deadline := time.Now().Add(r.timeout())
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return nil, err
	}

	// 3. send the query
	if _, err := conn.Write(rawQuery); err != nil {
		return nil, err
	}
	logger.Debug("dns query sent",
		zap.String("server", r.Server),
		zap.String("name", queryMsg.Questions[0].Name),
		zap.Uint16("id", queryMsg.Header.ID),
		zap.Int("size", len(rawQuery)),
	)

	// 4. perform exactly one receive
	buf := make([]byte, MaxMessageSize+1)
	count, err := conn.Read(buf)
	if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, syscall.ECONNREFUSED) {
		// The connected socket surfaces ICMP port unreachable as
		// ECONNREFUSED: from the caller's view nobody replied.
		logger.Debug("dns query got no reply",
			zap.String("server", r.Server),
			zap.Uint16("id", queryMsg.Header.ID),
			zap.Error(err),
		)
		return &Result{Outcome: OutcomeNoReply, Query: queryMsg}, nil
	}
	if err != nil {
		return nil, err
	}
	if count > MaxMessageSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrMessageTooLarge, MaxMessageSize)
	}
	rawResp := buf[:count]
	if ce := logger.Check(zap.DebugLevel, "dns reply received"); ce != nil {
		ce.Write(
			zap.String("server", r.Server),
			zap.Int("size", count),
			zap.Binary("raw", rawResp),
		)
	}

	// 5. parse and validate the reply
	resp, err := ParseMessage(rawResp)
	if err != nil {
		return nil, err
	}
	if err := ValidateResponseForQuery(queryMsg, resp); err != nil {
		return nil, err
	}

	// 6. extract the first address
	result := &Result{Outcome: OutcomeAddress, Query: queryMsg, Response: resp}
	result.Addr, err = ResponseFirstAddress(resp)
	switch {
	case err == nil:
	case resp.Header.Rcode() == FlagsNotFound:
		result.Outcome = OutcomeNotFound
	default:
		result.Outcome = OutcomeNoAddress
	}
	logger.Debug("dns reply parsed",
		zap.Uint16("id", resp.Header.ID),
		zap.Uint16("rcode", resp.Header.Rcode()),
		zap.Int("answers", len(resp.Answers)),
		zap.Stringer("outcome", result.Outcome),
	)
	return result, nil
}

func (r *Resolver) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return DefaultTimeout
}

func (r *Resolver) dialer() *net.Dialer {
	if r.Dialer != nil {
		return r.Dialer
	}
	return &net.Dialer{}
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return zap.NewNop()
}
