// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"context"
	"net"
	"net/netip"
	"strings"
	"testing"
	"time"

	"github.com/bassosimone/runtimex"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// startTestServer calls handler for every datagram received on a local
// UDP socket and sends back its return value, unless it is nil.
func startTestServer(t *testing.T, handler func(query *Message) []byte) string {
	conn := runtimex.PanicOnError1(net.ListenPacket("udp", "127.0.0.1:0"))
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, MaxMessageSize)
		for {
			count, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			query, err := ParseMessage(buf[:count])
			if err != nil {
				continue
			}
			if reply := handler(query); reply != nil {
				conn.WriteTo(reply, addr)
			}
		}
	}()
	return conn.LocalAddr().String()
}

func TestResolverResolve(t *testing.T) {
	endpoint := startTestResponder(t, zaptest.NewLogger(t))

	t.Run("Address", func(t *testing.T) {
		resolver := NewResolver(endpoint)
		resolver.Logger = zaptest.NewLogger(t)

		result, err := resolver.Resolve(context.Background(), "example.com")
		require.NoError(t, err)
		require.Equal(t, OutcomeAddress, result.Outcome)
		require.Equal(t, netip.MustParseAddr("93.184.216.34"), result.Addr)
		require.Equal(t, uint16(1), result.Response.Header.AnswerCount)
		require.Equal(t, result.Query.Header.ID, result.Response.Header.ID)
	})

	t.Run("MixedCaseExactMatch", func(t *testing.T) {
		result, err := NewResolver(endpoint).Resolve(context.Background(), "MyHost.LAN")
		require.NoError(t, err)
		require.Equal(t, OutcomeAddress, result.Outcome)
		require.Equal(t, netip.MustParseAddr("10.0.0.1"), result.Addr)
		require.Equal(t, "MyHost.LAN", result.Query.Questions[0].Name)
	})

	t.Run("CaseMismatchIsNotFound", func(t *testing.T) {
		result, err := NewResolver(endpoint).Resolve(context.Background(), "myhost.lan")
		require.NoError(t, err)
		require.Equal(t, OutcomeNotFound, result.Outcome)
	})

	t.Run("NotFound", func(t *testing.T) {
		resolver := NewResolver(endpoint)

		result, err := resolver.Resolve(context.Background(), "nosuchname.test")
		require.NoError(t, err)
		require.Equal(t, OutcomeNotFound, result.Outcome)
		require.False(t, result.Addr.IsValid())
		require.Equal(t, uint16(0), result.Response.Header.AnswerCount)
		require.Equal(t, FlagsNotFound, result.Response.Header.Flags&FlagsNotFound)
	})
}

func TestResolverNoAddress(t *testing.T) {
	endpoint := startTestServer(t, func(query *Message) []byte {
		resp := &Message{
			Header:    Header{ID: query.Header.ID, Flags: FlagsResponse, QuestionCount: 1, AnswerCount: 1},
			Questions: query.Questions,
			Answers:   []Answer{{Name: query.Questions[0].Name, Type: 16, Class: ClassINET, TTL: 60, Data: []byte{2, 'h', 'i'}}},
		}
		return runtimex.PanicOnError1(resp.Pack())
	})

	result, err := NewResolver(endpoint).Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeNoAddress, result.Outcome)
	require.False(t, result.Addr.IsValid())
	require.Equal(t, uint16(0), result.Response.Header.Rcode())
}

func TestResolverClosedPortIsNoReply(t *testing.T) {
	conn := runtimex.PanicOnError1(net.ListenPacket("udp", "127.0.0.1:0"))
	endpoint := conn.LocalAddr().String()
	conn.Close()

	resolver := NewResolver(endpoint)
	resolver.Timeout = 200 * time.Millisecond

	result, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeNoReply, result.Outcome)
	require.Nil(t, result.Response)
}

func TestResolverNoReply(t *testing.T) {
	endpoint := startTestServer(t, func(query *Message) []byte {
		return nil
	})
	resolver := NewResolver(endpoint)
	resolver.Timeout = 100 * time.Millisecond

	result, err := resolver.Resolve(context.Background(), "example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeNoReply, result.Outcome)
	require.Nil(t, result.Response)
	require.NotNil(t, result.Query)
}

func TestResolverContextDeadlineShortensWait(t *testing.T) {
	endpoint := startTestServer(t, func(query *Message) []byte {
		return nil
	})
	resolver := NewResolver(endpoint)
	resolver.Timeout = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	t0 := time.Now()
	result, err := resolver.Resolve(ctx, "example.com")
	require.NoError(t, err)
	require.Equal(t, OutcomeNoReply, result.Outcome)
	require.Less(t, time.Since(t0), 10*time.Second)
}

func TestResolverIDMismatch(t *testing.T) {
	endpoint := startTestServer(t, func(query *Message) []byte {
		resp := runtimex.PanicOnError1(NewResponder(newTestTable()).Respond(query))
		resp.Header.ID++
		return runtimex.PanicOnError1(resp.Pack())
	})

	result, err := NewResolver(endpoint).Resolve(context.Background(), "example.com")
	require.ErrorIs(t, err, ErrIDMismatch)
	require.Nil(t, result)
}

func TestResolverMalformedReply(t *testing.T) {
	tests := []struct {
		name     string
		reply    func(query *Message) []byte
		expected error
	}{
		{
			name: "TooShort",
			reply: func(query *Message) []byte {
				return []byte{0xde, 0xad}
			},
			expected: ErrTooShort,
		},

		{
			name: "CompressionLoop",
			reply: func(query *Message) []byte {
				raw := Header{ID: query.Header.ID, Flags: FlagsResponse, QuestionCount: 1}.Append(nil)
				return append(raw, 0xc0, HeaderSize, 0, 1, 0, 1)
			},
			expected: ErrCompressionLoop,
		},

		{
			name: "TruncatedAnswer",
			reply: func(query *Message) []byte {
				resp := runtimex.PanicOnError1(NewResponder(newTestTable()).Respond(query))
				raw := runtimex.PanicOnError1(resp.Pack())
				return raw[:len(raw)-2]
			},
			expected: ErrTruncatedMessage,
		},

		{
			name: "TooLarge",
			reply: func(query *Message) []byte {
				resp := runtimex.PanicOnError1(NewResponder(newTestTable()).Respond(query))
				raw := runtimex.PanicOnError1(resp.Pack())
				return append(raw, make([]byte, MaxMessageSize)...)
			},
			expected: ErrMessageTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			endpoint := startTestServer(t, tt.reply)

			result, err := NewResolver(endpoint).Resolve(context.Background(), "example.com")
			require.ErrorIs(t, err, tt.expected)
			require.Nil(t, result)
		})
	}
}

func TestResolverInvalidName(t *testing.T) {
	result, err := NewResolver("127.0.0.1:1").Resolve(context.Background(), strings.Repeat("a", 64)+".example")
	require.ErrorIs(t, err, ErrLabelTooLong)
	require.Nil(t, result)
}

func TestResolverDefaults(t *testing.T) {
	resolver := &Resolver{Server: "127.0.0.1:53"}
	require.Equal(t, DefaultTimeout, resolver.timeout())
	require.NotNil(t, resolver.dialer())
	require.NotNil(t, resolver.logger())
}

func TestOutcomeString(t *testing.T) {
	require.Equal(t, "address", OutcomeAddress.String())
	require.Equal(t, "not found", OutcomeNotFound.String())
	require.Equal(t, "no address found", OutcomeNoAddress.String())
	require.Equal(t, "no reply", OutcomeNoReply.String())
	require.Equal(t, "Outcome(42)", Outcome(42).String())
}
