// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import (
	"errors"
	"fmt"
	"net/netip"
)

// Errors emitted when validating a response.
var (
	// ErrIDMismatch means that the response ID differs from the query ID.
	ErrIDMismatch = errors.New("DNS response ID does not match query ID")

	// ErrNoData indicates that there is no address record in the response.
	ErrNoData = errors.New("no address in DNS response")
)

// ValidateResponseForQuery makes sure resp is the reply to query.
//
// Only the transaction ID is checked. This protects against stray
// datagrams but is not meant to defeat spoofing.
func ValidateResponseForQuery(query, resp *Message) error {
	if resp.Header.ID != query.Header.ID {
		return fmt.Errorf("%w: got %d, want %d", ErrIDMismatch, resp.Header.ID, query.Header.ID)
	}
	return nil
}

// ResponseFirstAddress returns the address carried by the first answer
// that is an address record, in the order answers appear in resp. If
// there is no such answer, it returns [ErrNoData].
//
// Before invoking this function, make sure the response is valid using
// [ValidateResponseForQuery].
func ResponseFirstAddress(resp *Message) (netip.Addr, error) {
	for _, answer := range resp.Answers {
		if addr, ok := answer.Address(); ok {
			return addr, nil
		}
	}
	return netip.Addr{}, ErrNoData
}
