// SPDX-License-Identifier: GPL-3.0-or-later

package minidns

import "errors"

// Errors emitted when decoding a DNS message.
var (
	// ErrTooShort means that a fixed-size field extends past the end of the buffer.
	ErrTooShort = errors.New("DNS message too short")

	// ErrTruncatedMessage means that a name or a declared-length payload
	// extends past the end of the buffer.
	ErrTruncatedMessage = errors.New("truncated DNS message")

	// ErrCompressionLoop means that decoding a name followed too many pointers.
	ErrCompressionLoop = errors.New("too many DNS compression pointers")

	// ErrInvalidPointer means that the second byte of a compression pointer is missing.
	ErrInvalidPointer = errors.New("invalid DNS compression pointer")

	// ErrInvalidLabel means that a label uses one of the reserved label types.
	ErrInvalidLabel = errors.New("invalid DNS label type")

	// ErrMessageTooLarge means that a datagram exceeds [MaxMessageSize].
	ErrMessageTooLarge = errors.New("DNS message too large")
)

// Errors emitted when encoding a DNS message.
var (
	// ErrLabelTooLong means that a label is longer than 63 bytes.
	ErrLabelTooLong = errors.New("DNS label too long")

	// ErrNameTooLong means that the encoded name is longer than 255 bytes.
	ErrNameTooLong = errors.New("DNS name too long")

	// ErrTooManyRecords means that a section does not fit a 16-bit count.
	ErrTooManyRecords = errors.New("too many DNS records")
)
