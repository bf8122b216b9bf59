// SPDX-License-Identifier: GPL-3.0-or-later

// Package minidns is a minimal DNS message codec with a single-record
// resolver and responder.
//
// [ParseMessage] and [*Message] decode and encode the 12-byte header, the
// question section, and the answer section. Names are read with support
// for compression pointers but are always written uncompressed.
//
// [*Resolver] sends one address query over UDP and waits a bounded time
// for the reply. [*Responder] answers address queries from a [*Table].
//
// Only address records (type A, class IN) are meaningfully handled.
package minidns
