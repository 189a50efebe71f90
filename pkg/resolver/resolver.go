// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"time"

	"github.com/miekg/dns"
)

var (
	_ Resolver = (*PlainResolver)(nil)
	_ Resolver = (*DoHResolver)(nil)
	_ Resolver = (*ValidatingResolver)(nil)
)

// Resolver exchanges DNS messages with an upstream.
//
// The setters configure the resolver and must only be called before it is
// shared; Send is safe for concurrent use.
//
//go:generate go tool moq -out resolver_moq.go . Resolver
type Resolver interface {
	// Send sends the query and returns the response.
	// The query is not modified. DNS level failures are reported
	// through the response code, errors signal transport failures.
	Send(ctx context.Context, query *dns.Msg) (*dns.Msg, error)
	// SetTimeout sets the time a single query may take
	SetTimeout(timeout time.Duration)
	// SetTSIGKey sets the key used to sign queries, nil disables signing
	SetTSIGKey(key *TSIGKey)
	// SetPort sets the port of the upstream
	SetPort(port int)
	// SetTCP forces queries over TCP
	SetTCP(enabled bool)
	// SetIgnoreTruncation disables the TCP retry of truncated responses
	SetIgnoreTruncation(ignore bool)
	// SetEDNS configures the EDNS0 OPT record added to queries.
	// A negative version disables EDNS.
	SetEDNS(version int, payloadSize uint16, do bool, options ...dns.EDNS0)
}
