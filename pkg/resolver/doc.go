// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns a resolver configuration into a chain of DNS
// transports and resolves hostnames with it.
//
// Three transports implement [Resolver]:
//   - [PlainResolver] talks classic DNS over UDP/TCP to a nameserver
//   - [DoHResolver] sends queries as HTTP GET requests (RFC 8484)
//   - [ValidatingResolver] wraps another resolver and checks the DNSSEC
//     signatures of its answers
//
// [New] builds the chain from a [Config]:
//
//	r, err := resolver.New(ctx, resolver.Config{Preset: "CLOUDFLARE_DOH"}, platform.Detect())
//	res, err := resolver.Lookup(ctx, r, "example.com", dns.TypeA)
//
// A nil resolver and nil error from [New] mean that no override is
// configured and the caller should use its own default resolution.
//
// Messages are encoded and decoded with github.com/miekg/dns.
package resolver
