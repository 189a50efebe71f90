// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"strconv"
	"time"

	"github.com/miekg/dns"
	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/platform"
)

const (
	// DefaultPort is the classic DNS port
	DefaultPort = 53
	// fallbackNameserver is used when the system has no nameserver configured
	fallbackNameserver = "127.0.0.1"
)

// edns holds the EDNS0 settings of a resolver
type edns struct {
	version     int
	payloadSize uint16
	do          bool
	options     []dns.EDNS0
}

// PlainResolver sends queries to a single nameserver over UDP or TCP
type PlainResolver struct {
	addr             netip.Addr
	port             int
	timeout          time.Duration
	tcp              bool
	ignoreTruncation bool
	edns             *edns
	tsig             *TSIGKey
}

// NewPlainResolver creates a resolver for the nameserver host.
// Host may be an IP literal or a name, which is resolved once with the system resolver.
func NewPlainResolver(ctx context.Context, host string) (*PlainResolver, error) {
	addr, err := netip.ParseAddr(host)
	if err != nil {
		addrs, lErr := net.DefaultResolver.LookupNetIP(ctx, "ip", host)
		if lErr != nil {
			return nil, fmt.Errorf("failed to resolve nameserver %q: %w", host, lErr)
		}
		if len(addrs) == 0 {
			return nil, fmt.Errorf("failed to resolve nameserver %q: no addresses", host)
		}
		addr = addrs[0]
	}

	return &PlainResolver{
		addr:    addr.Unmap(),
		port:    DefaultPort,
		timeout: DefaultTimeout,
	}, nil
}

// NewSystemResolver creates a resolver for the first nameserver of the platform.
// The loopback nameserver is used if the platform has none.
func NewSystemResolver(ctx context.Context, p platform.Platform) (*PlainResolver, error) {
	log := logger.FromContext(ctx)

	server, ok, err := p.Nameserver()
	if err != nil {
		return nil, fmt.Errorf("failed to read system resolver configuration: %w", err)
	}
	if !ok {
		log.WarnContext(ctx, "No system nameserver configured, using loopback", "nameserver", fallbackNameserver)
		return NewPlainResolver(ctx, fallbackNameserver)
	}

	host, port, err := net.SplitHostPort(server)
	if err != nil {
		return nil, fmt.Errorf("invalid system nameserver %q: %w", server, err)
	}
	r, err := NewPlainResolver(ctx, host)
	if err != nil {
		return nil, err
	}
	if n, pErr := strconv.Atoi(port); pErr == nil {
		r.SetPort(n)
	}
	return r, nil
}

// Address returns the nameserver address
func (r *PlainResolver) Address() string {
	return net.JoinHostPort(r.addr.String(), strconv.Itoa(r.port))
}

func (r *PlainResolver) SetTimeout(timeout time.Duration) {
	r.timeout = timeout
}

func (r *PlainResolver) SetTSIGKey(key *TSIGKey) {
	r.tsig = key
}

func (r *PlainResolver) SetPort(port int) {
	r.port = port
}

func (r *PlainResolver) SetTCP(enabled bool) {
	r.tcp = enabled
}

func (r *PlainResolver) SetIgnoreTruncation(ignore bool) {
	r.ignoreTruncation = ignore
}

func (r *PlainResolver) SetEDNS(version int, payloadSize uint16, do bool, options ...dns.EDNS0) {
	if version < 0 {
		r.edns = nil
		return
	}
	if payloadSize < dns.MinMsgSize {
		payloadSize = dns.DefaultMsgSize
	}
	r.edns = &edns{version: version, payloadSize: payloadSize, do: do, options: options}
}

// Send exchanges the query with the nameserver.
// Truncated UDP responses are retried over TCP unless truncation is ignored.
func (r *PlainResolver) Send(ctx context.Context, query *dns.Msg) (*dns.Msg, error) {
	q := query.Copy()
	r.applyEDNS(q)

	network := "udp"
	if r.tcp {
		network = "tcp"
	}

	resp, err := r.exchange(ctx, network, q)
	if err != nil {
		return nil, newTransportError(query, err)
	}

	if resp.Truncated && network == "udp" && !r.ignoreTruncation {
		logger.FromContext(ctx).DebugContext(ctx, "Truncated response, retrying over TCP",
			"id", query.Id, "nameserver", r.Address())
		resp, err = r.exchange(ctx, "tcp", q)
		if err != nil {
			return nil, newTransportError(query, err)
		}
	}
	return resp, nil
}

func (r *PlainResolver) exchange(ctx context.Context, network string, q *dns.Msg) (*dns.Msg, error) {
	c := &dns.Client{
		Net:     network,
		Timeout: r.timeout,
	}
	if r.edns != nil {
		c.UDPSize = r.edns.payloadSize
	}
	if r.tsig != nil {
		q = q.Copy()
		q.SetTsig(r.tsig.fqdn(), r.tsig.algorithm(), 300, time.Now().Unix())
		c.TsigSecret = map[string]string{r.tsig.fqdn(): r.tsig.Secret}
	}

	resp, _, err := c.ExchangeContext(ctx, q, r.Address())
	return resp, err
}

// applyEDNS adds the configured OPT record unless the query already carries one
func (r *PlainResolver) applyEDNS(q *dns.Msg) {
	if r.edns == nil || q.IsEdns0() != nil {
		return
	}
	q.SetEdns0(r.edns.payloadSize, r.edns.do)
	opt := q.IsEdns0()
	opt.SetVersion(uint8(r.edns.version)) //nolint:gosec // versions above 255 do not exist
	opt.Option = append(opt.Option, r.edns.options...)
}
