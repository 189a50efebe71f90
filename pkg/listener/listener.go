// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package listener answers the resolution requests of the proxy.
// The hosts database is consulted first, other names are resolved with the configured resolver chain.
package listener

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"time"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/resolver"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ErrUnknownHost is returned when a host could not be resolved.
// The caller may fall back to another resolver.
var ErrUnknownHost = errors.New("unknown host")

//go:generate go tool moq -out hosts_moq.go . HostsLookup
type HostsLookup interface {
	// Lookup returns the address of name from the hosts database
	Lookup(ctx context.Context, name string, qtype uint16) (netip.Addr, bool, error)
}

// Request is a resolution request of the proxy
type Request struct {
	// Host is the hostname to resolve
	Host string
	// Port is the port of the requested connection
	Port int
	// Response is the resolved socket address, set by a listener
	Response *netip.AddrPort
}

// Listener resolves hostnames for the proxy
type Listener struct {
	resolver resolver.Resolver
	hosts    HostsLookup
	lookup   []resolver.LookupOption
	metrics  metrics
	tracer   trace.Tracer
}

// Option configures a Listener
type Option func(*Listener)

// WithSearchPath resolves relative names with the search domains
func WithSearchPath(domains []string, ndots int) Option {
	return func(l *Listener) {
		if len(domains) == 0 {
			return
		}
		l.lookup = append(l.lookup, resolver.WithSearchPath(domains...), resolver.WithNdots(ndots))
	}
}

// New creates a listener resolving with r.
// hosts may be nil to skip the hosts database.
func New(r resolver.Resolver, hosts HostsLookup, opts ...Option) *Listener {
	l := &Listener{
		resolver: r,
		hosts:    hosts,
		metrics:  newMetrics(),
		tracer:   otel.Tracer("listener"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// GetCollectors returns the metric collectors of the listener
func (l *Listener) GetCollectors() []prometheus.Collector {
	return l.metrics.GetCollectors()
}

// OnResolutionRequest resolves the request unless it already carries a response.
// It reports whether the request has a response afterwards.
func (l *Listener) OnResolutionRequest(ctx context.Context, req *Request) bool {
	if req.Response != nil {
		return true
	}
	addr, err := l.Resolve(ctx, req.Host, req.Port)
	if err != nil {
		return false
	}
	req.Response = &addr
	return true
}

// Resolve returns the socket address of the first A record of host combined with port.
// All failures wrap ErrUnknownHost.
func (l *Listener) Resolve(ctx context.Context, host string, port int) (netip.AddrPort, error) {
	log := logger.FromContext(ctx).With("host", host)
	ctx, span := l.tracer.Start(ctx, "listener.resolve", trace.WithAttributes(attribute.String("host", host)))
	defer span.End()

	if port < 0 || port > 65535 {
		err := fmt.Errorf("%w: %s: port %d out of range", ErrUnknownHost, host, port)
		span.SetStatus(codes.Error, err.Error())
		return netip.AddrPort{}, err
	}

	start := time.Now()
	addr, source, err := l.resolve(ctx, host)
	l.metrics.Observe(source, outcome(err), time.Since(start))
	if err != nil {
		log.DebugContext(ctx, "Could not resolve host", "source", source, "error", err)
		span.SetStatus(codes.Error, "Failed to resolve host")
		span.RecordError(err)
		return netip.AddrPort{}, fmt.Errorf("%w: %s: %w", ErrUnknownHost, host, err)
	}

	span.SetAttributes(attribute.String("source", source), attribute.String("address", addr.String()))
	log.DebugContext(ctx, "Resolved host", "source", source, "address", addr)
	return netip.AddrPortFrom(addr, uint16(port)), nil //nolint:gosec // range checked above
}

const (
	sourceLiteral = "literal"
	sourceHosts   = "hosts"
	sourceDNS     = "dns"
)

// errNotFound is returned when the lookup completed without an address
type errNotFound struct {
	status resolver.Status
}

func (e errNotFound) Error() string {
	return e.status.String()
}

func (l *Listener) resolve(ctx context.Context, host string) (netip.Addr, string, error) {
	if addr, err := netip.ParseAddr(host); err == nil {
		return addr.Unmap(), sourceLiteral, nil
	}

	if l.hosts != nil {
		addr, ok, err := l.hosts.Lookup(ctx, host, dns.TypeA)
		switch {
		case err != nil:
			logger.FromContext(ctx).WarnContext(ctx, "Failed to look up hosts database", "host", host, "error", err)
		case ok:
			return addr, sourceHosts, nil
		}
	}

	if l.resolver == nil {
		return netip.Addr{}, sourceDNS, errNotFound{status: resolver.StatusUnrecoverable}
	}
	res, err := resolver.Lookup(ctx, l.resolver, host, dns.TypeA, l.lookup...)
	if err != nil {
		return netip.Addr{}, sourceDNS, err
	}
	if !res.Found() {
		return netip.Addr{}, sourceDNS, errNotFound{status: res.Status}
	}
	return res.Addrs[0], sourceDNS, nil
}

// outcome is the status label of a resolution
func outcome(err error) string {
	var nf errNotFound
	switch {
	case err == nil:
		return resolver.StatusSuccessful.String()
	case errors.As(err, &nf):
		return nf.status.String()
	case errors.Is(err, resolver.ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
