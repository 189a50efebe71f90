// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resolverInfoMetricName = "proxydns_resolver_info"
	resolverInfoHelp       = "Resolver chain of this proxydns instance. Emitted once per instance."
)

// ResolverInfo describes the resolver chain selected at startup
type ResolverInfo struct {
	// Version is the proxydns version
	Version string
	// Address is the resolver address or DoH URL, empty for the system resolver
	Address string
	// DoH is true for DNS-over-HTTPS resolvers
	DoH bool
	// DNSSEC is true if answers are validated
	DNSSEC bool
	// Hosts is true if the hosts database is consulted
	Hosts bool
}

// RegisterResolverInfo registers the proxydns_resolver_info info-style metric on the given registry.
// The gauge is set to 1, the labels describe the resolver chain.
func RegisterResolverInfo(registry *prometheus.Registry, info ResolverInfo) error {
	address := info.Address
	if address == "" {
		address = "system"
	}
	g := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: resolverInfoMetricName,
			Help: resolverInfoHelp,
		},
		[]string{"version", "address", "doh", "dnssec", "hosts"},
	)
	g.WithLabelValues(
		info.Version,
		address,
		strconv.FormatBool(info.DoH),
		strconv.FormatBool(info.DNSSEC),
		strconv.FormatBool(info.Hosts),
	).Set(1)
	return registry.Register(g)
}
