// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"context"
	"fmt"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/platform"
)

// New builds the resolver chain for the configuration.
//
// DoH endpoints are used as they are. Plain addresses get a PlainResolver,
// which is wrapped in a ValidatingResolver if DNSSEC is enabled; with DNSSEC
// and no address the system nameserver is validated.
// New returns a nil Resolver and no error if nothing overrides the default resolution.
func New(ctx context.Context, cfg Config, p platform.Platform) (Resolver, error) {
	log := logger.FromContext(ctx)

	ep, err := cfg.Endpoint()
	if err != nil {
		return nil, err
	}

	if ep.DoH {
		r := NewDoHResolver(ep.Address)
		configure(r, cfg)
		log.InfoContext(ctx, "Using DNS resolver", "address", ep.Address, "dnsOverHttps", true, "dnssec", false)
		if cfg.DNSSEC {
			log.WarnContext(ctx, "DNSSEC validation is not applied to DNS-over-HTTPS resolvers")
		}
		return r, nil
	}

	var r Resolver
	if ep.Address != "" {
		spec, err := ParseAddressSpec(ep.Address)
		if err != nil {
			return nil, ErrInvalidConfig{Field: "dns", Reason: err.Error()}
		}
		plain, err := NewPlainResolver(ctx, spec.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize specified DNS resolver: %w", err)
		}
		if spec.HasPort() {
			plain.SetPort(spec.Port)
		}
		configure(plain, cfg)
		r = plain
	}

	if cfg.DNSSEC {
		if r == nil {
			plain, err := NewSystemResolver(ctx, p)
			if err != nil {
				return nil, fmt.Errorf("failed to initialize default DNS resolver: %w", err)
			}
			configure(plain, cfg)
			r = plain
		}
		r = NewValidatingResolver(r)
	}

	if r == nil {
		log.DebugContext(ctx, "No DNS resolver configured, keeping the default resolution")
		return nil, nil //nolint:nilnil // no override configured
	}

	log.InfoContext(ctx, "Using DNS resolver", "address", ep.Address, "dnsOverHttps", false, "dnssec", cfg.DNSSEC)
	return r, nil
}

func configure(r Resolver, cfg Config) {
	r.SetTimeout(cfg.QueryTimeout())
	if cfg.TSIG != nil {
		r.SetTSIGKey(cfg.TSIG)
	}
}
