// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxydns

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/config"
	"github.com/telekom/proxydns/pkg/hosts"
	"github.com/telekom/proxydns/pkg/listener"
	"github.com/telekom/proxydns/pkg/metrics"
	"github.com/telekom/proxydns/pkg/platform"
	"github.com/telekom/proxydns/pkg/resolver"
)

// ProxyDNS is the main struct of the proxydns application
type ProxyDNS struct {
	// config is the startup configuration
	config *config.Config
	// version is reported in the api document and the resolver info metric
	version string
	// listener resolves with the configured resolver chain
	listener *listener.Listener
	// fallback resolves with the system resolver, nil if disabled
	fallback *listener.Listener
	// hosts is the local hosts database, nil if ignored
	hosts listener.HostsLookup
	// api serves the http endpoints, nil if no listening address is configured
	api api.API
	// metrics is used to collect metrics
	metrics metrics.Provider
	// cErr is used to handle non-recoverable errors of the components
	cErr chan error
	// cDone is used to signal that proxydns was shut down
	cDone chan struct{}
	// shutOnce is used to ensure that the shutdown function is only called once
	shutOnce sync.Once
}

// New builds the resolver chain and the components described by the config
func New(ctx context.Context, cfg *config.Config, version string) (*ProxyDNS, error) {
	log := logger.FromContext(ctx)
	plat := cfg.Platform(platform.Detect())

	p := &ProxyDNS{
		config:   cfg,
		version:  version,
		metrics:  metrics.New(cfg.Telemetry, version),
		cErr:     make(chan error, 1),
		cDone:    make(chan struct{}, 1),
		shutOnce: sync.Once{},
	}
	if cfg.HasAPI() {
		p.api = api.New(cfg.Api)
	}

	if cfg.HostsEnabled() {
		cache, err := hosts.NewDefault(plat)
		if err != nil {
			return nil, fmt.Errorf("failed to open hosts database: %w", err)
		}
		p.hosts = cache
	}

	r, err := resolver.New(ctx, cfg.Resolver, plat)
	if err != nil {
		return nil, err
	}
	system := r == nil
	if system {
		sr, sErr := newSystemResolver(ctx, cfg, plat)
		if sErr != nil {
			return nil, sErr
		}
		log.InfoContext(ctx, "Using system DNS resolver", "address", sr.Address())
		r = sr
	}

	var opts []listener.Option
	sc, err := plat.SystemConfig()
	if err != nil {
		log.WarnContext(ctx, "Failed to read the system search path, resolving names as given", "error", err)
	} else {
		opts = append(opts, listener.WithSearchPath(sc.Search, sc.Ndots))
	}

	p.listener = listener.New(r, p.hosts, opts...)
	if cfg.Resolver.Fallback && !system {
		sr, sErr := newSystemResolver(ctx, cfg, plat)
		if sErr != nil {
			log.WarnContext(ctx, "System resolver unavailable, fallback disabled", "error", sErr)
		} else {
			p.fallback = listener.New(sr, nil, opts...)
		}
	}

	if err = p.registerMetrics(); err != nil {
		return nil, err
	}
	return p, nil
}

func newSystemResolver(ctx context.Context, cfg *config.Config, plat platform.Platform) (*resolver.PlainResolver, error) {
	sr, err := resolver.NewSystemResolver(ctx, plat)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize default DNS resolver: %w", err)
	}
	sr.SetTimeout(cfg.Resolver.QueryTimeout())
	return sr, nil
}

func (p *ProxyDNS) registerMetrics() error {
	registry := p.metrics.GetRegistry()
	for _, c := range p.listener.GetCollectors() {
		if err := registry.Register(c); err != nil {
			return fmt.Errorf("failed to register listener metrics: %w", err)
		}
	}

	ep, err := p.config.Resolver.Endpoint()
	if err != nil {
		return err
	}
	return metrics.RegisterResolverInfo(registry, metrics.ResolverInfo{
		Version: p.version,
		Address: ep.Address,
		DoH:     ep.DoH,
		DNSSEC:  p.config.Resolver.DNSSEC && !ep.DoH,
		Hosts:   p.hosts != nil,
	})
}

// Resolution is the outcome of a successful resolution
type Resolution struct {
	// Host is the requested hostname
	Host string `json:"host" yaml:"host"`
	// Address is the resolved socket address
	Address string `json:"address" yaml:"address"`
	// Fallback is true if the system resolver answered
	Fallback bool `json:"fallback" yaml:"fallback"`
}

// Resolve resolves host through the listener.
// If the listener fails and fallback is enabled the system resolver is asked instead.
func (p *ProxyDNS) Resolve(ctx context.Context, host string, port int) (Resolution, error) {
	addr, err := p.listener.Resolve(ctx, host, port)
	if err == nil {
		return Resolution{Host: host, Address: addr.String()}, nil
	}
	if p.fallback == nil {
		return Resolution{}, err
	}

	logger.FromContext(ctx).InfoContext(ctx, "Falling back to the system resolver", "host", host, "error", err)
	addr, fErr := p.fallback.Resolve(ctx, host, port)
	if fErr != nil {
		return Resolution{}, errors.Join(err, fErr)
	}
	return Resolution{Host: host, Address: addr.String(), Fallback: true}, nil
}
