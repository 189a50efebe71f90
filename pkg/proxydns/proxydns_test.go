// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package proxydns

import (
	"context"
	"net"
	"net/netip"
	"os"
	"path/filepath"
	"testing"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/config"
	"github.com/telekom/proxydns/pkg/listener"
	"github.com/telekom/proxydns/pkg/metrics"
	"github.com/telekom/proxydns/pkg/resolver"
)

// answering returns a resolver mock answering A queries with ip, NXDOMAIN if ip is empty
func answering(ip string) *resolver.ResolverMock {
	return &resolver.ResolverMock{
		SendFunc: func(_ context.Context, q *dns.Msg) (*dns.Msg, error) {
			resp := new(dns.Msg)
			if ip == "" {
				resp.SetRcode(q, dns.RcodeNameError)
				return resp, nil
			}
			resp.SetReply(q)
			if q.Question[0].Qtype == dns.TypeA {
				resp.Answer = append(resp.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(ip),
				})
			}
			return resp, nil
		},
	}
}

// zone returns a resolver mock answering A queries for the names of records
func zone(records map[string]string) *resolver.ResolverMock {
	return &resolver.ResolverMock{
		SendFunc: func(_ context.Context, q *dns.Msg) (*dns.Msg, error) {
			resp := new(dns.Msg)
			ip, ok := records[q.Question[0].Name]
			if !ok {
				resp.SetRcode(q, dns.RcodeNameError)
				return resp, nil
			}
			resp.SetReply(q)
			resp.Answer = append(resp.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP(ip),
			})
			return resp, nil
		},
	}
}

func hostsWith(entries map[string]string) *listener.HostsLookupMock {
	return &listener.HostsLookupMock{
		LookupFunc: func(_ context.Context, name string, qtype uint16) (netip.Addr, bool, error) {
			if qtype != dns.TypeA && qtype != dns.TypeAAAA {
				return netip.Addr{}, false, resolver.ErrInvalidType
			}
			ip, ok := entries[name]
			if !ok {
				return netip.Addr{}, false, nil
			}
			addr := netip.MustParseAddr(ip)
			if addr.Is4() != (qtype == dns.TypeA) {
				return netip.Addr{}, false, nil
			}
			return addr, true, nil
		},
	}
}

func newProviderMock() *metrics.ProviderMock {
	registry := prometheus.NewRegistry()
	return &metrics.ProviderMock{
		GetRegistryFunc: func() *prometheus.Registry { return registry },
		InitTracingFunc: func(context.Context) error { return nil },
		ShutdownFunc:    func(context.Context) error { return nil },
	}
}

// newTestProxyDNS wires a proxydns with mocked components.
// A nil fallback disables the fallback to the system resolver.
func newTestProxyDNS(t *testing.T, r, fallback resolver.Resolver, h listener.HostsLookup) *ProxyDNS {
	t.Helper()
	p := &ProxyDNS{
		config:   &config.Config{},
		version:  "v0.0.1",
		listener: listener.New(r, h),
		hosts:    h,
		api:      &api.APIMock{},
		metrics:  newProviderMock(),
		cErr:     make(chan error, 1),
		cDone:    make(chan struct{}, 1),
	}
	if fallback != nil {
		p.fallback = listener.New(fallback, nil)
	}
	return p
}

func writeHostsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestNew(t *testing.T) {
	hostsFile := writeHostsFile(t, "127.0.0.1 localhost\n")
	system := config.SystemConfig{Nameservers: []string{"192.0.2.1"}}

	tests := []struct {
		name         string
		config       config.Config
		wantErr      bool
		wantAPI      bool
		wantHosts    bool
		wantFallback bool
	}{
		{
			name: "custom resolver without fallback",
			config: config.Config{
				Resolver: resolver.Config{Address: "192.0.2.53", HostsFile: hostsFile},
				System:   system,
			},
			wantHosts: true,
		},
		{
			name: "custom resolver with fallback and api",
			config: config.Config{
				Resolver: resolver.Config{Address: "192.0.2.53:5353", HostsFile: hostsFile, Fallback: true},
				System:   system,
				Api:      api.Config{ListeningAddress: ":0"},
			},
			wantAPI:      true,
			wantHosts:    true,
			wantFallback: true,
		},
		{
			name: "system resolver needs no fallback",
			config: config.Config{
				Resolver: resolver.Config{HostsFile: hostsFile, Fallback: true},
				System:   system,
			},
			wantHosts: true,
		},
		{
			name: "hosts database ignored",
			config: config.Config{
				Resolver: resolver.Config{Preset: "CLOUDFLARE", IgnoreHostsFile: true},
				System:   system,
			},
		},
		{
			name: "unknown preset",
			config: config.Config{
				Resolver: resolver.Config{Preset: "UNKNOWN", HostsFile: hostsFile},
				System:   system,
			},
			wantErr: true,
		},
		{
			name: "hosts file is a directory",
			config: config.Config{
				Resolver: resolver.Config{HostsFile: t.TempDir()},
				System:   system,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(t.Context(), &tt.config, "v0.0.1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.Equal(t, tt.wantAPI, p.api != nil, "api")
			assert.Equal(t, tt.wantHosts, p.hosts != nil, "hosts")
			assert.Equal(t, tt.wantFallback, p.fallback != nil, "fallback")

			families, err := p.metrics.GetRegistry().Gather()
			require.NoError(t, err)
			var names []string
			for _, mf := range families {
				names = append(names, mf.GetName())
			}
			assert.Contains(t, names, "proxydns_resolver_info")
		})
	}
}

func TestProxyDNS_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		resolver     resolver.Resolver
		fallback     resolver.Resolver
		hosts        listener.HostsLookup
		host         string
		want         Resolution
		wantErr      bool
		wantFallback int
	}{
		{
			name:     "resolved by the resolver chain",
			resolver: answering("192.0.2.10"),
			fallback: answering("198.51.100.10"),
			host:     "example.com",
			want:     Resolution{Host: "example.com", Address: "192.0.2.10:443"},
		},
		{
			name:     "resolved by the hosts database",
			resolver: answering(""),
			hosts:    hostsWith(map[string]string{"db.local": "10.0.0.5"}),
			host:     "db.local",
			want:     Resolution{Host: "db.local", Address: "10.0.0.5:443"},
		},
		{
			name:         "falls back to the system resolver",
			resolver:     answering(""),
			fallback:     answering("198.51.100.10"),
			host:         "example.com",
			want:         Resolution{Host: "example.com", Address: "198.51.100.10:443", Fallback: true},
			wantFallback: 1,
		},
		{
			name:     "fails without fallback",
			resolver: answering(""),
			host:     "example.com",
			wantErr:  true,
		},
		{
			name:         "fails with fallback",
			resolver:     answering(""),
			fallback:     answering(""),
			host:         "example.com",
			wantErr:      true,
			wantFallback: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProxyDNS(t, tt.resolver, tt.fallback, tt.hosts)

			got, err := p.Resolve(t.Context(), tt.host, 443)
			if tt.wantErr {
				require.ErrorIs(t, err, listener.ErrUnknownHost)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			if fb, ok := tt.fallback.(*resolver.ResolverMock); ok {
				assert.Len(t, fb.SendCalls(), tt.wantFallback)
			}
		})
	}
}
