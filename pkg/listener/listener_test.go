// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package listener

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"testing"

	"github.com/miekg/dns"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/telekom/proxydns/pkg/resolver"
)

type timeoutError struct{}

func (timeoutError) Error() string { return "i/o timeout" }
func (timeoutError) Timeout() bool { return true }

// answering returns a resolver mock answering every query with rcode and, for NOERROR, ip
func answering(rcode int, ip string) *resolver.ResolverMock {
	return &resolver.ResolverMock{
		SendFunc: func(_ context.Context, q *dns.Msg) (*dns.Msg, error) {
			resp := new(dns.Msg)
			resp.SetRcode(q, rcode)
			if rcode == dns.RcodeSuccess && ip != "" {
				resp.Answer = append(resp.Answer, &dns.A{
					Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
					A:   net.ParseIP(ip),
				})
			}
			return resp, nil
		},
	}
}

func failing(err error) *resolver.ResolverMock {
	return &resolver.ResolverMock{
		SendFunc: func(_ context.Context, q *dns.Msg) (*dns.Msg, error) {
			return nil, &resolver.ErrTransport{ID: q.Id, Name: q.Question[0].Name, Qtype: q.Question[0].Qtype, Err: err}
		},
	}
}

func hostsWith(entries map[string]string) *HostsLookupMock {
	return &HostsLookupMock{
		LookupFunc: func(_ context.Context, name string, qtype uint16) (netip.Addr, bool, error) {
			if qtype != dns.TypeA {
				return netip.Addr{}, false, resolver.ErrInvalidType
			}
			ip, ok := entries[name]
			if !ok {
				return netip.Addr{}, false, nil
			}
			return netip.MustParseAddr(ip), true, nil
		},
	}
}

func TestListener_OnResolutionRequest(t *testing.T) {
	tests := []struct {
		name      string
		resolver  *resolver.ResolverMock
		hosts     *HostsLookupMock
		host      string
		want      string
		wantOk    bool
		wantSends int
	}{
		{
			name:     "hosts entry wins",
			resolver: answering(dns.RcodeSuccess, "192.0.2.1"),
			hosts:    hostsWith(map[string]string{"foo.local": "127.0.0.1"}),
			host:     "foo.local",
			want:     "127.0.0.1:443",
			wantOk:   true,
		},
		{
			name:      "hosts miss resolves with dns",
			resolver:  answering(dns.RcodeSuccess, "192.0.2.1"),
			hosts:     hostsWith(nil),
			host:      "example.org",
			want:      "192.0.2.1:443",
			wantOk:    true,
			wantSends: 1,
		},
		{
			name:      "without hosts database",
			resolver:  answering(dns.RcodeSuccess, "192.0.2.2"),
			host:      "foo.local",
			want:      "192.0.2.2:443",
			wantOk:    true,
			wantSends: 1,
		},
		{
			name:      "nxdomain",
			resolver:  answering(dns.RcodeNameError, ""),
			hosts:     hostsWith(nil),
			host:      "missing.example",
			wantSends: 1,
		},
		{
			name:      "servfail",
			resolver:  answering(dns.RcodeServerFailure, ""),
			host:      "broken.example",
			wantSends: 1,
		},
		{
			name:      "no a record",
			resolver:  answering(dns.RcodeSuccess, ""),
			host:      "v6only.example",
			wantSends: 1,
		},
		{
			name:      "transport error",
			resolver:  failing(timeoutError{}),
			host:      "slow.example",
			wantSends: 1,
		},
		{
			name:     "ip literal",
			resolver: answering(dns.RcodeNameError, ""),
			hosts:    hostsWith(nil),
			host:     "198.51.100.4",
			want:     "198.51.100.4:443",
			wantOk:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hosts HostsLookup
			if tt.hosts != nil {
				hosts = tt.hosts
			}
			l := New(tt.resolver, hosts)

			req := &Request{Host: tt.host, Port: 443}
			ok := l.OnResolutionRequest(t.Context(), req)
			assert.Equal(t, tt.wantOk, ok)
			assert.Len(t, tt.resolver.SendCalls(), tt.wantSends)
			if !tt.wantOk {
				assert.Nil(t, req.Response)
				return
			}
			require.NotNil(t, req.Response)
			assert.Equal(t, netip.MustParseAddrPort(tt.want), *req.Response)
		})
	}
}

func TestListener_OnResolutionRequest_Passthrough(t *testing.T) {
	r := &resolver.ResolverMock{}
	hosts := &HostsLookupMock{}
	l := New(r, hosts)

	existing := netip.MustParseAddrPort("203.0.113.1:80")
	req := &Request{Host: "example.org", Port: 443, Response: &existing}

	assert.True(t, l.OnResolutionRequest(t.Context(), req))
	assert.Equal(t, existing, *req.Response)
	assert.Empty(t, r.SendCalls())
	assert.Empty(t, hosts.LookupCalls())
}

func TestListener_Resolve_Errors(t *testing.T) {
	t.Run("transport errors are unknown hosts", func(t *testing.T) {
		l := New(failing(timeoutError{}), nil)
		_, err := l.Resolve(t.Context(), "slow.example", 443)
		assert.ErrorIs(t, err, ErrUnknownHost)
		assert.ErrorIs(t, err, resolver.ErrTimeout)
	})

	t.Run("hosts failures fall through to dns", func(t *testing.T) {
		hosts := &HostsLookupMock{
			LookupFunc: func(context.Context, string, uint16) (netip.Addr, bool, error) {
				return netip.Addr{}, false, errors.New("permission denied")
			},
		}
		l := New(answering(dns.RcodeSuccess, "192.0.2.7"), hosts)
		got, err := l.Resolve(t.Context(), "example.org", 80)
		require.NoError(t, err)
		assert.Equal(t, netip.MustParseAddrPort("192.0.2.7:80"), got)
	})

	t.Run("port out of range", func(t *testing.T) {
		r := answering(dns.RcodeSuccess, "192.0.2.7")
		l := New(r, nil)
		_, err := l.Resolve(t.Context(), "example.org", 70000)
		assert.ErrorIs(t, err, ErrUnknownHost)
		assert.Empty(t, r.SendCalls())
	})

	t.Run("invalid hostname", func(t *testing.T) {
		r := answering(dns.RcodeSuccess, "192.0.2.7")
		l := New(r, nil)
		_, err := l.Resolve(t.Context(), "bad..name", 80)
		assert.ErrorIs(t, err, ErrUnknownHost)
		assert.ErrorIs(t, err, resolver.ErrInvalidName)
	})

	t.Run("without resolver", func(t *testing.T) {
		l := New(nil, hostsWith(nil))
		_, err := l.Resolve(t.Context(), "example.org", 80)
		assert.ErrorIs(t, err, ErrUnknownHost)
	})
}

func TestListener_Resolve_SearchPath(t *testing.T) {
	r := &resolver.ResolverMock{
		SendFunc: func(_ context.Context, q *dns.Msg) (*dns.Msg, error) {
			resp := new(dns.Msg)
			if q.Question[0].Name != "intranet.corp.example." {
				resp.SetRcode(q, dns.RcodeNameError)
				return resp, nil
			}
			resp.SetReply(q)
			resp.Answer = append(resp.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: q.Question[0].Name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP("10.1.2.3"),
			})
			return resp, nil
		},
	}
	l := New(r, nil, WithSearchPath([]string{"corp.example"}, 1))

	got, err := l.Resolve(t.Context(), "intranet", 8080)
	require.NoError(t, err)
	assert.Equal(t, netip.MustParseAddrPort("10.1.2.3:8080"), got)
}

func TestListener_Metrics(t *testing.T) {
	l := New(answering(dns.RcodeNameError, ""), hostsWith(map[string]string{"foo.local": "127.0.0.1"}))
	registry := prometheus.NewRegistry()
	registry.MustRegister(l.GetCollectors()...)

	_, err := l.Resolve(t.Context(), "foo.local", 80)
	require.NoError(t, err)
	_, err = l.Resolve(t.Context(), "missing.example", 80)
	require.Error(t, err)

	families, err := registry.Gather()
	require.NoError(t, err)

	counts := map[string]float64{}
	for _, mf := range families {
		if mf.GetName() != "proxydns_resolutions_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			counts[labels["source"]+"/"+labels["status"]] = m.GetCounter().GetValue()
		}
	}
	assert.Equal(t, map[string]float64{
		"hosts/successful":   1,
		"dns/host not found": 1,
	}, counts)
}
