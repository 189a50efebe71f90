// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package framework

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/miekg/dns"

	"github.com/telekom/proxydns/pkg/config"
	"github.com/telekom/proxydns/pkg/proxydns"
)

// E2E is an end-to-end test.
type E2E struct {
	config   config.Config
	t        *testing.T
	proxydns *proxydns.ProxyDNS

	zone     map[string]string
	upstream *dns.Server

	running int32
}

// New creates an end-to-end test running proxydns with cfg.
func New(t *testing.T, cfg config.Config) *E2E {
	return &E2E{config: cfg, t: t}
}

// WithZone serves the A records of the zone from an upstream DNS server
// which is used as the custom resolver of proxydns.
// The names of the zone must be fully qualified.
func (e *E2E) WithZone(records map[string]string) *E2E {
	e.zone = records
	return e
}

// WithHosts writes the content to a hosts file used by proxydns.
func (e *E2E) WithHosts(content string) *E2E {
	e.t.Helper()
	path := filepath.Join(e.t.TempDir(), "hosts")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		e.t.Fatalf("Failed to write hosts file: %v", err)
	}
	e.config.Resolver.HostsFile = path
	e.config.Resolver.IgnoreHostsFile = false
	return e
}

// Run starts the upstream server if a zone is configured and runs proxydns
// until the context is done.
func (e *E2E) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&e.running, 0, 1) {
		e.t.Fatal("E2E.Run must be called once")
	}

	if e.zone != nil {
		addr, err := e.startUpstream()
		if err != nil {
			return err
		}
		defer func() {
			if err := e.upstream.Shutdown(); err != nil {
				e.t.Errorf("Failed to shutdown upstream: %v", err)
			}
		}()
		e.config.Resolver.Address = addr
	}

	if err := e.config.Validate(ctx); err != nil {
		return err
	}
	p, err := proxydns.New(ctx, &e.config, "e2e")
	if err != nil {
		return err
	}
	e.proxydns = p
	return p.Run(ctx)
}

// AwaitStartup waits for the provided URL to be ready.
//
// Must be called after the e2e test started with [E2E.Run].
func (e *E2E) AwaitStartup(u string, failureTimeout time.Duration) *E2E {
	e.t.Helper()
	const backoff = 100 * time.Millisecond

	// Initial delay to allow the server to start.
	<-time.After(backoff)
	if !e.isRunning() {
		e.t.Fatal("E2E.AwaitStartup must be called after E2E.Run")
	}

	deadline := time.Now().Add(failureTimeout)
	for time.Now().Before(deadline) {
		req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, u, http.NoBody)
		if err != nil {
			e.t.Fatalf("Failed to create request: %v", err)
		}

		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return e
			}
		}

		<-time.After(backoff)
	}

	e.t.Fatalf("%s did not become ready within %v", u, failureTimeout)
	return e
}

// startUpstream serves the zone over udp on a random local port and returns its address.
func (e *E2E) startUpstream() (string, error) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("failed to listen for upstream: %w", err)
	}

	started := make(chan struct{})
	e.upstream = &dns.Server{
		PacketConn:        pc,
		Handler:           dns.HandlerFunc(e.serveDNS),
		NotifyStartedFunc: func() { close(started) },
	}
	go func() {
		if err := e.upstream.ActivateAndServe(); err != nil && !errors.Is(err, net.ErrClosed) {
			e.t.Errorf("Failed to serve upstream: %v", err)
		}
	}()

	select {
	case <-started:
		return pc.LocalAddr().String(), nil
	case <-time.After(time.Second):
		return "", errors.New("upstream did not start in time")
	}
}

// serveDNS answers A queries from the zone and NXDOMAIN otherwise.
func (e *E2E) serveDNS(w dns.ResponseWriter, q *dns.Msg) {
	resp := new(dns.Msg)
	name := q.Question[0].Name
	ip, ok := e.zone[name]
	switch {
	case !ok:
		resp.SetRcode(q, dns.RcodeNameError)
	default:
		resp.SetReply(q)
		if q.Question[0].Qtype == dns.TypeA {
			resp.Answer = append(resp.Answer, &dns.A{
				Hdr: dns.RR_Header{Name: name, Rrtype: dns.TypeA, Class: dns.ClassINET, Ttl: 60},
				A:   net.ParseIP(ip),
			})
		}
	}
	if err := w.WriteMsg(resp); err != nil {
		e.t.Errorf("Failed to write upstream response: %v", err)
	}
}

// isRunning returns true if the test is running.
func (e *E2E) isRunning() bool {
	return atomic.LoadInt32(&e.running) == 1
}
