// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package e2e

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/config"
	"github.com/telekom/proxydns/pkg/proxydns"
	"github.com/telekom/proxydns/test"
	"github.com/telekom/proxydns/test/framework"
)

const baseURL = "http://localhost:50506"

func TestE2E_ProxyDNS(t *testing.T) {
	test.MarkAsLong(t)

	cfg := config.Config{
		Api: api.Config{ListeningAddress: "localhost:50506"},
		// the system resolver is never asked since fallback is disabled
		System: config.SystemConfig{Nameservers: []string{"127.0.0.1"}},
	}
	e := framework.New(t, cfg).
		WithZone(map[string]string{"app.example.": "192.0.2.10"}).
		WithHosts("10.0.0.5 db.local\n::1 db.local\n")

	ctx, cancel := context.WithCancel(t.Context())
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		if err := e.Run(ctx); !errors.Is(err, proxydns.ErrFinalShutdown) {
			t.Errorf("proxydns exited with unexpected error: %v", err)
		}
	}()
	defer func() {
		cancel()
		<-finished
	}()

	e.AwaitStartup(baseURL+"/openapi", 5*time.Second)

	tests := []struct {
		name   string
		path   string
		status int
		want   any
	}{
		{
			name:   "resolve with the upstream",
			path:   "/v1/resolve?host=app.example&port=443",
			status: http.StatusOK,
			want:   proxydns.Resolution{Host: "app.example", Address: "192.0.2.10:443"},
		},
		{
			name:   "resolve with the hosts database",
			path:   "/v1/resolve?host=db.local&port=5432",
			status: http.StatusOK,
			want:   proxydns.Resolution{Host: "db.local", Address: "10.0.0.5:5432"},
		},
		{
			name:   "unknown host",
			path:   "/v1/resolve?host=missing.example",
			status: http.StatusNotFound,
		},
		{
			name:   "hosts entry",
			path:   "/v1/hosts?name=db.local&type=AAAA",
			status: http.StatusOK,
			want:   proxydns.HostsEntry{Name: "db.local", Type: "AAAA", Address: "::1"},
		},
	}

	// the asserter reports to the test of the framework, so the cases run sequentially
	for _, tt := range tests {
		t.Log(tt.name)
		e.HttpAssertion(baseURL + tt.path).
			WithSchema().
			WithBody(tt.want).
			Assert(tt.status)
	}
}
