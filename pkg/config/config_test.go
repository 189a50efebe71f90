// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"

	"github.com/telekom/proxydns/internal/helper"
	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/metrics"
	"github.com/telekom/proxydns/pkg/platform"
	"github.com/telekom/proxydns/pkg/resolver"
)

func TestConfig_Unmarshal(t *testing.T) {
	b, err := os.ReadFile("testdata/config.yaml")
	if err != nil {
		t.Fatalf("failed to read test config: %v", err)
	}

	var got Config
	if err = yaml.Unmarshal(b, &got); err != nil {
		t.Fatalf("yaml.Unmarshal() error = %v", err)
	}

	want := Config{
		Resolver: resolver.Config{
			Address:   "192.0.2.53:5353",
			Preset:    "CUSTOM",
			DNSSEC:    true,
			Fallback:  true,
			HostsFile: "/etc/hosts.proxydns",
			Timeout:   2 * time.Second,
			TSIG: &resolver.TSIGKey{
				Name:      "proxydns.",
				Algorithm: "hmac-sha256.",
				Secret:    "c2VjcmV0LXNoYXJlZC1ieS1ib3RoLXNpZGVz",
			},
		},
		System: SystemConfig{
			Nameservers: []string{"198.51.100.1"},
			SearchPath:  []string{"corp.example"},
		},
		Api: api.Config{ListeningAddress: ":8080"},
		Telemetry: metrics.Config{
			Enabled:  true,
			Exporter: metrics.GRPC,
			URL:      "localhost:4317",
		},
		Retry: helper.RetryConfig{Count: 3, Delay: time.Second},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Config mismatch (-want +got):\n%s", diff)
	}
}

func TestConfig_Platform(t *testing.T) {
	detected := platform.Platform{
		OS:          "linux",
		HostsFile:   "/etc/hosts",
		ResolvConf:  "/etc/resolv.conf",
		Nameservers: []string{"10.0.0.1"},
		SearchPath:  []string{"local"},
	}

	tests := []struct {
		name   string
		config Config
		want   platform.Platform
	}{
		{
			name:   "no overrides",
			config: Config{},
			want:   detected,
		},
		{
			name: "all overrides",
			config: Config{
				Resolver: resolver.Config{HostsFile: "/tmp/hosts"},
				System: SystemConfig{
					Nameservers: []string{"192.0.2.1"},
					SearchPath:  []string{"corp.example"},
					ResolvConf:  "/tmp/resolv.conf",
				},
			},
			want: platform.Platform{
				OS:          "linux",
				HostsFile:   "/tmp/hosts",
				ResolvConf:  "/tmp/resolv.conf",
				Nameservers: []string{"192.0.2.1"},
				SearchPath:  []string{"corp.example"},
			},
		},
		{
			name: "nameservers only",
			config: Config{
				System: SystemConfig{Nameservers: []string{"192.0.2.1"}},
			},
			want: platform.Platform{
				OS:          "linux",
				HostsFile:   "/etc/hosts",
				ResolvConf:  "/etc/resolv.conf",
				Nameservers: []string{"192.0.2.1"},
				SearchPath:  []string{"local"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.config.Platform(detected)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Platform() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConfig_HasTelemetry(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want bool
	}{
		{name: "telemetry disabled", cfg: Config{}, want: false},
		{name: "telemetry enabled", cfg: Config{Telemetry: metrics.Config{Enabled: true}}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.HasTelemetry(); got != tt.want {
				t.Errorf("HasTelemetry() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_HostsEnabled(t *testing.T) {
	c := Config{}
	if !c.HostsEnabled() {
		t.Error("HostsEnabled() = false, want true by default")
	}
	c.Resolver.IgnoreHostsFile = true
	if c.HostsEnabled() {
		t.Error("HostsEnabled() = true, want false when the hosts file is ignored")
	}
}
