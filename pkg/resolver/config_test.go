// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Endpoint(t *testing.T) {
	tests := []struct {
		name      string
		config    Config
		want      Endpoint
		wantField string
	}{
		{
			name:   "google preset",
			config: Config{Preset: "GOOGLE"},
			want:   Endpoint{Address: "8.8.8.8"},
		},
		{
			name:   "google doh preset",
			config: Config{Preset: "GOOGLE_DOH"},
			want:   Endpoint{Address: "https://8.8.8.8/dns-query", DoH: true},
		},
		{
			name:   "preset is case-insensitive and wins over the address",
			config: Config{Preset: "cloudflare_doh", Address: "9.9.9.9"},
			want:   Endpoint{Address: "https://1.1.1.1/dns-query", DoH: true},
		},
		{
			name:   "custom preset uses the address",
			config: Config{Preset: "custom", Address: "9.9.9.9:5353"},
			want:   Endpoint{Address: "9.9.9.9:5353"},
		},
		{
			name:   "no preset and no address",
			config: Config{},
			want:   Endpoint{},
		},
		{
			name:   "single trailing slash is trimmed",
			config: Config{Address: "https://dns.example/dns-query/"},
			want:   Endpoint{Address: "https://dns.example/dns-query", DoH: true},
		},
		{
			name:      "plain http without allow_insecure",
			config:    Config{Address: "http://example/dns-query"},
			wantField: "dns",
		},
		{
			name:   "plain http with allow_insecure",
			config: Config{Address: "http://example/dns-query", AllowInsecure: true},
			want:   Endpoint{Address: "http://example/dns-query", DoH: true},
		},
		{
			name:      "unknown preset",
			config:    Config{Preset: "QUAD9"},
			wantField: "dns_preset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.config.Endpoint()
			if tt.wantField != "" {
				var cErr ErrInvalidConfig
				require.True(t, errors.As(err, &cErr), "want ErrInvalidConfig, got %v", err)
				assert.Equal(t, tt.wantField, cErr.Field)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "empty config", config: Config{}},
		{name: "ipv6 with port", config: Config{Address: "[2001:4860:4860::8888]:53"}},
		{name: "doh url", config: Config{Address: "https://dns.example/dns-query"}},
		{name: "hostname is not a plain resolver address", config: Config{Address: "dns.google"}, wantErr: true},
		{name: "negative timeout", config: Config{Timeout: -time.Second}, wantErr: true},
		{name: "insecure doh", config: Config{Address: "http://dns.example"}, wantErr: true},
		{
			name:   "valid tsig key",
			config: Config{Address: "192.0.2.53", TSIG: &TSIGKey{Name: "proxy-key", Secret: "c2VjcmV0c2VjcmV0"}},
		},
		{
			name:    "tsig key with unknown algorithm",
			config:  Config{Address: "192.0.2.53", TSIG: &TSIGKey{Name: "proxy-key", Algorithm: "hmac-md4", Secret: "c2VjcmV0"}},
			wantErr: true,
		},
		{
			name:    "tsig key with invalid secret",
			config:  Config{Address: "192.0.2.53", TSIG: &TSIGKey{Name: "proxy-key", Secret: "not base64!"}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_QueryTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, (&Config{}).QueryTimeout())
	assert.Equal(t, time.Second, (&Config{Timeout: time.Second}).QueryTimeout())
}

func TestParsePreset(t *testing.T) {
	p, ok := ParsePreset("")
	assert.True(t, ok)
	assert.Equal(t, PresetCustom, p)

	p, ok = ParsePreset(" google ")
	assert.True(t, ok)
	assert.Equal(t, "8.8.8.8", p.Address())

	_, ok = ParsePreset("opendns")
	assert.False(t, ok)

	assert.Equal(t, []string{"CLOUDFLARE", "CLOUDFLARE_DOH", "CUSTOM", "GOOGLE", "GOOGLE_DOH"}, Presets())
}
