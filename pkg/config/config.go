// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"github.com/telekom/proxydns/internal/helper"
	"github.com/telekom/proxydns/pkg/api"
	"github.com/telekom/proxydns/pkg/metrics"
	"github.com/telekom/proxydns/pkg/platform"
	"github.com/telekom/proxydns/pkg/resolver"
)

// Config is the startup configuration of proxydns
type Config struct {
	// Resolver selects the resolver chain, its keys live at the top level
	Resolver resolver.Config `yaml:",inline" mapstructure:",squash"`
	// System overrides the nameservers and search domains of the platform
	System SystemConfig `yaml:"system" mapstructure:"system"`
	// Api is the configuration for the api server
	Api api.Config `yaml:"api" mapstructure:"api"`
	// Telemetry is the configuration for the telemetry
	Telemetry metrics.Config `yaml:"telemetry" mapstructure:"telemetry"`
	// Retry is the retry policy of one-shot resolutions
	Retry helper.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// SystemConfig holds the overrides of the platform resolver configuration
type SystemConfig struct {
	// Nameservers replace the nameservers of the resolv.conf file
	Nameservers []string `yaml:"nameservers,omitempty" mapstructure:"nameservers"`
	// SearchPath replaces the search domains of the resolv.conf file
	SearchPath []string `yaml:"searchPath,omitempty" mapstructure:"searchPath"`
	// ResolvConf is the path of the resolv.conf file
	ResolvConf string `yaml:"resolvConf,omitempty" mapstructure:"resolvConf"`
}

// Platform applies the configured overrides to the detected platform
func (c *Config) Platform(detected platform.Platform) platform.Platform {
	p := detected
	if c.Resolver.HostsFile != "" {
		p.HostsFile = c.Resolver.HostsFile
	}
	if c.System.ResolvConf != "" {
		p.ResolvConf = c.System.ResolvConf
	}
	if len(c.System.Nameservers) > 0 {
		p.Nameservers = c.System.Nameservers
	}
	if len(c.System.SearchPath) > 0 {
		p.SearchPath = c.System.SearchPath
	}
	return p
}

// HasTelemetry returns true if the config has telemetry enabled
func (c *Config) HasTelemetry() bool {
	return c.Telemetry.Enabled
}

// HasAPI returns true if the api server should be started
func (c *Config) HasAPI() bool {
	return c.Api.Enabled()
}

// HostsEnabled returns true if the hosts database is consulted
func (c *Config) HostsEnabled() bool {
	return !c.Resolver.IgnoreHostsFile
}
