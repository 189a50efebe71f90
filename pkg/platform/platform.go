// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package platform describes the host proxydns runs on: where the hosts
// database lives and which nameservers and search domains the system uses.
//
// The platform is probed once at startup with [Detect] and handed to the
// components that need it. Embedding applications that know better, e.g. a
// mobile app that receives its nameservers from the OS network API, build the
// [Platform] value themselves.
package platform

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/miekg/dns"
)

const (
	// DefaultResolvConf is the resolver configuration file on unix like systems
	DefaultResolvConf = "/etc/resolv.conf"
	// DefaultDNSPort is the port used for nameservers without an explicit port
	DefaultDNSPort = "53"
)

// Platform holds the platform specific resolution settings
type Platform struct {
	// OS is the operating system, as reported by runtime.GOOS
	OS string `yaml:"os" mapstructure:"os"`
	// HostsFile is the path to the local hosts database
	HostsFile string `yaml:"hostsFile" mapstructure:"hostsFile"`
	// ResolvConf is the path to the resolv.conf file; empty disables reading it
	ResolvConf string `yaml:"resolvConf" mapstructure:"resolvConf"`
	// Nameservers overrides the system nameservers when set
	Nameservers []string `yaml:"nameservers" mapstructure:"nameservers"`
	// SearchPath overrides the system search domains when set
	SearchPath []string `yaml:"searchPath" mapstructure:"searchPath"`
}

// Detect probes the running system
func Detect() Platform {
	p := Platform{
		OS:        runtime.GOOS,
		HostsFile: defaultHostsFile(),
	}
	if !p.IsWindows() && !p.IsAndroid() {
		p.ResolvConf = DefaultResolvConf
	}
	return p
}

// IsWindows reports whether the platform is windows
func (p Platform) IsWindows() bool {
	return p.OS == "windows"
}

// IsAndroid reports whether the platform is android
func (p Platform) IsAndroid() bool {
	return p.OS == "android"
}

// SystemConfig returns the nameservers and search domains of the system.
// Explicit Nameservers and SearchPath take precedence over the resolv.conf file.
// The LOCALDOMAIN and RES_OPTIONS environment variables amend the file as
// described in resolv.conf(5).
func (p Platform) SystemConfig() (*dns.ClientConfig, error) {
	cfg := &dns.ClientConfig{Port: DefaultDNSPort, Ndots: 1, Timeout: 5, Attempts: 2}

	if p.ResolvConf != "" && len(p.Nameservers) == 0 {
		b, err := os.ReadFile(p.ResolvConf)
		switch {
		case err == nil:
			parsed, pErr := dns.ClientConfigFromReader(bytes.NewReader(b))
			if pErr != nil {
				return nil, fmt.Errorf("failed to parse %s: %w", p.ResolvConf, pErr)
			}
			cfg = parsed
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("failed to read %s: %w", p.ResolvConf, err)
		}
		applyEnvOverrides(cfg)
	}

	if len(p.Nameservers) > 0 {
		cfg.Servers = append([]string(nil), p.Nameservers...)
	}
	if len(p.SearchPath) > 0 {
		cfg.Search = append([]string(nil), p.SearchPath...)
	}
	return cfg, nil
}

// Nameserver returns the first system nameserver as host:port.
// The second return value is false if the system has none configured.
func (p Platform) Nameserver() (string, bool, error) {
	cfg, err := p.SystemConfig()
	if err != nil {
		return "", false, err
	}
	for _, s := range cfg.Servers {
		if s == "" {
			continue
		}
		if _, _, sErr := net.SplitHostPort(s); sErr == nil {
			return s, true, nil
		}
		port := cfg.Port
		if port == "" {
			port = DefaultDNSPort
		}
		return net.JoinHostPort(s, port), true, nil
	}
	return "", false, nil
}

func applyEnvOverrides(cfg *dns.ClientConfig) {
	if local := os.Getenv("LOCALDOMAIN"); local != "" {
		cfg.Search = strings.Fields(local)
	}
	for _, opt := range strings.Fields(os.Getenv("RES_OPTIONS")) {
		if v, ok := strings.CutPrefix(opt, "ndots:"); ok {
			if n, err := strconv.Atoi(v); err == nil && n >= 0 {
				// resolv.conf(5) caps ndots at 15
				cfg.Ndots = min(n, 15)
			}
		}
	}
}
