// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// DefaultTimeout is the timeout of a single query if none is configured
const DefaultTimeout = 5 * time.Second

const (
	schemeHTTPS = "https://"
	schemeHTTP  = "http://"
)

// Config defines how hostnames are resolved
type Config struct {
	// Address is the custom resolver: an IP literal with optional port or a DoH URL
	Address string `yaml:"dns" mapstructure:"dns"`
	// Preset selects a built-in resolver, overriding Address unless it is CUSTOM
	Preset string `yaml:"dns_preset" mapstructure:"dns_preset"`
	// DNSSEC enables validation of the responses of plain resolvers
	DNSSEC bool `yaml:"dnssec" mapstructure:"dnssec"`
	// AllowInsecure permits DoH over plain http://
	AllowInsecure bool `yaml:"allow_insecure" mapstructure:"allow_insecure"`
	// IgnoreHostsFile disables the local hosts database
	IgnoreHostsFile bool `yaml:"ignore_system_hosts" mapstructure:"ignore_system_hosts"`
	// Fallback lets the caller use the system resolver when a hostname could not be resolved
	Fallback bool `yaml:"fallback" mapstructure:"fallback"`
	// HostsFile overrides the platform's hosts database path
	HostsFile string `yaml:"hosts_file,omitempty" mapstructure:"hosts_file"`
	// Timeout of a single query, DefaultTimeout if zero
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
	// TSIG signs queries with a shared secret
	TSIG *TSIGKey `yaml:"tsig,omitempty" mapstructure:"tsig"`
}

// TSIGKey is a shared secret used to sign and verify DNS messages
type TSIGKey struct {
	// Name is the key name
	Name string `yaml:"name" mapstructure:"name"`
	// Algorithm is the HMAC algorithm, hmac-sha256 if empty
	Algorithm string `yaml:"algorithm" mapstructure:"algorithm"`
	// Secret is the base64 encoded key
	Secret string `yaml:"secret" mapstructure:"secret"`
}

// Endpoint is the effective resolver selected by a configuration
type Endpoint struct {
	// Address is the resolver address or DoH URL with a single trailing slash removed
	Address string
	// DoH is true if Address is a DNS-over-HTTPS URL
	DoH bool
}

// Endpoint determines the effective resolver address
func (c *Config) Endpoint() (Endpoint, error) {
	preset, ok := ParsePreset(c.Preset)
	if !ok {
		return Endpoint{}, ErrInvalidConfig{
			Field:  "dns_preset",
			Reason: fmt.Sprintf("unknown preset %q, must be one of %s", c.Preset, strings.Join(Presets(), ", ")),
		}
	}

	address := c.Address
	if preset != PresetCustom {
		address = preset.Address()
	}
	address = strings.TrimSpace(address)
	address = strings.TrimSuffix(address, "/")

	doh := strings.HasPrefix(address, schemeHTTPS) ||
		(c.AllowInsecure && strings.HasPrefix(address, schemeHTTP))
	if strings.HasPrefix(address, schemeHTTP) && !doh {
		return Endpoint{}, ErrInvalidConfig{
			Field:  "dns",
			Reason: "plain-HTTP DNS resolvers require allow_insecure to be enabled",
		}
	}

	return Endpoint{Address: address, DoH: doh}, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() (err error) {
	ep, eErr := c.Endpoint()
	if eErr != nil {
		return eErr
	}
	if !ep.DoH && ep.Address != "" {
		if _, pErr := ParseAddressSpec(ep.Address); pErr != nil {
			err = errors.Join(err, ErrInvalidConfig{Field: "dns", Reason: pErr.Error()})
		}
	}

	if c.Timeout < 0 {
		err = errors.Join(err, ErrInvalidConfig{Field: "timeout", Reason: "timeout must not be negative"})
	}

	if c.TSIG != nil {
		if vErr := c.TSIG.Validate(); vErr != nil {
			err = errors.Join(err, vErr)
		}
	}
	return err
}

// QueryTimeout returns the configured timeout or DefaultTimeout
func (c *Config) QueryTimeout() time.Duration {
	if c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}

var tsigAlgorithms = []string{dns.HmacSHA1, dns.HmacSHA224, dns.HmacSHA256, dns.HmacSHA384, dns.HmacSHA512}

// Validate checks if the key is usable
func (k *TSIGKey) Validate() error {
	if k.Name == "" || !validName(k.Name) {
		return ErrInvalidConfig{Field: "tsig.name", Reason: fmt.Sprintf("%q is not a domain name", k.Name)}
	}
	if !slices.Contains(tsigAlgorithms, k.algorithm()) {
		return ErrInvalidConfig{Field: "tsig.algorithm", Reason: fmt.Sprintf("unsupported algorithm %q", k.Algorithm)}
	}
	if _, err := base64.StdEncoding.DecodeString(k.Secret); err != nil || k.Secret == "" {
		return ErrInvalidConfig{Field: "tsig.secret", Reason: "secret must be non-empty base64"}
	}
	return nil
}

// fqdn returns the canonical key name
func (k *TSIGKey) fqdn() string {
	return dns.CanonicalName(k.Name)
}

func (k *TSIGKey) algorithm() string {
	if k.Algorithm == "" {
		return dns.HmacSHA256
	}
	return dns.CanonicalName(k.Algorithm)
}

// sign adds a TSIG record to m and packs it.
// It returns the wire message and the request MAC needed to verify the response.
func (k *TSIGKey) sign(m *dns.Msg) (wire []byte, mac string, err error) {
	m.SetTsig(k.fqdn(), k.algorithm(), 300, time.Now().Unix())
	return dns.TsigGenerate(m, k.Secret, "", false)
}

// verify checks the TSIG record of a packed response against the request MAC
func (k *TSIGKey) verify(wire []byte, requestMAC string) error {
	return dns.TsigVerify(wire, k.Secret, requestMAC, false)
}

func validName(name string) bool {
	_, ok := dns.IsDomainName(name)
	return ok
}
