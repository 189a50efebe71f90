// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/telekom/proxydns/internal/logger"
	"github.com/telekom/proxydns/pkg/resolver"
)

// Validate validates the startup config
func (c *Config) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)

	if vErr := c.Resolver.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The resolver configuration is invalid", "error", vErr)
		err = errors.Join(err, vErr)
	}

	if vErr := c.System.Validate(ctx); vErr != nil {
		log.ErrorContext(ctx, "The system resolver overrides are invalid")
		err = errors.Join(err, vErr)
	}

	if c.HasTelemetry() {
		if vErr := c.Telemetry.Validate(ctx); vErr != nil {
			log.ErrorContext(ctx, "The telemetry configuration is invalid")
			err = errors.Join(err, vErr)
		}
	}

	if vErr := c.Api.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The api configuration is invalid", "error", vErr)
		err = errors.Join(err, vErr)
	}

	if vErr := c.Retry.Validate(); vErr != nil {
		log.ErrorContext(ctx, "The retry configuration is invalid", "retryCount", c.Retry.Count, "retryDelay", c.Retry.Delay)
		err = errors.Join(err, vErr)
	}

	if err != nil {
		return fmt.Errorf("validation of configuration failed: %w", err)
	}
	return nil
}

// Validate validates the system resolver overrides
func (c *SystemConfig) Validate(ctx context.Context) (err error) {
	log := logger.FromContext(ctx)
	for _, ns := range c.Nameservers {
		if _, pErr := resolver.ParseAddressSpec(ns); pErr != nil {
			log.ErrorContext(ctx, "The nameserver must be an IP address with optional port", "nameserver", ns)
			err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidNameserver, ns))
		}
	}
	for _, domain := range c.SearchPath {
		if _, nErr := resolver.NormalizeName(domain); nErr != nil {
			log.ErrorContext(ctx, "The search domain must be a domain name", "domain", domain)
			err = errors.Join(err, fmt.Errorf("%w: %q", ErrInvalidSearchDomain, domain))
		}
	}
	return err
}
