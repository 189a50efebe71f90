// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"errors"
	"fmt"

	"github.com/telekom/proxydns/internal/logger"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrMissingURL is returned when an otlp exporter has no collector url
	ErrMissingURL = errors.New("url is required for otlp exporters")
	// ErrInvalidSampleRatio is returned when the sample ratio is outside of [0, 1]
	ErrInvalidSampleRatio = errors.New("sample ratio must be between 0 and 1")
)

// Config configures the traces of the resolutions.
//
// Every resolution of the listener and every DoH exchange opens a span. While
// Enabled is false the spans go to the no-op provider of otel and nothing is exported.
type Config struct {
	// Enabled turns the trace export on
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// Exporter is one of http, grpc, stdout or noop
	Exporter Exporter `yaml:"exporter" mapstructure:"exporter"`
	// URL of the otlp collector, required for http and grpc
	URL string `yaml:"url" mapstructure:"url"`
	// Token is sent as bearer token to the collector
	Token string `yaml:"token,omitempty" mapstructure:"token"`
	// SampleRatio is the share of resolutions that are traced.
	// Zero traces every resolution.
	SampleRatio float64 `yaml:"sampleRatio,omitempty" mapstructure:"sampleRatio"`
	// TLS of the connection to the collector
	TLS TLSConfig `yaml:"tls" mapstructure:"tls"`
}

// TLSConfig secures the connection to the collector
type TLSConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// CertPath is an additional CA certificate, for collectors with private certificates
	CertPath string `yaml:"certPath" mapstructure:"certPath"`
}

// Validate returns all problems of the configuration joined together
func (c *Config) Validate(ctx context.Context) error {
	log := logger.FromContext(ctx)

	var errs []error
	if err := c.Exporter.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Exporter.IsExporting() && c.URL == "" {
		errs = append(errs, fmt.Errorf("%w: %q", ErrMissingURL, c.Exporter))
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidSampleRatio, c.SampleRatio))
	}

	if err := errors.Join(errs...); err != nil {
		log.ErrorContext(ctx, "Invalid telemetry configuration", "error", err)
		return err
	}
	return nil
}

// sampler samples root spans by the configured ratio.
// Child spans of DoH exchanges follow the decision of their resolution.
func (c *Config) sampler() sdktrace.Sampler {
	if c.SampleRatio <= 0 || c.SampleRatio >= 1 {
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	}
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(c.SampleRatio))
}
