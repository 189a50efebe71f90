// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc/credentials"
)

// Exporter is the protocol used to export the traces
type Exporter string

const (
	// HTTP is the protocol for the otlp http exporter
	HTTP Exporter = "http"
	// GRPC is the protocol for the otlp grpc exporter
	GRPC Exporter = "grpc"
	// STDOUT writes the traces to stdout
	STDOUT Exporter = "stdout"
	// NOOP discards the traces
	NOOP Exporter = "noop"
)

// String returns the string representation of the exporter
func (e Exporter) String() string {
	return string(e)
}

// Validate checks if the exporter is supported
func (e Exporter) Validate() error {
	switch e {
	case HTTP, GRPC, STDOUT, NOOP, "":
		return nil
	default:
		return fmt.Errorf("unsupported exporter %q, must be one of %q, %q, %q or %q", e, HTTP, GRPC, STDOUT, NOOP)
	}
}

// IsExporting returns true if the exporter sends the traces to a collector
func (e Exporter) IsExporting() bool {
	return e == HTTP || e == GRPC
}

// Create creates a new span exporter for the configuration
func (e Exporter) Create(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	switch e {
	case HTTP:
		return newHTTPExporter(ctx, config)
	case GRPC:
		return newGRPCExporter(ctx, config)
	case STDOUT:
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return &noopExporter{}, nil
	}
}

func newHTTPExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(config.URL),
	}
	if config.Token != "" {
		opts = append(opts, otlptracehttp.WithHeaders(authHeader(config.Token)))
	}

	if !config.TLS.Enabled {
		opts = append(opts, otlptracehttp.WithInsecure())
		return otlptracehttp.New(ctx, opts...)
	}

	tlsCfg, err := config.TLS.tlsConfig()
	if err != nil {
		return nil, err
	}
	opts = append(opts, otlptracehttp.WithTLSClientConfig(tlsCfg))
	return otlptracehttp.New(ctx, opts...)
}

func newGRPCExporter(ctx context.Context, config *Config) (sdktrace.SpanExporter, error) {
	opts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpointURL(config.URL),
	}
	if config.Token != "" {
		opts = append(opts, otlptracegrpc.WithHeaders(authHeader(config.Token)))
	}

	if !config.TLS.Enabled {
		opts = append(opts, otlptracegrpc.WithInsecure())
		return otlptracegrpc.New(ctx, opts...)
	}

	tlsCfg, err := config.TLS.tlsConfig()
	if err != nil {
		return nil, err
	}
	opts = append(opts, otlptracegrpc.WithTLSCredentials(credentials.NewTLS(tlsCfg)))
	return otlptracegrpc.New(ctx, opts...)
}

func authHeader(token string) map[string]string {
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	return map[string]string{"Authorization": token}
}

// tlsConfig returns the tls configuration trusting the system pool and the configured certificate
func (c *TLSConfig) tlsConfig() (*tls.Config, error) {
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if c.CertPath != "" {
		b, err := os.ReadFile(c.CertPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read certificate: %w", err)
		}
		if !pool.AppendCertsFromPEM(b) {
			return nil, fmt.Errorf("failed to append certificate %s to pool", c.CertPath)
		}
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

var _ sdktrace.SpanExporter = (*noopExporter)(nil)

// noopExporter drops all spans
type noopExporter struct{}

func (e *noopExporter) ExportSpans(_ context.Context, _ []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e *noopExporter) Shutdown(_ context.Context) error {
	return nil
}
