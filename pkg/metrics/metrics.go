// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package metrics owns the prometheus registry served on /metrics and the
// tracer provider receiving the spans of resolutions and DoH exchanges.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/telekom/proxydns/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const serviceName = "proxydns"

var _ Provider = (*telemetry)(nil)

//go:generate go tool moq -out metrics_moq.go . Provider
type Provider interface {
	// GetRegistry returns the registry the listener and resolver info collectors are registered on
	GetRegistry() *prometheus.Registry
	// InitTracing installs the tracer provider if telemetry is enabled
	InitTracing(ctx context.Context) error
	// Shutdown flushes the pending spans
	Shutdown(ctx context.Context) error
}

type telemetry struct {
	config   Config
	version  string
	registry *prometheus.Registry
	tp       *sdktrace.TracerProvider
}

// New creates the registry with the runtime collectors of the proxydns process.
// The version labels go_build_info and the service version of the traces.
func New(config Config, version string) Provider { //nolint:gocritic // copied once at startup
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)

	return &telemetry{
		config:   config,
		version:  version,
		registry: registry,
	}
}

func (m *telemetry) GetRegistry() *prometheus.Registry {
	return m.registry
}

// InitTracing sets the global tracer provider used by the listener and the DoH transport.
// Without telemetry the global no-op provider stays in place.
func (m *telemetry) InitTracing(ctx context.Context) error {
	log := logger.FromContext(ctx)
	if !m.config.Enabled {
		log.DebugContext(ctx, "Telemetry disabled, resolutions are not traced")
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithHost(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String(m.version),
		),
	)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create resource", "error", err)
		return fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := m.config.Exporter.Create(ctx, &m.config)
	if err != nil {
		log.ErrorContext(ctx, "Failed to create exporter", "error", err)
		return fmt.Errorf("failed to create exporter: %w", err)
	}

	// a resolution yields one span plus one per upstream exchange
	const (
		batchTimeout = 5 * time.Second
		maxQueueSize = 2048
		maxBatchSize = 256
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(m.config.sampler()),
		sdktrace.WithBatcher(exporter,
			sdktrace.WithBatchTimeout(batchTimeout),
			sdktrace.WithMaxQueueSize(maxQueueSize),
			sdktrace.WithMaxExportBatchSize(maxBatchSize),
		),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	m.tp = tp
	log.InfoContext(ctx, "Tracing resolutions", "exporter", m.config.Exporter, "sampleRatio", m.config.SampleRatio)
	return nil
}

// Shutdown exports the spans still queued and stops the tracer provider
func (m *telemetry) Shutdown(ctx context.Context) error {
	if m.tp == nil {
		return nil
	}
	log := logger.FromContext(ctx)
	if err := m.tp.Shutdown(ctx); err != nil {
		log.ErrorContext(ctx, "Failed to shutdown tracer provider", "error", err)
		return fmt.Errorf("failed to shutdown tracer provider: %w", err)
	}
	log.DebugContext(ctx, "Tracing shutdown")
	return nil
}
