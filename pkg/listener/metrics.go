// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package listener

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics defines the metric collectors of the listener
type metrics struct {
	count     *prometheus.CounterVec
	histogram *prometheus.HistogramVec
}

// newMetrics initializes metric collectors of the listener
func newMetrics() metrics {
	return metrics{
		count: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "proxydns_resolutions_total",
				Help: "Total number of resolution requests by source and outcome.",
			},
			[]string{"source", "status"},
		),
		histogram: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "proxydns_resolution_duration_seconds",
				Help: "Histogram of resolution times in seconds.",
			},
			[]string{"source"},
		),
	}
}

// GetCollectors returns all metric collectors
func (m *metrics) GetCollectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.count,
		m.histogram,
	}
}

// Observe records one resolution
func (m *metrics) Observe(source, status string, duration time.Duration) {
	m.count.WithLabelValues(source, status).Inc()
	m.histogram.WithLabelValues(source).Observe(duration.Seconds())
}
