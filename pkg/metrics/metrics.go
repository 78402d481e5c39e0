// Copyright (c) midiwire contributors
// SPDX-License-Identifier: Apache-2.0

// Package metrics provides Prometheus instrumentation for midiwire.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine and servers.
type Metrics struct {
	// Stream metrics
	MessagesParsed *prometheus.CounterVec
	ParseErrors    prometheus.Counter
	SysExChunks    prometheus.Counter

	// Active sensing
	ActiveSensingTimeouts prometheus.Counter

	// Thru metrics
	ThruForwarded *prometheus.CounterVec

	// Session metrics (TCP server)
	ActiveSessions      prometheus.Gauge
	SessionsTotal       *prometheus.CounterVec
	SessionDuration     prometheus.Histogram
	RateLimitedMessages prometheus.Counter
}

// New creates a Metrics instance with all counters, gauges, and
// histograms registered on the default registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "midiwire"
	}

	return &Metrics{
		MessagesParsed: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_parsed_total",
				Help:      "Total number of messages decoded from the input stream",
			},
			[]string{"type"},
		),
		ParseErrors: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Total number of protocol errors detected by the parser",
			},
		),
		SysExChunks: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sysex_chunks_total",
				Help:      "Total number of SysEx buffer-overflow chunk flushes",
			},
		),
		ActiveSensingTimeouts: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "active_sensing_timeouts_total",
				Help:      "Total number of active-sensing watchdog expiries",
			},
		),
		ThruForwarded: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "thru_forwarded_total",
				Help:      "Total number of messages mirrored by the thru filter",
			},
			[]string{"type"},
		),
		ActiveSessions: promauto.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_sessions",
				Help:      "Number of currently active stream sessions",
			},
		),
		SessionsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sessions_total",
				Help:      "Total number of stream sessions",
			},
			[]string{"status"},
		),
		SessionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "session_duration_seconds",
				Help:      "Stream session duration in seconds",
				Buckets:   []float64{.1, 1, 10, 60, 300, 600, 3600},
			},
		),
		RateLimitedMessages: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limited_messages_total",
				Help:      "Total number of messages dropped by the session rate limiter",
			},
		),
	}
}

// ObserveSession tracks a session lifecycle around f.
func (m *Metrics) ObserveSession(f func() error) error {
	m.ActiveSessions.Inc()
	defer m.ActiveSessions.Dec()

	start := time.Now()
	defer func() {
		m.SessionDuration.Observe(time.Since(start).Seconds())
	}()

	err := f()
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SessionsTotal.WithLabelValues(status).Inc()

	return err
}
