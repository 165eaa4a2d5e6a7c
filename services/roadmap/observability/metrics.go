// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package observability provides metrics and instrumentation for the roadmap
// service.
//
// # Description
//
// This package implements Prometheus metrics for monitoring the roadmap query
// path. Metrics include:
//   - Request counters (by hierarchy level and status)
//   - Request latency histograms (by level)
//   - Warehouse query counters and latency histograms
//   - Cache invalidation counters
//
// Cache tier hit/miss counters live in the cache package next to the code
// that increments them.
//
// # Integration
//
// Metrics are exposed via /metrics endpoint. Use with Prometheus + Grafana
// for dashboards and alerting.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// Metric Definitions
// =============================================================================

// Namespace for all metrics
const metricsNamespace = "aleutian"

// Subsystem for roadmap metrics
const roadmapSubsystem = "roadmap"

// RoadmapMetrics holds all Prometheus metrics for roadmap query operations.
//
// # Description
//
// Provides counters and histograms for monitoring the resolve path and its
// warehouse dependency. Initialize once at startup via InitMetrics().
//
// # Fields
//
//   - RequestsTotal: Counter of resolve requests by level and status
//   - RequestDurationSeconds: Histogram of end-to-end resolve latency
//   - WarehouseQueriesTotal: Counter of warehouse executions by status
//   - WarehouseQueryDurationSeconds: Histogram of warehouse query latency
//   - CacheClearsTotal: Counter of cache invalidation requests by scope
//
// # Thread Safety
//
// All operations are thread-safe.
type RoadmapMetrics struct {
	// RequestsTotal counts resolve requests by hierarchy level and status.
	// Labels: level (portfolio, program, subprogram, region), status
	// (success, client_error, upstream_error, internal_error)
	RequestsTotal *prometheus.CounterVec

	// RequestDurationSeconds measures end-to-end resolve latency.
	// Labels: level
	RequestDurationSeconds *prometheus.HistogramVec

	// WarehouseQueriesTotal counts warehouse executions by outcome.
	// Labels: status (success, timeout, connection, query)
	WarehouseQueriesTotal *prometheus.CounterVec

	// WarehouseQueryDurationSeconds measures warehouse round-trip latency.
	WarehouseQueryDurationSeconds prometheus.Histogram

	// CacheClearsTotal counts cache invalidation requests.
	// Labels: scope (all, pattern)
	CacheClearsTotal *prometheus.CounterVec
}

// DefaultMetrics is the singleton instance of RoadmapMetrics.
// Initialized by InitMetrics().
var DefaultMetrics *RoadmapMetrics

// InitMetrics initializes the default metrics instance.
//
// # Description
//
// Creates and registers all Prometheus metrics on the default registry.
// Should be called once at application startup.
//
// # Limitations
//
//   - Panics if called twice (duplicate registration).
func InitMetrics() *RoadmapMetrics {
	DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	return DefaultMetrics
}

// NewMetrics builds the metric set against an explicit registerer. Tests use
// it with an isolated registry; production code goes through InitMetrics.
func NewMetrics(reg prometheus.Registerer) *RoadmapMetrics {
	factory := promauto.With(reg)

	return &RoadmapMetrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: roadmapSubsystem,
				Name:      "requests_total",
				Help:      "Total resolve requests by hierarchy level and status",
			},
			[]string{"level", "status"},
		),

		RequestDurationSeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: roadmapSubsystem,
				Name:      "request_duration_seconds",
				Help:      "End-to-end resolve latency in seconds",
				Buckets:   []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 15.0, 30.0},
			},
			[]string{"level"},
		),

		WarehouseQueriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: roadmapSubsystem,
				Name:      "warehouse_queries_total",
				Help:      "Total warehouse query executions by outcome",
			},
			[]string{"status"},
		),

		WarehouseQueryDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Subsystem: roadmapSubsystem,
				Name:      "warehouse_query_duration_seconds",
				Help:      "Warehouse query round-trip latency in seconds",
				Buckets:   []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
			},
		),

		CacheClearsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Subsystem: roadmapSubsystem,
				Name:      "cache_clears_total",
				Help:      "Total cache invalidation requests by scope",
			},
			[]string{"scope"},
		),
	}
}

// =============================================================================
// Status Values
// =============================================================================

// Status represents a categorized request outcome for metrics labeling.
type Status string

const (
	// StatusSuccess indicates the request completed normally.
	StatusSuccess Status = "success"

	// StatusClientError indicates request validation failure.
	StatusClientError Status = "client_error"

	// StatusUpstreamError indicates a warehouse connection failure or timeout.
	StatusUpstreamError Status = "upstream_error"

	// StatusInternalError indicates any other server-side failure.
	StatusInternalError Status = "internal_error"
)

// RecordRequest increments the request counter and observes its duration.
func (m *RoadmapMetrics) RecordRequest(level string, status Status, seconds float64) {
	m.RequestsTotal.WithLabelValues(level, string(status)).Inc()
	m.RequestDurationSeconds.WithLabelValues(level).Observe(seconds)
}

// RecordWarehouseQuery increments the warehouse counter and observes the
// round-trip duration.
func (m *RoadmapMetrics) RecordWarehouseQuery(status string, seconds float64) {
	m.WarehouseQueriesTotal.WithLabelValues(status).Inc()
	m.WarehouseQueryDurationSeconds.Observe(seconds)
}
