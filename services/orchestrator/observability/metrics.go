// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package observability provides Prometheus metrics for the orchestrator.
//
// # Description
//
// Metrics cover the full supervision loop: bring-up outcomes and latency,
// captured faults and recovery attempts, telemetry gauges (memory, frame
// rate), health-tick issues, and status-surface activity.
//
// # Integration
//
// Exposed on /metrics. Use with Prometheus + Grafana for dashboards and
// alerting on degraded client sessions.
//
// # Thread Safety
//
// All metric operations are thread-safe via Prometheus's internal locking.
package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace      = "lumenlearn"
	orchestratorSubsystem = "orchestrator"
)

// Metrics holds all Prometheus metrics for the orchestrator.
type Metrics struct {
	// BringupDurationSeconds measures full bring-up latency.
	// Labels: result (success, degraded)
	BringupDurationSeconds *prometheus.HistogramVec

	// SystemInitTotal counts subsystem initialization attempts.
	// Labels: system, status (initialized, failed)
	SystemInitTotal *prometheus.CounterVec

	// SystemInitDurationSeconds measures per-subsystem init latency.
	// Labels: system
	SystemInitDurationSeconds *prometheus.HistogramVec

	// RestartsTotal counts explicit restart operations.
	RestartsTotal prometheus.Counter

	// FaultsTotal counts captured faults.
	// Labels: kind (script, unhandledRejection, resource)
	FaultsTotal *prometheus.CounterVec

	// RecoveriesTotal counts attempted auto-recovery actions.
	// Labels: action (storage_reset, degraded_notice)
	RecoveriesTotal *prometheus.CounterVec

	// ErrorBufferSize tracks the current error ring-buffer occupancy.
	ErrorBufferSize prometheus.Gauge

	// MemoryUsedMb is the latest sampled heap usage.
	MemoryUsedMb prometheus.Gauge

	// FramesPerSecond is the latest aggregated frame rate.
	FramesPerSecond prometheus.Gauge

	// HealthIssuesTotal counts issues raised by health ticks.
	// Labels: kind (failed-systems, high-memory, high-error-count)
	HealthIssuesTotal *prometheus.CounterVec

	// ConnectivityTransitionsTotal counts edge-triggered transitions.
	// Labels: state (online, offline, data-saving)
	ConnectivityTransitionsTotal *prometheus.CounterVec

	// EventStreamClients tracks connected websocket event-stream clients.
	EventStreamClients prometheus.Gauge
}

// NewMetrics creates and registers all orchestrator metrics against the
// given registerer. Tests pass a private prometheus.NewRegistry().
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BringupDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "bringup_duration_seconds",
			Help:      "Full bring-up latency by result.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"result"}),
		SystemInitTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "system_init_total",
			Help:      "Subsystem initialization attempts by system and status.",
		}, []string{"system", "status"}),
		SystemInitDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "system_init_duration_seconds",
			Help:      "Per-subsystem initialization latency.",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"system"}),
		RestartsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "restarts_total",
			Help:      "Explicit restart operations via the status surface.",
		}),
		FaultsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "faults_total",
			Help:      "Captured runtime faults by kind.",
		}, []string{"kind"}),
		RecoveriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "recoveries_total",
			Help:      "Attempted one-shot auto-recovery actions.",
		}, []string{"action"}),
		ErrorBufferSize: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "error_buffer_size",
			Help:      "Current error ring-buffer occupancy (max 50).",
		}),
		MemoryUsedMb: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "memory_used_mb",
			Help:      "Latest sampled heap usage in megabytes.",
		}),
		FramesPerSecond: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "frames_per_second",
			Help:      "Latest aggregated frame rate.",
		}),
		HealthIssuesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "health_issues_total",
			Help:      "Issues raised by health evaluator ticks, by kind.",
		}, []string{"kind"}),
		ConnectivityTransitionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "connectivity_transitions_total",
			Help:      "Edge-triggered connectivity transitions by state.",
		}, []string{"state"}),
		EventStreamClients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: orchestratorSubsystem,
			Name:      "event_stream_clients",
			Help:      "Connected websocket event-stream clients.",
		}),
	}
}

// DefaultMetrics is the process-wide metrics instance, set by InitMetrics.
var DefaultMetrics *Metrics

var initOnce sync.Once

// InitMetrics registers DefaultMetrics against the default Prometheus
// registry. Safe to call more than once; registration happens once.
func InitMetrics() *Metrics {
	initOnce.Do(func() {
		DefaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return DefaultMetrics
}
