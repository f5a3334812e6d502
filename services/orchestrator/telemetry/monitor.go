// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package telemetry runs the passive observation loops: paint and
// interactivity signals, memory sampling, frame-rate aggregation, and
// connectivity watching.
//
// The loops are independent: none blocks another, and none blocks
// bring-up. A host that cannot provide a signal silently contributes
// nothing to the snapshot for it.
package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/environment"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

const (
	// memoryInterval is the fixed memory sampling period.
	memoryInterval = 30 * time.Second

	// memoryWarnRatio triggers a warning when usage crosses this share of
	// the reported limit.
	memoryWarnRatio = 0.8

	// fpsWindow is the frame-rate aggregation window.
	fpsWindow = time.Second

	// lowFPSThreshold marks a window as slow.
	lowFPSThreshold = 30

	// lowFPSSustain is how many consecutive slow windows count as
	// "sustained" before warning.
	lowFPSSustain = 3
)

// Monitor owns the performance snapshot and the connectivity state.
//
// # Thread Safety
//
// Safe for concurrent use. Snapshot returns a deep copy.
type Monitor struct {
	host    runtime.Host
	collab  runtime.Collaborators
	profile *datatypes.EnvironmentProfile
	metrics *observability.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	snapshot datatypes.PerformanceSnapshot
	conn     datatypes.ConnectivityState

	// onTransition, when set, receives edge-triggered connectivity states.
	// The lifecycle layer feeds the event stream from it.
	onTransition func(datatypes.ConnectivityState)

	wg sync.WaitGroup
}

// New builds a monitor. The profile is narrowed (analytics flag) when
// data-saving mode engages.
func New(host runtime.Host, collab runtime.Collaborators,
	profile *datatypes.EnvironmentProfile,
	metrics *observability.Metrics, logger *slog.Logger) *Monitor {
	return &Monitor{
		host:    host,
		collab:  collab,
		profile: profile,
		metrics: metrics,
		logger:  logger,
		// The page loaded, so the connection starts presumed online;
		// the first offline reading is then a real edge.
		conn: datatypes.ConnectivityState{Online: true},
	}
}

// OnTransition registers a connectivity hook. Must be called before Run.
func (m *Monitor) OnTransition(fn func(datatypes.ConnectivityState)) {
	m.onTransition = fn
}

// Run starts all observation loops. They stop when ctx ends.
func (m *Monitor) Run(ctx context.Context) {
	source := m.host.Telemetry()

	m.wg.Add(3)
	go m.consumePaintSignals(ctx, source)
	go m.sampleMemory(ctx, source)
	go m.watchConnectivity(ctx, source)

	// Frame aggregation only runs when the host reports frames at all.
	if source.Frames() != nil {
		m.wg.Add(1)
		go m.aggregateFrames(ctx, source)
	}
}

// Wait blocks until every loop has exited.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// Snapshot returns a deep copy of the current performance snapshot.
func (m *Monitor) Snapshot() datatypes.PerformanceSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := datatypes.PerformanceSnapshot{}
	copyField := func(dst **float64, src *float64) {
		if src != nil {
			v := *src
			*dst = &v
		}
	}
	copyField(&out.LargestContentfulPaintMs, m.snapshot.LargestContentfulPaintMs)
	copyField(&out.FirstInputDelayMs, m.snapshot.FirstInputDelayMs)
	copyField(&out.CumulativeLayoutShift, m.snapshot.CumulativeLayoutShift)
	copyField(&out.MemoryUsedMb, m.snapshot.MemoryUsedMb)
	copyField(&out.MemoryTotalMb, m.snapshot.MemoryTotalMb)
	copyField(&out.MemoryLimitMb, m.snapshot.MemoryLimitMb)
	copyField(&out.FramesPerSecond, m.snapshot.FramesPerSecond)
	return out
}

// Connectivity returns the latest connection reading.
func (m *Monitor) Connectivity() datatypes.ConnectivityState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.conn
}

// consumePaintSignals folds push-style observations into the snapshot.
// LCP keeps the latest candidate, first-input delay is first-wins, and
// layout shift accumulates, matching how the page reports each metric.
func (m *Monitor) consumePaintSignals(ctx context.Context, source runtime.TelemetrySource) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case sig := <-source.PaintSignals():
			m.mu.Lock()
			switch sig.Kind {
			case runtime.PaintLCP:
				m.snapshot.LargestContentfulPaintMs = datatypes.Float(sig.Value)
			case runtime.PaintFID:
				if m.snapshot.FirstInputDelayMs == nil {
					m.snapshot.FirstInputDelayMs = datatypes.Float(sig.Value)
				}
			case runtime.PaintCLS:
				total := sig.Value
				if m.snapshot.CumulativeLayoutShift != nil {
					total += *m.snapshot.CumulativeLayoutShift
				}
				m.snapshot.CumulativeLayoutShift = datatypes.Float(total)
			}
			m.mu.Unlock()
		}
	}
}

// sampleMemory samples immediately, then on the fixed period.
func (m *Monitor) sampleMemory(ctx context.Context, source runtime.TelemetrySource) {
	defer m.wg.Done()

	sample := func() {
		reading, ok := source.Memory()
		if !ok {
			return
		}
		m.mu.Lock()
		m.snapshot.MemoryUsedMb = datatypes.Float(reading.UsedMb)
		m.snapshot.MemoryTotalMb = datatypes.Float(reading.TotalMb)
		m.snapshot.MemoryLimitMb = datatypes.Float(reading.LimitMb)
		m.mu.Unlock()

		m.metrics.MemoryUsedMb.Set(reading.UsedMb)
		if reading.LimitMb > 0 && reading.UsedMb > memoryWarnRatio*reading.LimitMb {
			m.logger.Warn("memory usage above threshold",
				"used_mb", reading.UsedMb, "limit_mb", reading.LimitMb)
		}
	}

	sample()
	ticker := time.NewTicker(memoryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sample()
		}
	}
}

// aggregateFrames counts frame ticks and folds them into a per-second
// frames-per-second reading.
func (m *Monitor) aggregateFrames(ctx context.Context, source runtime.TelemetrySource) {
	defer m.wg.Done()

	frames := 0
	lowStreak := 0
	ticker := time.NewTicker(fpsWindow)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-source.Frames():
			frames++
		case <-ticker.C:
			fps := float64(frames)
			frames = 0

			m.mu.Lock()
			m.snapshot.FramesPerSecond = datatypes.Float(fps)
			m.mu.Unlock()
			m.metrics.FramesPerSecond.Set(fps)

			if fps < lowFPSThreshold {
				lowStreak++
				if lowStreak == lowFPSSustain {
					m.logger.Warn("sustained low frame rate", "fps", fps)
					lowStreak = 0
				}
			} else {
				lowStreak = 0
			}
		}
	}
}

// watchConnectivity acts on edge-triggered connection changes.
func (m *Monitor) watchConnectivity(ctx context.Context, source runtime.TelemetrySource) {
	defer m.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-source.Connectivity():
			m.handleTransition(ctx, state)
		}
	}
}

func (m *Monitor) handleTransition(ctx context.Context, state datatypes.ConnectivityState) {
	m.mu.Lock()
	prev := m.conn
	if state == prev {
		m.mu.Unlock()
		return
	}
	m.conn = state
	m.mu.Unlock()

	if prev.Online && !state.Online {
		m.metrics.ConnectivityTransitionsTotal.WithLabelValues("offline").Inc()
		m.logger.Warn("connection lost")
		m.collab.Notify("You are offline. Progress will sync when the connection returns.", "warning")
	}
	if !prev.Online && state.Online {
		m.metrics.ConnectivityTransitionsTotal.WithLabelValues("online").Inc()
		m.logger.Info("connection restored")
		if m.collab.Analytics != nil {
			if err := m.collab.Analytics.SyncOfflineData(ctx); err != nil {
				m.logger.Warn("offline data sync failed", "error", err)
			}
		}
		m.collab.Notify("Back online.", "info")
	}

	if state.Online && state.LowQuality() && !m.host.Markers().Has(runtime.MarkerDataSaving) {
		m.enableDataSaving()
	}

	if m.onTransition != nil {
		m.onTransition(state)
	}
}

// enableDataSaving engages the one-way data-saving mode: analytics off,
// content simplification marker on. Feature flags only narrow, so there is
// no corresponding disable path.
func (m *Monitor) enableDataSaving() {
	m.metrics.ConnectivityTransitionsTotal.WithLabelValues("data-saving").Inc()
	m.host.Markers().Set(runtime.MarkerDataSaving)
	m.profile.DisableFeature(environment.FeatureAnalytics)
	if m.collab.Analytics != nil {
		m.collab.Analytics.SetEnabled(false)
	}
	m.logger.Info("data-saving mode enabled")
}
