// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package health

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

const (
	// idleCheckInterval is how often inactivity is evaluated.
	idleCheckInterval = time.Minute

	// idleThreshold is the inactivity span that marks the session idle.
	idleThreshold = 30 * time.Minute
)

// IdleDetector tracks the most recent user interaction and marks the page
// inactive after the threshold.
//
// Interaction ticks arrive on every pointer/key/scroll/touch event; a rate
// limiter accepts at most one per second so a busy pointer does not cost a
// timestamp write per pixel. Marking inactive is passive: no monitor is
// paused or unregistered, and the one-shot analytics event fires once per
// idle span.
type IdleDetector struct {
	host   runtime.Host
	collab runtime.Collaborators
	logger *slog.Logger

	limiter *rate.Limiter

	mu           sync.Mutex
	lastActivity time.Time
	inactive     bool

	checkInterval time.Duration
	threshold     time.Duration
}

// NewIdleDetector builds a detector with the default cadence.
func NewIdleDetector(host runtime.Host, collab runtime.Collaborators, logger *slog.Logger) *IdleDetector {
	return &IdleDetector{
		host:          host,
		collab:        collab,
		logger:        logger,
		limiter:       rate.NewLimiter(rate.Every(time.Second), 1),
		lastActivity:  time.Now(),
		checkInterval: idleCheckInterval,
		threshold:     idleThreshold,
	}
}

// SetTimings overrides the check cadence and threshold. Tests shorten them.
func (d *IdleDetector) SetTimings(check, threshold time.Duration) {
	d.checkInterval = check
	d.threshold = threshold
}

// Run consumes interaction ticks and evaluates inactivity until ctx ends.
func (d *IdleDetector) Run(ctx context.Context) {
	ticker := time.NewTicker(d.checkInterval)
	defer ticker.Stop()

	interactions := d.host.Telemetry().Interactions()
	for {
		select {
		case <-ctx.Done():
			return
		case <-interactions:
			d.Touch()
		case <-ticker.C:
			d.check()
		}
	}
}

// Touch records user activity, throttled to one accepted tick per second.
// Activity while inactive wakes the session: the marker clears and the
// one-shot event re-arms.
func (d *IdleDetector) Touch() {
	if !d.limiter.Allow() {
		return
	}
	d.mu.Lock()
	d.lastActivity = time.Now()
	wake := d.inactive
	d.inactive = false
	d.mu.Unlock()

	if wake {
		d.host.Markers().Clear(runtime.MarkerInactive)
		d.logger.Info("user active again")
	}
}

func (d *IdleDetector) check() {
	d.mu.Lock()
	idleFor := time.Since(d.lastActivity)
	trigger := idleFor >= d.threshold && !d.inactive
	if trigger {
		d.inactive = true
	}
	d.mu.Unlock()

	if !trigger {
		return
	}
	d.host.Markers().Set(runtime.MarkerInactive)
	if d.collab.Analytics != nil && d.collab.Analytics.Enabled() {
		d.collab.Analytics.TrackEvent("user_inactive", map[string]any{
			"idle_minutes": int(idleFor.Minutes()),
		})
	}
	d.logger.Info("user marked inactive", "idle_minutes", int(idleFor.Minutes()))
}

// Inactive reports whether the session is currently marked idle.
func (d *IdleDetector) Inactive() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inactive
}
