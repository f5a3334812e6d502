// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package health evaluates the registry and telemetry snapshot on a fixed
// period and dispatches remediation, plus a parallel idle-detection loop.
package health

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/faults"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/registry"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/sequencer"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/telemetry"
)

const (
	// DefaultInterval is the health tick period.
	DefaultInterval = 5 * time.Minute

	// highMemoryMb raises IssueHighMemory above this usage.
	highMemoryMb = 100.0

	// highErrorCount raises IssueHighErrorCount above this buffer size.
	highErrorCount = 10
)

// Evaluator runs the periodic health tick.
//
// Remediation is deliberately unsuppressed: the same issue fires and is
// remediated again on the next tick while the underlying condition holds.
// The actions are cheap and idempotent, so re-triggering is preferred over
// a backoff that could mask a persistently sick page.
type Evaluator struct {
	registry  *registry.Registry
	telemetry *telemetry.Monitor
	faults    *faults.Interceptor
	sequencer *sequencer.Sequencer
	collab    runtime.Collaborators
	metrics   *observability.Metrics
	logger    *slog.Logger
	interval  time.Duration

	mu   sync.RWMutex
	last datatypes.HealthSummary
}

// New builds an evaluator with the default tick period.
func New(reg *registry.Registry, tel *telemetry.Monitor, flt *faults.Interceptor,
	seq *sequencer.Sequencer, collab runtime.Collaborators,
	metrics *observability.Metrics, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		registry:  reg,
		telemetry: tel,
		faults:    flt,
		sequencer: seq,
		collab:    collab,
		metrics:   metrics,
		logger:    logger,
		interval:  DefaultInterval,
	}
}

// SetInterval overrides the tick period. Tests shorten it.
func (e *Evaluator) SetInterval(d time.Duration) {
	e.interval = d
}

// Run ticks until ctx ends.
func (e *Evaluator) Run(ctx context.Context) {
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.Tick(ctx)
		}
	}
}

// Tick evaluates the current state, remediates each issue independently,
// and stores the summary for the status surface.
func (e *Evaluator) Tick(ctx context.Context) []datatypes.HealthIssue {
	issues := e.Evaluate()

	if len(issues) > 0 {
		lines := make([]string, len(issues))
		for i, issue := range issues {
			lines[i] = issue.String()
			e.metrics.HealthIssuesTotal.WithLabelValues(string(issue.Kind)).Inc()
		}
		e.logger.Warn("health check found issues", "issues", lines)
		e.remediate(ctx, issues)
	}

	e.mu.Lock()
	e.last = datatypes.HealthSummary{
		Healthy:     len(issues) == 0,
		Issues:      issues,
		LastCheckMs: time.Now().UnixMilli(),
	}
	e.mu.Unlock()
	return issues
}

// Evaluate derives the issue set from the registry and telemetry snapshot.
// Issues are recomputed every tick, never stored between ticks.
func (e *Evaluator) Evaluate() []datatypes.HealthIssue {
	var issues []datatypes.HealthIssue

	if failed := e.registry.Failed(); len(failed) > 0 {
		issues = append(issues, datatypes.HealthIssue{
			Kind:    datatypes.IssueFailedSystems,
			Systems: failed,
		})
	}

	snapshot := e.telemetry.Snapshot()
	if snapshot.MemoryUsedMb != nil && *snapshot.MemoryUsedMb > highMemoryMb {
		issues = append(issues, datatypes.HealthIssue{
			Kind:   datatypes.IssueHighMemory,
			UsedMb: *snapshot.MemoryUsedMb,
		})
	}

	if count := e.faults.Count(); count > highErrorCount {
		issues = append(issues, datatypes.HealthIssue{
			Kind:       datatypes.IssueHighErrorCount,
			ErrorCount: count,
		})
	}
	return issues
}

// Summary returns the outcome of the most recent tick.
func (e *Evaluator) Summary() datatypes.HealthSummary {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.last.LastCheckMs == 0 {
		// No tick yet; healthy until proven otherwise.
		return datatypes.HealthSummary{Healthy: true, Issues: []datatypes.HealthIssue{}}
	}
	return e.last
}

func (e *Evaluator) remediate(ctx context.Context, issues []datatypes.HealthIssue) {
	for _, issue := range issues {
		switch issue.Kind {
		case datatypes.IssueFailedSystems:
			e.reinitializeFailed(ctx, issue.Systems)
		case datatypes.IssueHighMemory:
			e.relieveMemory(ctx)
		case datatypes.IssueHighErrorCount:
			e.faults.Prune()
		}
	}
}

// reinitializeFailed makes a single re-initialization attempt per named
// subsystem. Failures are swallowed; the next tick sees whatever state
// results.
func (e *Evaluator) reinitializeFailed(ctx context.Context, names []string) {
	for _, name := range names {
		sub, ok := e.collab.Lookup(name)
		if !ok {
			e.logger.Warn("cannot re-initialize unknown subsystem", "system", name)
			continue
		}
		if err := e.sequencer.Reinitialize(ctx, sub); err != nil {
			e.logger.Warn("re-initialization attempt failed",
				"system", name, "error", err)
		}
	}
}

// relieveMemory drops caches and aged error records, then hints the
// runtime to return freed memory.
func (e *Evaluator) relieveMemory(ctx context.Context) {
	if e.collab.Analytics != nil {
		if err := e.collab.Analytics.Cleanup(ctx); err != nil {
			e.logger.Warn("analytics cache cleanup failed", "error", err)
		}
	}
	e.faults.Prune()
	debug.FreeOSMemory()
}
