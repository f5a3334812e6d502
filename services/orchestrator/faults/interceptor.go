// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package faults captures page faults process-wide and attempts bounded
// auto-recovery.
//
// # Description
//
// The interceptor subscribes once to the host's three fault channels (uncaught
// script errors, unhandled asynchronous rejections, and failed
// sub-resource loads) and normalizes every delivery into an ErrorRecord:
// appended to a bounded ring buffer, counted, forwarded to the analytics
// collaborator when one is present and enabled, and matched against the
// recovery policy.
//
// Recovery is best-effort and strictly one-shot per fault occurrence:
//
//   - a script error whose message references the storage capability clears
//     persistent storage and forces a full reload;
//   - a failed load of an executable script enters a degraded notification
//     state without reloading;
//   - everything else is recorded only.
//
// No recovery action is ever retried automatically.
package faults

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

// State is the interceptor's lifecycle state.
type State int32

const (
	StateInstalled State = iota
	StateErrorObserved
	StateRecovering
)

var stateNames = map[State]string{
	StateInstalled:     "INSTALLED",
	StateErrorObserved: "ERROR_OBSERVED",
	StateRecovering:    "RECOVERING",
}

// recordAge is the cutoff for on-demand pruning of old error records.
const recordAge = time.Hour

// Interceptor owns the error ring buffer and the recovery policy.
//
// # Thread Safety
//
// Safe for concurrent use. One goroutine per fault channel mutates the
// ring; readers get copies.
type Interceptor struct {
	host     runtime.Host
	collab   runtime.Collaborators
	statuses func() map[string]datatypes.SystemStatus
	ring     *Ring
	metrics  *observability.Metrics
	logger   *slog.Logger

	state atomic.Int32
	wg    sync.WaitGroup

	// onRecord, when set, receives every captured record. The lifecycle
	// layer uses it to feed the event stream.
	onRecord func(datatypes.ErrorRecord)
}

// New builds an interceptor. statuses provides the registry snapshot
// embedded into each record at capture time.
func New(host runtime.Host, collab runtime.Collaborators,
	statuses func() map[string]datatypes.SystemStatus,
	metrics *observability.Metrics, logger *slog.Logger) *Interceptor {
	return &Interceptor{
		host:     host,
		collab:   collab,
		statuses: statuses,
		ring:     NewRing(DefaultRingCapacity),
		metrics:  metrics,
		logger:   logger,
	}
}

// OnRecord registers a capture hook. Must be called before Install.
func (i *Interceptor) OnRecord(fn func(datatypes.ErrorRecord)) {
	i.onRecord = fn
}

// Install subscribes to the host's fault channels. One goroutine per
// channel runs until ctx ends; a host without a given channel (nil) simply
// never delivers on that branch.
func (i *Interceptor) Install(ctx context.Context) {
	source := i.host.Faults()
	i.setState(StateInstalled)

	i.wg.Add(3)
	go func() {
		defer i.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case fault := <-source.ScriptErrors():
				i.captureScript(ctx, fault)
			}
		}
	}()
	go func() {
		defer i.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case fault := <-source.Rejections():
				i.capture(datatypes.NewErrorRecord(
					datatypes.ErrorRejection,
					map[string]any{"reason": fault.Reason},
					i.statuses(),
				))
			}
		}
	}()
	go func() {
		defer i.wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case fault := <-source.ResourceFailures():
				i.captureResource(fault)
			}
		}
	}()
}

// Wait blocks until all channel consumers have exited.
func (i *Interceptor) Wait() {
	i.wg.Wait()
}

func (i *Interceptor) captureScript(ctx context.Context, fault runtime.ScriptFault) {
	rec := datatypes.NewErrorRecord(datatypes.ErrorScript, map[string]any{
		"message": fault.Message,
		"source":  fault.Source,
		"line":    fault.Line,
		"column":  fault.Column,
	}, i.statuses())
	i.capture(rec)

	// One recovery attempt for this occurrence, never retried.
	if referencesStorage(fault.Message) {
		i.recoverStorage(ctx, rec)
	}
}

func (i *Interceptor) captureResource(fault runtime.ResourceFault) {
	rec := datatypes.NewErrorRecord(datatypes.ErrorResource, map[string]any{
		"tagName": fault.TagName,
		"url":     fault.URL,
	}, i.statuses())
	i.capture(rec)

	if strings.EqualFold(fault.TagName, "script") {
		i.recoverDegraded(rec)
	}
}

// capture records one normalized fault.
func (i *Interceptor) capture(rec datatypes.ErrorRecord) {
	i.setState(StateErrorObserved)

	i.ring.Append(rec)
	i.metrics.FaultsTotal.WithLabelValues(string(rec.Kind)).Inc()
	i.metrics.ErrorBufferSize.Set(float64(i.ring.Len()))

	i.logger.Warn("fault captured",
		"id", rec.ID, "kind", rec.Kind, "details", rec.Details)

	if i.collab.Analytics != nil && i.collab.Analytics.Enabled() {
		i.collab.Analytics.TrackEvent("fault_captured", map[string]any{
			"id":   rec.ID,
			"kind": string(rec.Kind),
		})
	}
	if i.onRecord != nil {
		i.onRecord(rec)
	}
}

// recoverStorage clears persistent storage and forces a reload. This is
// the response to script faults that implicate the storage layer: a wiped
// store plus a clean boot beats a wedged session.
func (i *Interceptor) recoverStorage(ctx context.Context, rec datatypes.ErrorRecord) {
	i.setState(StateRecovering)
	defer i.setState(StateInstalled)

	i.metrics.RecoveriesTotal.WithLabelValues("storage_reset").Inc()
	i.logger.Warn("attempting storage recovery", "fault_id", rec.ID)

	if store := i.host.Storage(); store != nil {
		if err := store.Clear(ctx); err != nil {
			i.logger.Error("storage clear failed during recovery",
				"fault_id", rec.ID, "error", err)
		}
	}
	i.host.Reload()
}

// recoverDegraded marks the page degraded and tells the user once. No
// reload: the page keeps running without the script that failed to load.
func (i *Interceptor) recoverDegraded(rec datatypes.ErrorRecord) {
	i.setState(StateRecovering)
	defer i.setState(StateInstalled)

	i.metrics.RecoveriesTotal.WithLabelValues("degraded_notice").Inc()
	i.host.Markers().Set(runtime.MarkerDegraded)
	i.collab.Notify("Some features failed to load. The page is running in degraded mode.", "warning")
	i.logger.Warn("entered degraded notification state", "fault_id", rec.ID)
}

// Records returns a copy of the error buffer in capture order.
func (i *Interceptor) Records() []datatypes.ErrorRecord {
	return i.ring.Records()
}

// Count returns the current number of buffered records.
func (i *Interceptor) Count() int {
	return i.ring.Len()
}

// Prune drops records older than one hour and returns how many went.
func (i *Interceptor) Prune() int {
	dropped := i.ring.PruneOlderThan(recordAge)
	if dropped > 0 {
		i.metrics.ErrorBufferSize.Set(float64(i.ring.Len()))
		i.logger.Info("pruned aged error records", "dropped", dropped)
	}
	return dropped
}

// Clear empties the error buffer. Restart calls this alongside the
// registry clear.
func (i *Interceptor) Clear() {
	i.ring.Clear()
	i.metrics.ErrorBufferSize.Set(0)
}

// StateName returns the current state for the status surface.
func (i *Interceptor) StateName() string {
	return stateNames[State(i.state.Load())]
}

func (i *Interceptor) setState(s State) {
	i.state.Store(int32(s))
}

// referencesStorage reports whether a script fault message implicates the
// persistent storage capability.
func referencesStorage(message string) bool {
	msg := strings.ToLower(message)
	return strings.Contains(msg, "storage") || strings.Contains(msg, "quota")
}
