// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package registry tracks per-subsystem initialization state.
//
// The registry is the single source of truth for "is X up". One record
// exists per subsystem name; re-initialization overwrites the record rather
// than appending history. Only the orchestrator writes here: the sequencer
// during bring-up and the health evaluator during re-initialization.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
)

// Registry holds one SystemRecord per named subsystem.
//
// # Thread Safety
//
// Safe for concurrent use. Reads return copies; callers never see internal
// state.
type Registry struct {
	mu      sync.RWMutex
	records map[string]datatypes.SystemRecord
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{records: make(map[string]datatypes.SystemRecord)}
}

// MarkPending records that a subsystem start has been issued but has not
// yet settled.
func (r *Registry) MarkPending(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = datatypes.SystemRecord{
		Name:        name,
		Status:      datatypes.SystemPending,
		TimestampMs: time.Now().UnixMilli(),
	}
}

// RecordOutcome overwrites the record for a settled initialization attempt.
// A nil err marks the system initialized, otherwise failed.
func (r *Registry) RecordOutcome(name string, err error, took time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[name] = datatypes.NewSystemRecord(name, err, took)
}

// Get returns the record for name, if any.
func (r *Registry) Get(name string) (datatypes.SystemRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[name]
	return rec, ok
}

// Snapshot returns a copy of all records keyed by name.
func (r *Registry) Snapshot() map[string]datatypes.SystemRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]datatypes.SystemRecord, len(r.records))
	for name, rec := range r.records {
		out[name] = rec
	}
	return out
}

// Statuses returns just the status per subsystem name. This is the shape
// embedded into error records at capture time.
func (r *Registry) Statuses() map[string]datatypes.SystemStatus {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]datatypes.SystemStatus, len(r.records))
	for name, rec := range r.records {
		out[name] = rec.Status
	}
	return out
}

// Failed returns the sorted names of all subsystems currently marked failed.
func (r *Registry) Failed() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var failed []string
	for name, rec := range r.records {
		if rec.Status == datatypes.SystemFailed {
			failed = append(failed, name)
		}
	}
	sort.Strings(failed)
	return failed
}

// Initialized returns the sorted names of all subsystems currently up.
func (r *Registry) Initialized() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var up []string
	for name, rec := range r.records {
		if rec.Status == datatypes.SystemInitialized {
			up = append(up, name)
		}
	}
	sort.Strings(up)
	return up
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Clear removes every record. Restart calls this before re-running
// bring-up so the registry reflects only the latest run.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = make(map[string]datatypes.SystemRecord)
}
