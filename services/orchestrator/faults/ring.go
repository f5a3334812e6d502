// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package faults

import (
	"sync"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
)

// DefaultRingCapacity bounds the error buffer at 50 records.
const DefaultRingCapacity = 50

// Ring is a bounded buffer of error records in capture order.
// When full, appending evicts the oldest record.
//
// # Thread Safety
//
// Safe for concurrent use.
type Ring struct {
	mu       sync.Mutex
	capacity int
	records  []datatypes.ErrorRecord
}

// NewRing creates a ring with the given capacity; non-positive capacities
// fall back to DefaultRingCapacity.
func NewRing(capacity int) *Ring {
	if capacity <= 0 {
		capacity = DefaultRingCapacity
	}
	return &Ring{capacity: capacity}
}

// Append adds a record, evicting the oldest when the ring is full.
func (r *Ring) Append(rec datatypes.ErrorRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.records) == r.capacity {
		copy(r.records, r.records[1:])
		r.records[len(r.records)-1] = rec
		return
	}
	r.records = append(r.records, rec)
}

// Records returns a copy of the buffer in capture order, oldest first.
func (r *Ring) Records() []datatypes.ErrorRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]datatypes.ErrorRecord, len(r.records))
	copy(out, r.records)
	return out
}

// Len returns the current number of records.
func (r *Ring) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

// PruneOlderThan removes records older than age and returns how many were
// dropped. Records are in capture order, so a single cut point suffices.
func (r *Ring) PruneOlderThan(age time.Duration) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	cut := 0
	for cut < len(r.records) && r.records[cut].OlderThan(age) {
		cut++
	}
	if cut == 0 {
		return 0
	}
	remaining := make([]datatypes.ErrorRecord, len(r.records)-cut)
	copy(remaining, r.records[cut:])
	r.records = remaining
	return cut
}

// Clear empties the buffer.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = nil
}
