// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package faults

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
)

func record(i int) datatypes.ErrorRecord {
	return datatypes.NewErrorRecord(datatypes.ErrorScript,
		map[string]any{"seq": fmt.Sprintf("%d", i)}, nil)
}

func TestRing_AppendEvictsOldestWhenFull(t *testing.T) {
	ring := NewRing(DefaultRingCapacity)

	for i := 0; i < DefaultRingCapacity+1; i++ {
		ring.Append(record(i))
	}

	require.Equal(t, DefaultRingCapacity, ring.Len())
	records := ring.Records()
	// Record 0 was evicted; order is oldest first.
	assert.Equal(t, "1", records[0].Details["seq"])
	assert.Equal(t, fmt.Sprintf("%d", DefaultRingCapacity), records[len(records)-1].Details["seq"])
}

func TestRing_RecordsReturnsCopy(t *testing.T) {
	ring := NewRing(4)
	ring.Append(record(0))

	out := ring.Records()
	out[0].Details["seq"] = "tampered-view"
	// The slice itself is a copy; appending to it cannot grow the ring.
	_ = append(out, record(1))
	assert.Equal(t, 1, ring.Len())
}

func TestRing_PruneOlderThan(t *testing.T) {
	ring := NewRing(8)
	for i := 0; i < 3; i++ {
		ring.Append(record(i))
	}

	assert.Zero(t, ring.PruneOlderThan(time.Hour))
	assert.Equal(t, 3, ring.Len())

	// Everything is older than a zero age.
	assert.Equal(t, 3, ring.PruneOlderThan(0))
	assert.Zero(t, ring.Len())
}

func TestRing_Clear(t *testing.T) {
	ring := NewRing(4)
	ring.Append(record(0))
	ring.Append(record(1))
	ring.Clear()
	assert.Zero(t, ring.Len())
	assert.Empty(t, ring.Records())
}

func TestNewRing_NonPositiveCapacityFallsBack(t *testing.T) {
	ring := NewRing(0)
	for i := 0; i < DefaultRingCapacity+5; i++ {
		ring.Append(record(i))
	}
	assert.Equal(t, DefaultRingCapacity, ring.Len())
}
