// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

import "github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"

// PaintKind identifies a paint/interactivity/layout-shift signal.
type PaintKind string

const (
	PaintLCP PaintKind = "largest-contentful-paint"
	PaintFID PaintKind = "first-input-delay"
	PaintCLS PaintKind = "cumulative-layout-shift"
)

// PaintSignal is one push-style performance observation.
type PaintSignal struct {
	Kind  PaintKind
	Value float64
}

// MemoryReading is one sample of heap usage, in megabytes.
type MemoryReading struct {
	UsedMb  float64
	TotalMb float64
	LimitMb float64
}

// TelemetrySource exposes the passive observation signals the telemetry
// monitor consumes. All channels are independent; none may block another.
//
// A host that cannot provide a signal returns a nil channel for it (or
// false from Memory); absence of support is silent.
type TelemetrySource interface {
	// PaintSignals delivers paint/input/layout-shift observations as the
	// page reports them.
	PaintSignals() <-chan PaintSignal

	// Frames ticks once per rendered frame. The monitor aggregates ticks
	// into a frames-per-second reading once per second.
	Frames() <-chan struct{}

	// Memory samples current heap usage. ok is false when the host does
	// not report memory.
	Memory() (reading MemoryReading, ok bool)

	// Connectivity delivers connection readings. Consumers are
	// edge-triggered and ignore readings identical to the previous one.
	Connectivity() <-chan datatypes.ConnectivityState

	// Interactions ticks on pointer/key/scroll/touch activity. The idle
	// detector throttles these to at most one accepted tick per second.
	Interactions() <-chan struct{}
}
