// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package simhost provides a fully simulated page environment.
//
// # Description
//
// SimHost implements runtime.Host with injectable faults, telemetry
// signals, and capability answers. It backs the orchestrator's test suite
// and the standalone service binary, where no real page exists to drive
// the lifecycle.
//
// # Thread Safety
//
// Safe for concurrent use. Injection methods may be called from any
// goroutine; channels are buffered so injection never blocks the caller.
package simhost

import (
	"sort"
	"sync"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

const channelBuffer = 32

// SimHost is a configurable in-memory page environment.
type SimHost struct {
	hostname string

	mu          sync.Mutex
	caps        map[string]bool
	panicProbes map[string]bool
	memory      *runtime.MemoryReading
	storage     runtime.Storage
	reloads     int
	frames      bool

	scriptCh   chan runtime.ScriptFault
	rejectCh   chan runtime.RejectionFault
	resourceCh chan runtime.ResourceFault

	paintCh    chan runtime.PaintSignal
	framesCh   chan struct{}
	connCh     chan datatypes.ConnectivityState
	interactCh chan struct{}

	markers *Markers
}

// New builds a host with every known capability present, an in-memory
// storage slot, and frame reporting enabled. Tests narrow from there.
func New(hostname string) *SimHost {
	caps := make(map[string]bool)
	for _, name := range datatypes.MandatoryCapabilities {
		caps[name] = true
	}
	for _, name := range datatypes.OptionalCapabilities {
		caps[name] = true
	}
	return &SimHost{
		hostname:    hostname,
		caps:        caps,
		panicProbes: make(map[string]bool),
		storage:     NewMemStorage(),
		frames:      true,
		scriptCh:    make(chan runtime.ScriptFault, channelBuffer),
		rejectCh:    make(chan runtime.RejectionFault, channelBuffer),
		resourceCh:  make(chan runtime.ResourceFault, channelBuffer),
		paintCh:     make(chan runtime.PaintSignal, channelBuffer),
		framesCh:    make(chan struct{}, channelBuffer),
		connCh:      make(chan datatypes.ConnectivityState, channelBuffer),
		interactCh:  make(chan struct{}, channelBuffer),
		markers:     NewMarkers(),
	}
}

// Hostname returns the configured address.
func (h *SimHost) Hostname() string { return h.hostname }

// SetCapability overrides one capability answer.
func (h *SimHost) SetCapability(name string, supported bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.caps[name] = supported
}

// SetPanickingProbe makes ProbeOptional panic for the named capability.
func (h *SimHost) SetPanickingProbe(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panicProbes[name] = true
}

// HasCapability answers a mandatory capability probe.
func (h *SimHost) HasCapability(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.caps[name]
}

// ProbeOptional answers an optional capability probe, panicking when
// configured to simulate a host that throws on feature detection.
func (h *SimHost) ProbeOptional(name string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.panicProbes[name] {
		panic("probe exploded: " + name)
	}
	return h.caps[name]
}

// Faults exposes the injectable fault channels.
func (h *SimHost) Faults() runtime.FaultSource { return h }

// Telemetry exposes the injectable telemetry channels.
func (h *SimHost) Telemetry() runtime.TelemetrySource { return h }

// Markers returns the in-memory marker set.
func (h *SimHost) Markers() runtime.MarkerSet { return h.markers }

// Storage returns the configured storage slot.
func (h *SimHost) Storage() runtime.Storage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.storage
}

// SetStorage replaces the storage slot. Nil simulates a host without the
// storage capability.
func (h *SimHost) SetStorage(store runtime.Storage) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.storage = store
}

// Reload counts a forced reload instead of performing one.
func (h *SimHost) Reload() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reloads++
}

// Reloads returns how many reloads have been forced.
func (h *SimHost) Reloads() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.reloads
}

// ScriptErrors implements runtime.FaultSource.
func (h *SimHost) ScriptErrors() <-chan runtime.ScriptFault { return h.scriptCh }

// Rejections implements runtime.FaultSource.
func (h *SimHost) Rejections() <-chan runtime.RejectionFault { return h.rejectCh }

// ResourceFailures implements runtime.FaultSource.
func (h *SimHost) ResourceFailures() <-chan runtime.ResourceFault { return h.resourceCh }

// PaintSignals implements runtime.TelemetrySource.
func (h *SimHost) PaintSignals() <-chan runtime.PaintSignal { return h.paintCh }

// Frames implements runtime.TelemetrySource. Nil when frame reporting is
// disabled.
func (h *SimHost) Frames() <-chan struct{} {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.frames {
		return nil
	}
	return h.framesCh
}

// DisableFrames simulates a host that cannot report frame ticks. Must be
// called before the telemetry monitor starts.
func (h *SimHost) DisableFrames() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.frames = false
}

// Memory implements runtime.TelemetrySource.
func (h *SimHost) Memory() (runtime.MemoryReading, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.memory == nil {
		return runtime.MemoryReading{}, false
	}
	return *h.memory, true
}

// SetMemory configures the reading returned by Memory.
func (h *SimHost) SetMemory(reading runtime.MemoryReading) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.memory = &reading
}

// Connectivity implements runtime.TelemetrySource.
func (h *SimHost) Connectivity() <-chan datatypes.ConnectivityState { return h.connCh }

// Interactions implements runtime.TelemetrySource.
func (h *SimHost) Interactions() <-chan struct{} { return h.interactCh }

// InjectScriptFault delivers one uncaught script error.
func (h *SimHost) InjectScriptFault(fault runtime.ScriptFault) {
	h.scriptCh <- fault
}

// InjectRejection delivers one unhandled rejection.
func (h *SimHost) InjectRejection(fault runtime.RejectionFault) {
	h.rejectCh <- fault
}

// InjectResourceFault delivers one failed sub-resource load.
func (h *SimHost) InjectResourceFault(fault runtime.ResourceFault) {
	h.resourceCh <- fault
}

// InjectPaint delivers one paint/input/layout-shift observation.
func (h *SimHost) InjectPaint(sig runtime.PaintSignal) {
	h.paintCh <- sig
}

// InjectFrame delivers one frame tick.
func (h *SimHost) InjectFrame() {
	h.framesCh <- struct{}{}
}

// InjectConnectivity delivers one connection reading.
func (h *SimHost) InjectConnectivity(state datatypes.ConnectivityState) {
	h.connCh <- state
}

// InjectInteraction delivers one user-activity tick.
func (h *SimHost) InjectInteraction() {
	h.interactCh <- struct{}{}
}

// Markers is an in-memory marker set.
type Markers struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewMarkers returns an empty marker set.
func NewMarkers() *Markers {
	return &Markers{active: make(map[string]struct{})}
}

// Set activates a marker.
func (m *Markers) Set(marker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active[marker] = struct{}{}
}

// Clear deactivates a marker.
func (m *Markers) Clear(marker string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.active, marker)
}

// Has reports whether a marker is active.
func (m *Markers) Has(marker string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[marker]
	return ok
}

// Active returns the sorted active markers.
func (m *Markers) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.active))
	for marker := range m.active {
		out = append(out, marker)
	}
	sort.Strings(out)
	return out
}
