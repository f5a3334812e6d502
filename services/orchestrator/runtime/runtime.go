// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package runtime defines the boundary between the orchestrator and the page
// environment it supervises.
//
// # Description
//
// The orchestrator never reaches into ambient global state. Everything the
// page provides (capability probes, fault delivery, telemetry signals,
// markers, storage, the reload primitive) arrives through the Host
// interface, injected at construction. Collaborator subsystems likewise
// arrive as typed slots on Collaborators, where a nil slot is the explicit
// "absent" value.
//
// This keeps the orchestrator testable: the simulated host under
// runtime/simhost drives every code path the real page would.
package runtime

// Host is the injected page environment.
//
// # Thread Safety
//
// Implementations must be safe for concurrent use: capability probes run
// during bring-up while fault and telemetry channels are consumed from
// separate goroutines.
type Host interface {
	// Hostname returns the address the page was served from.
	// Used once, at startup, for environment detection.
	Hostname() string

	// HasCapability reports whether a mandatory capability is present.
	// Must not panic.
	HasCapability(name string) bool

	// ProbeOptional probes a best-effort capability. Implementations may
	// panic on exotic hosts; the prober treats a panic as "unsupported".
	ProbeOptional(name string) bool

	// Faults exposes the three fault channels the interceptor subscribes to.
	Faults() FaultSource

	// Telemetry exposes the passive observation signal sources.
	Telemetry() TelemetrySource

	// Markers is the page-level marker state (body-class analog).
	Markers() MarkerSet

	// Storage is the persistent key-value capability. Nil when the
	// storage capability probe fails.
	Storage() Storage

	// Reload forces a full page reload. Called only by the fault
	// interceptor's storage-error recovery path.
	Reload()
}
