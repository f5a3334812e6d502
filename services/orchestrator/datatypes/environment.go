// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package datatypes defines the shared data model for the client-runtime
// orchestrator: environment profiles, capability sets, system records,
// error records, telemetry snapshots, and health issues.
//
// Types in this package are plain data. Ownership rules are documented on
// each type; mutation happens only in the component that owns the value.
package datatypes

import "sync"

// Mode identifies which deployment tier the page is running against.
type Mode string

const (
	ModeDevelopment Mode = "development"
	ModeStaging     Mode = "staging"
	ModeProduction  Mode = "production"
)

// EnvironmentProfile describes the detected runtime environment.
//
// # Description
//
// Computed once at startup from the host address and immutable thereafter,
// except for feature flags, which may only be narrowed (disabled), never
// widened, in response to connectivity state. That one-way rule is enforced
// by exposing DisableFeature and no enabling counterpart.
//
// # Thread Safety
//
// Feature-flag reads and narrowing are safe for concurrent use.
type EnvironmentProfile struct {
	Mode         Mode `json:"mode"`
	DebugEnabled bool `json:"debugEnabled"`

	mu    sync.RWMutex
	flags map[string]bool
}

// NewEnvironmentProfile builds a profile with the given initial flags.
// The flags map is copied; callers keep ownership of their argument.
func NewEnvironmentProfile(mode Mode, debug bool, flags map[string]bool) *EnvironmentProfile {
	copied := make(map[string]bool, len(flags))
	for k, v := range flags {
		copied[k] = v
	}
	return &EnvironmentProfile{
		Mode:         mode,
		DebugEnabled: debug,
		flags:        copied,
	}
}

// FeatureEnabled reports whether the named feature flag is on.
// Unknown flags read as disabled.
func (p *EnvironmentProfile) FeatureEnabled(name string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.flags[name]
}

// DisableFeature narrows the feature set by turning the named flag off.
// Narrowing an unknown or already-disabled flag is a no-op.
func (p *EnvironmentProfile) DisableFeature(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.flags[name]; ok {
		p.flags[name] = false
	}
}

// Features returns a copy of the current flag map.
func (p *EnvironmentProfile) Features() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make(map[string]bool, len(p.flags))
	for k, v := range p.flags {
		out[k] = v
	}
	return out
}
