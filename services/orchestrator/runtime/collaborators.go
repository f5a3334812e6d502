// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

import "context"

// Collaborator slot names. The dependency gate and the optional bring-up
// phase refer to collaborators by these names.
const (
	CollabState     = "stateManager"
	CollabAnalytics = "analytics"
	CollabUI        = "uiComponents"
	CollabRouter    = "router"
)

// MandatoryCollaborators is the fixed ordered list the dependency gate
// verifies before any initialization proceeds.
var MandatoryCollaborators = []string{CollabState}

// OptionalCollaborators is the configured start order for the best-effort
// bring-up phase.
var OptionalCollaborators = []string{CollabAnalytics, CollabUI, CollabRouter}

// Subsystem is an independently-authored page subsystem the orchestrator
// starts and tracks. Init must be safe to call again after a failure; the
// health evaluator re-attempts failed systems.
type Subsystem interface {
	Name() string
	Init(ctx context.Context) error
}

// Analytics is the optional analytics collaborator.
type Analytics interface {
	Subsystem

	// TrackEvent records a product analytics event. Implementations must
	// not block the caller.
	TrackEvent(name string, props map[string]any)

	// Cleanup drops cached analytics data. Invoked by high-memory
	// remediation.
	Cleanup(ctx context.Context) error

	// SyncOfflineData pushes events buffered while offline. Invoked on the
	// offline-to-online transition.
	SyncOfflineData(ctx context.Context) error

	// SetEnabled toggles event delivery. Data-saving mode disables it.
	SetEnabled(enabled bool)
	Enabled() bool
}

// Notifier is the optional UI-components collaborator's notification
// surface.
type Notifier interface {
	Subsystem

	// Notify shows a transient user-visible notification.
	// Level is one of "info", "warning", "critical".
	Notify(message, level string)
}

// Collaborators is the typed registry of available page collaborators.
// A nil slot means the collaborator is absent; there is no runtime
// reflection or global lookup.
type Collaborators struct {
	State     Subsystem // mandatory: the educational-state manager
	Analytics Analytics
	UI        Notifier
	Router    Subsystem
}

// Lookup resolves a collaborator slot by name. The second return is false
// when the name is unknown or the slot is empty.
func (c Collaborators) Lookup(name string) (Subsystem, bool) {
	switch name {
	case CollabState:
		if c.State != nil {
			return c.State, true
		}
	case CollabAnalytics:
		if c.Analytics != nil {
			return c.Analytics, true
		}
	case CollabUI:
		if c.UI != nil {
			return c.UI, true
		}
	case CollabRouter:
		if c.Router != nil {
			return c.Router, true
		}
	}
	return nil, false
}

// Present reports whether the named collaborator slot is filled.
func (c Collaborators) Present(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Optional returns the filled subsystems for the given names, preserving
// order and skipping empty slots.
func (c Collaborators) Optional(names []string) []Subsystem {
	var subs []Subsystem
	for _, name := range names {
		if sub, ok := c.Lookup(name); ok {
			subs = append(subs, sub)
		}
	}
	return subs
}

// Notify forwards to the UI collaborator when present; silent otherwise.
func (c Collaborators) Notify(message, level string) {
	if c.UI != nil {
		c.UI.Notify(message, level)
	}
}
