// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package extensions defines the pluggable service extension points.
//
// The open-source orchestrator ships with no-op defaults: every request is
// treated as the local operator and audit events are discarded. Deployments
// that need real authentication or an audit trail inject implementations
// through ServiceOptions without touching the core service.
//
// All implementations must be safe for concurrent use.
package extensions

// ServiceOptions groups the extension points for service configuration.
// Nil fields are replaced with no-op defaults by DefaultOptions.
type ServiceOptions struct {
	// AuthProvider validates authentication tokens on mutating endpoints.
	// Default: NopAuthProvider (always returns the local operator).
	AuthProvider AuthProvider

	// AuditLogger records operator actions such as restarts.
	// Default: NopAuditLogger (discards all events).
	AuditLogger AuditLogger
}

// DefaultOptions returns ServiceOptions with no-op defaults. This is the
// configuration a local deployment runs with.
func DefaultOptions() ServiceOptions {
	return ServiceOptions{
		AuthProvider: &NopAuthProvider{},
		AuditLogger:  &NopAuditLogger{},
	}
}

// WithAuth returns a copy of opts with the given AuthProvider.
func (opts ServiceOptions) WithAuth(provider AuthProvider) ServiceOptions {
	opts.AuthProvider = provider
	return opts
}

// WithAudit returns a copy of opts with the given AuditLogger.
func (opts ServiceOptions) WithAudit(logger AuditLogger) ServiceOptions {
	opts.AuditLogger = logger
	return opts
}
