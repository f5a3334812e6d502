// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package extensions

import (
	"context"
	"log/slog"
	"time"
)

// AuditEvent describes one operator action worth keeping a trail of.
type AuditEvent struct {
	// Action is the verb, e.g. "restart".
	Action string

	// UserID identifies who performed the action.
	UserID string

	// Detail carries action-specific fields.
	Detail map[string]any

	// Timestamp is when the action happened.
	Timestamp time.Time
}

// AuditLogger records operator actions. Record must not block the caller
// on slow sinks; drop or buffer instead.
type AuditLogger interface {
	Record(ctx context.Context, event AuditEvent)
}

// NopAuditLogger discards all events.
type NopAuditLogger struct{}

// Record does nothing.
func (l *NopAuditLogger) Record(_ context.Context, _ AuditEvent) {}

// SlogAuditLogger writes audit events to a structured logger.
type SlogAuditLogger struct {
	Logger *slog.Logger
}

// Record emits the event at info level.
func (l *SlogAuditLogger) Record(_ context.Context, event AuditEvent) {
	l.Logger.Info("audit event",
		"action", event.Action,
		"user_id", event.UserID,
		"detail", event.Detail,
		"timestamp", event.Timestamp.Format(time.RFC3339))
}
