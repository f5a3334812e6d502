// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "time"

// SystemStatus is the lifecycle state of a named subsystem.
type SystemStatus string

const (
	SystemPending     SystemStatus = "pending"
	SystemInitialized SystemStatus = "initialized"
	SystemFailed      SystemStatus = "failed"
)

// SystemRecord is the registry entry for one named subsystem.
//
// One record exists per subsystem name. Re-initialization overwrites the
// record in place; history is never appended. The record is owned
// exclusively by the system registry.
type SystemRecord struct {
	Name         string       `json:"name"`
	Status       SystemStatus `json:"status"`
	DurationMs   float64      `json:"durationMs"`
	TimestampMs  int64        `json:"timestampMs"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

// NewSystemRecord builds a record for a completed initialization attempt.
// A nil err marks the system initialized; otherwise failed with the
// error message retained.
func NewSystemRecord(name string, err error, took time.Duration) SystemRecord {
	rec := SystemRecord{
		Name:        name,
		Status:      SystemInitialized,
		DurationMs:  float64(took.Microseconds()) / 1000.0,
		TimestampMs: time.Now().UnixMilli(),
	}
	if err != nil {
		rec.Status = SystemFailed
		rec.ErrorMessage = err.Error()
	}
	return rec
}
