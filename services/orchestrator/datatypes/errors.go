// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrorKind classifies a captured runtime fault.
type ErrorKind string

const (
	ErrorScript    ErrorKind = "script"             // uncaught script error
	ErrorRejection ErrorKind = "unhandledRejection" // unhandled async rejection
	ErrorResource  ErrorKind = "resource"           // sub-resource load failure
)

// ErrorRecord is one captured fault, normalized for storage and reporting.
//
// Records live in a bounded ring buffer (oldest evicted on overflow) and are
// additionally pruned by age on demand. The Systems field is a snapshot of
// subsystem statuses taken at capture time, so a record remains meaningful
// after the registry has moved on.
type ErrorRecord struct {
	ID        string                  `json:"id"`
	Kind      ErrorKind               `json:"kind"`
	Details   map[string]any          `json:"details"`
	Timestamp string                  `json:"timestamp"`
	Systems   map[string]SystemStatus `json:"systems"`

	// capturedAt backs age-based pruning without re-parsing Timestamp.
	capturedAt time.Time
}

// NewErrorRecord normalizes a fault into a record with a unique, time+random
// derived ID and an ISO-8601 capture timestamp.
func NewErrorRecord(kind ErrorKind, details map[string]any, systems map[string]SystemStatus) ErrorRecord {
	now := time.Now()
	return ErrorRecord{
		ID:         fmt.Sprintf("%d-%s", now.UnixMilli(), uuid.NewString()[:8]),
		Kind:       kind,
		Details:    details,
		Timestamp:  now.UTC().Format(time.RFC3339Nano),
		Systems:    systems,
		capturedAt: now,
	}
}

// CapturedAt returns the capture time used for age-based pruning.
func (r ErrorRecord) CapturedAt() time.Time {
	return r.capturedAt
}

// OlderThan reports whether the record was captured before now minus age.
func (r ErrorRecord) OlderThan(age time.Duration) bool {
	return time.Since(r.capturedAt) > age
}
