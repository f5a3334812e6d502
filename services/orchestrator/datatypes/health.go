// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"fmt"
	"strings"
)

// IssueKind tags a HealthIssue variant.
type IssueKind string

const (
	IssueFailedSystems  IssueKind = "failed-systems"
	IssueHighMemory     IssueKind = "high-memory"
	IssueHighErrorCount IssueKind = "high-error-count"
)

// HealthIssue is one problem detected by a health tick.
//
// Issues are derived, never stored: every tick recomputes the full set from
// the registry and telemetry snapshot. Only the fields relevant to the Kind
// are populated.
type HealthIssue struct {
	Kind       IssueKind `json:"kind"`
	Systems    []string  `json:"systems,omitempty"`    // IssueFailedSystems
	UsedMb     float64   `json:"usedMb,omitempty"`     // IssueHighMemory
	ErrorCount int       `json:"errorCount,omitempty"` // IssueHighErrorCount
}

// String renders the issue for batch log lines.
func (i HealthIssue) String() string {
	switch i.Kind {
	case IssueFailedSystems:
		return fmt.Sprintf("failed systems: %s", strings.Join(i.Systems, ", "))
	case IssueHighMemory:
		return fmt.Sprintf("high memory: %.1fMB", i.UsedMb)
	case IssueHighErrorCount:
		return fmt.Sprintf("high error count: %d", i.ErrorCount)
	default:
		return string(i.Kind)
	}
}

// HealthSummary aggregates a health tick for the status surface.
type HealthSummary struct {
	Healthy     bool          `json:"healthy"`
	Issues      []HealthIssue `json:"issues"`
	LastCheckMs int64         `json:"lastCheckMs"`
}
