// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

// PerformanceSnapshot is the current view of page performance signals.
//
// Fields populate independently and asynchronously as the underlying
// observers report. A nil pointer means "not yet measured", which is
// distinct from a measured zero.
type PerformanceSnapshot struct {
	LargestContentfulPaintMs *float64 `json:"largestContentfulPaintMs,omitempty"`
	FirstInputDelayMs        *float64 `json:"firstInputDelayMs,omitempty"`
	CumulativeLayoutShift    *float64 `json:"cumulativeLayoutShift,omitempty"`
	MemoryUsedMb             *float64 `json:"memoryUsedMb,omitempty"`
	MemoryTotalMb            *float64 `json:"memoryTotalMb,omitempty"`
	MemoryLimitMb            *float64 `json:"memoryLimitMb,omitempty"`
	FramesPerSecond          *float64 `json:"framesPerSecond,omitempty"`
}

// Float is a convenience for building optional snapshot fields.
func Float(v float64) *float64 { return &v }

// ConnectivityState is one reading of the network connection.
//
// Transitions are edge-triggered: consumers act only when a value differs
// from the previous reading, never on repeated identical readings.
type ConnectivityState struct {
	Online        bool    `json:"isOnline"`
	EffectiveType string  `json:"effectiveType,omitempty"`
	DownlinkMbps  float64 `json:"downlinkMbps,omitempty"`
	RoundTripMs   float64 `json:"roundTripMs,omitempty"`
	SaveData      bool    `json:"saveData"`
}

// LowQuality reports whether the connection warrants data-saving mode:
// either an effective type at 2g or below, or an explicit save-data request.
func (c ConnectivityState) LowQuality() bool {
	return c.SaveData || c.EffectiveType == "2g" || c.EffectiveType == "slow-2g"
}
