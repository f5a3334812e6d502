// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapabilitySet_Missing(t *testing.T) {
	tests := []struct {
		name string
		set  CapabilitySet
		want []string
	}{
		{
			name: "all present",
			set: CapabilitySet{
				CapStorage: true, CapEvents: true, CapCodec: true,
				CapScheduler: true, CapFetch: true,
			},
			want: nil,
		},
		{
			name: "probed false and never probed are both missing, sorted",
			set:  CapabilitySet{CapStorage: false, CapEvents: true, CapCodec: true},
			want: []string{"fetch", "scheduler", "storage"},
		},
		{
			name: "empty set misses everything",
			set:  CapabilitySet{},
			want: []string{"codec", "events", "fetch", "scheduler", "storage"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.set.Missing(MandatoryCapabilities))
		})
	}
}

func TestNewErrorRecord(t *testing.T) {
	systems := map[string]SystemStatus{"stateManager": SystemInitialized}
	rec := NewErrorRecord(ErrorScript, map[string]any{"message": "boom"}, systems)

	assert.Regexp(t, regexp.MustCompile(`^\d{13}-[0-9a-f]{8}$`), rec.ID)
	assert.Equal(t, ErrorScript, rec.Kind)
	assert.Equal(t, "boom", rec.Details["message"])
	assert.Equal(t, SystemInitialized, rec.Systems["stateManager"])

	parsed, err := time.Parse(time.RFC3339Nano, rec.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), parsed, time.Minute)

	assert.False(t, rec.OlderThan(time.Hour))
}

func TestNewErrorRecord_UniqueIDs(t *testing.T) {
	a := NewErrorRecord(ErrorRejection, nil, nil)
	b := NewErrorRecord(ErrorRejection, nil, nil)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestNewSystemRecord(t *testing.T) {
	rec := NewSystemRecord("router", nil, 1500*time.Microsecond)
	assert.Equal(t, SystemInitialized, rec.Status)
	assert.InDelta(t, 1.5, rec.DurationMs, 0.001)

	failed := NewSystemRecord("analytics", errors.New("no backend"), time.Millisecond)
	assert.Equal(t, SystemFailed, failed.Status)
	assert.Equal(t, "no backend", failed.ErrorMessage)
}

func TestConnectivityState_LowQuality(t *testing.T) {
	tests := []struct {
		name  string
		state ConnectivityState
		want  bool
	}{
		{"fast connection", ConnectivityState{Online: true, EffectiveType: "4g"}, false},
		{"save data requested", ConnectivityState{Online: true, SaveData: true}, true},
		{"2g", ConnectivityState{Online: true, EffectiveType: "2g"}, true},
		{"slow-2g", ConnectivityState{Online: true, EffectiveType: "slow-2g"}, true},
		{"3g", ConnectivityState{Online: true, EffectiveType: "3g"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.LowQuality())
		})
	}
}

func TestEnvironmentProfile_FlagsOnlyNarrow(t *testing.T) {
	profile := NewEnvironmentProfile(ModeProduction, false, map[string]bool{
		"analytics": true,
		"richMedia": true,
	})

	require.True(t, profile.FeatureEnabled("analytics"))
	profile.DisableFeature("analytics")
	assert.False(t, profile.FeatureEnabled("analytics"))

	// Disabling an unknown flag must not create it.
	profile.DisableFeature("doesNotExist")
	assert.False(t, profile.FeatureEnabled("doesNotExist"))
	_, ok := profile.Features()["doesNotExist"]
	assert.False(t, ok)
}

func TestEnvironmentProfile_FlagsMapIsCopied(t *testing.T) {
	flags := map[string]bool{"analytics": true}
	profile := NewEnvironmentProfile(ModeStaging, true, flags)

	flags["analytics"] = false
	assert.True(t, profile.FeatureEnabled("analytics"))

	out := profile.Features()
	out["analytics"] = false
	assert.True(t, profile.FeatureEnabled("analytics"))
}

func TestHealthIssue_String(t *testing.T) {
	tests := []struct {
		name  string
		issue HealthIssue
		want  string
	}{
		{
			name:  "failed systems",
			issue: HealthIssue{Kind: IssueFailedSystems, Systems: []string{"analytics", "router"}},
			want:  "failed systems: analytics, router",
		},
		{
			name:  "high memory",
			issue: HealthIssue{Kind: IssueHighMemory, UsedMb: 142.25},
			want:  "high memory: 142.2MB",
		},
		{
			name:  "high error count",
			issue: HealthIssue{Kind: IssueHighErrorCount, ErrorCount: 17},
			want:  "high error count: 17",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.issue.String())
		})
	}
}
