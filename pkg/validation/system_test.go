// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSystemName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple name", "stateManager", false},
		{"with hyphen", "ui-components", false},
		{"with underscore", "session_store", false},
		{"with digits", "router2", false},
		{"single letter", "a", false},
		{"max length", "a" + strings.Repeat("b", 63), false},
		{"empty", "", true},
		{"too long", "a" + strings.Repeat("b", 64), true},
		{"leading digit", "2fast", true},
		{"leading hyphen", "-router", true},
		{"spaces", "state manager", true},
		{"path traversal", "../etc/passwd", true},
		{"injection", "name;drop", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSystemName(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateSystemNames_ListsEveryInvalidName(t *testing.T) {
	err := ValidateSystemNames([]string{"stateManager", "", "2fast", "router"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2fast")
	assert.NotContains(t, err.Error(), "stateManager")

	assert.NoError(t, ValidateSystemNames([]string{"stateManager", "router"}))
	assert.NoError(t, ValidateSystemNames(nil))
}

func TestSanitizeEventName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already clean", "lesson_completed", "lesson_completed", false},
		{"mixed case", "QuizStarted", "quizstarted", false},
		{"spaces to underscores", "Quiz Started", "quiz_started", false},
		{"surrounding whitespace", "  page view ", "page_view", false},
		{"empty", "", "", true},
		{"digits only", "404", "", true},
		{"unicode", "урок", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeEventName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
