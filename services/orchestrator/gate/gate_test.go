// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime/simhost"
)

func TestVerify_AllPresent(t *testing.T) {
	collab := runtime.Collaborators{
		State: simhost.NewStubSubsystem("stateManager"),
	}
	assert.NoError(t, Verify(collab, runtime.MandatoryCollaborators))
}

func TestVerify_ReportsEveryMissingName(t *testing.T) {
	// Ask for more than the fixed list to exercise batch reporting.
	required := []string{runtime.CollabState, runtime.CollabUI, runtime.CollabRouter}
	collab := runtime.Collaborators{
		Router: simhost.NewStubSubsystem("router"),
	}

	err := Verify(collab, required)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stateManager")
	assert.Contains(t, err.Error(), "uiComponents")
	assert.NotContains(t, err.Error(), "router")
}

func TestVerify_UnknownNameIsMissing(t *testing.T) {
	collab := runtime.Collaborators{
		State: simhost.NewStubSubsystem("stateManager"),
	}
	err := Verify(collab, []string{"stateManager", "nonexistent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonexistent")
}
