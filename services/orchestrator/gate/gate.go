// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package gate verifies that every mandatory collaborator is present
// before any initialization is allowed to proceed.
package gate

import (
	"fmt"
	"strings"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

// Verify checks the fixed ordered list of mandatory collaborator names
// against the injected registry.
//
// The check collects every missing name and reports them together: a page
// missing three collaborators gets one error naming all three, not three
// reload cycles discovering them one at a time. Runs strictly before any
// subsystem start and before capability probing may short-circuit bring-up.
func Verify(collab runtime.Collaborators, required []string) error {
	var missing []string
	for _, name := range required {
		if !collab.Present(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing mandatory collaborators: %s", strings.Join(missing, ", "))
	}
	return nil
}
