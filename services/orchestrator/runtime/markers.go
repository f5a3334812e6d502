// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package runtime

// Page-level marker names, the equivalent of body-level CSS classes.
const (
	MarkerAppReady   = "app-ready"
	MarkerDegraded   = "degraded-mode"
	MarkerDataSaving = "data-saving-mode"
	MarkerInactive   = "user-inactive"
)

// MarkerSet toggles page-level marker state. Setting an active marker or
// clearing an inactive one is a no-op.
type MarkerSet interface {
	Set(marker string)
	Clear(marker string)
	Has(marker string) bool
	Active() []string
}
