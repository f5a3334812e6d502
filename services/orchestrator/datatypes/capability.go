// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package datatypes

import "sort"

// Capability names probed at startup.
//
// Mandatory capabilities must all be present for bring-up to proceed.
// Optional capabilities only gate individual features.
const (
	// Mandatory.
	CapStorage   = "storage"   // persistent key-value storage
	CapEvents    = "events"    // event registration
	CapCodec     = "codec"     // structured-data parsing
	CapScheduler = "scheduler" // deferred-computation primitives
	CapFetch     = "fetch"     // network fetch

	// Optional.
	CapBackgroundSync = "background-sync"
	CapIntersection   = "intersection-observer"
	CapWebGL          = "webgl"
)

// MandatoryCapabilities is the fixed probe order for required capabilities.
var MandatoryCapabilities = []string{CapStorage, CapEvents, CapCodec, CapScheduler, CapFetch}

// OptionalCapabilities is the fixed probe order for best-effort capabilities.
var OptionalCapabilities = []string{CapBackgroundSync, CapIntersection, CapWebGL}

// CapabilitySet records the outcome of capability probing.
// A missing key means the capability was never probed.
type CapabilitySet map[string]bool

// Missing returns the sorted names out of the given list that probed false
// or were never probed.
func (c CapabilitySet) Missing(names []string) []string {
	var missing []string
	for _, name := range names {
		if !c[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// Supports reports whether the named capability probed true.
func (c CapabilitySet) Supports(name string) bool {
	return c[name]
}
