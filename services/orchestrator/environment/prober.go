// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package environment detects the deployment environment and probes the
// host for required and optional capabilities.
package environment

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

// Feature flag names carried on the environment profile.
const (
	FeatureAnalytics      = "analytics"
	FeatureRichMedia      = "richMedia"
	FeatureBackgroundSync = "backgroundSync"
	FeatureDebugPanel     = "debugPanel"
)

// DetectProfile computes the environment profile from the host address.
//
// Policy: localhost or 127.0.0.1 means development; a hostname containing
// "dev" or "staging" means staging; anything else is production. Debug is
// enabled outside production, and analytics is forced off in development so
// local sessions never pollute product metrics.
func DetectProfile(hostname string) *datatypes.EnvironmentProfile {
	host := strings.ToLower(hostname)

	mode := datatypes.ModeProduction
	switch {
	case host == "localhost" || host == "127.0.0.1":
		mode = datatypes.ModeDevelopment
	case strings.Contains(host, "dev") || strings.Contains(host, "staging"):
		mode = datatypes.ModeStaging
	}

	debug := mode != datatypes.ModeProduction
	flags := map[string]bool{
		FeatureAnalytics:      mode != datatypes.ModeDevelopment,
		FeatureRichMedia:      true,
		FeatureBackgroundSync: true,
		FeatureDebugPanel:     debug,
	}
	return datatypes.NewEnvironmentProfile(mode, debug, flags)
}

// Prober checks host capabilities against the fixed mandatory and optional
// lists.
type Prober struct {
	host   runtime.Host
	logger *slog.Logger
}

// NewProber builds a prober for the given host.
func NewProber(host runtime.Host, logger *slog.Logger) *Prober {
	return &Prober{host: host, logger: logger}
}

// Probe checks every capability and returns the populated set.
//
// Mandatory capabilities are all checked before any error is returned: the
// error names every missing capability, not just the first, so a broken
// host produces one actionable report. Optional probes are defensive (a
// probe that panics is recorded as unsupported, never propagated) and
// absence only logs a warning.
func (p *Prober) Probe() (datatypes.CapabilitySet, error) {
	caps := make(datatypes.CapabilitySet,
		len(datatypes.MandatoryCapabilities)+len(datatypes.OptionalCapabilities))

	for _, name := range datatypes.MandatoryCapabilities {
		caps[name] = p.host.HasCapability(name)
	}
	for _, name := range datatypes.OptionalCapabilities {
		caps[name] = p.probeDefensively(name)
		if !caps[name] {
			p.logger.Warn("optional capability unsupported, dependent feature disabled",
				"capability", name)
		}
	}

	if missing := caps.Missing(datatypes.MandatoryCapabilities); len(missing) > 0 {
		return caps, fmt.Errorf("missing mandatory capabilities: %s", strings.Join(missing, ", "))
	}
	return caps, nil
}

// probeDefensively runs an optional probe, treating a panic as
// "unsupported". Some hosts throw on feature detection instead of
// returning false.
func (p *Prober) probeDefensively(name string) (supported bool) {
	defer func() {
		if r := recover(); r != nil {
			supported = false
		}
	}()
	return p.host.ProbeOptional(name)
}
