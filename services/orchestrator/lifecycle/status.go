// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lifecycle

import (
	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
)

// EnvironmentStatus is the JSON-safe projection of the environment profile.
type EnvironmentStatus struct {
	Mode     datatypes.Mode  `json:"mode"`
	Debug    bool            `json:"debug"`
	Features map[string]bool `json:"features"`
}

// StatusReport is the full diagnostic snapshot served by the status API.
type StatusReport struct {
	Phase        string                            `json:"phase"`
	FaultState   string                            `json:"faultState,omitempty"`
	Environment  *EnvironmentStatus                `json:"environment,omitempty"`
	Capabilities datatypes.CapabilitySet           `json:"capabilities,omitempty"`
	Systems      map[string]datatypes.SystemRecord `json:"systems"`
	Performance  datatypes.PerformanceSnapshot     `json:"performance"`
	Connectivity *datatypes.ConnectivityState      `json:"connectivity,omitempty"`
	Errors       []datatypes.ErrorRecord           `json:"errors"`
	Health       datatypes.HealthSummary           `json:"health"`
	Markers      []string                          `json:"markers"`
	Bringup      *BringupReport                    `json:"bringup,omitempty"`
}

// Status assembles the current diagnostic snapshot. Every field is a copy;
// the caller can hold or serialize it freely.
func (o *Orchestrator) Status() StatusReport {
	o.mu.Lock()
	phase := o.phase
	profile := o.profile
	caps := o.caps
	interceptor := o.interceptor
	monitor := o.monitor
	evaluator := o.evaluator
	report := o.report
	o.mu.Unlock()

	out := StatusReport{
		Phase:   phase,
		Systems: o.registry.Snapshot(),
		Errors:  []datatypes.ErrorRecord{},
		Health:  datatypes.HealthSummary{Healthy: true, Issues: []datatypes.HealthIssue{}},
		Markers: o.host.Markers().Active(),
		Bringup: report,
	}
	if profile != nil {
		out.Environment = &EnvironmentStatus{
			Mode:     profile.Mode,
			Debug:    profile.DebugEnabled,
			Features: profile.Features(),
		}
	}
	if len(caps) > 0 {
		copied := make(datatypes.CapabilitySet, len(caps))
		for name, ok := range caps {
			copied[name] = ok
		}
		out.Capabilities = copied
	}
	if interceptor != nil {
		out.FaultState = interceptor.StateName()
		out.Errors = interceptor.Records()
	}
	if monitor != nil {
		out.Performance = monitor.Snapshot()
		conn := monitor.Connectivity()
		out.Connectivity = &conn
	}
	if evaluator != nil {
		out.Health = evaluator.Summary()
	}
	return out
}
