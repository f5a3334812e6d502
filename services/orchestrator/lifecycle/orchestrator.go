// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package lifecycle composes the orchestrator: the dependency gate, the
// environment prober, the bring-up sequencer, the fault interceptor, the
// telemetry monitor, and the health loops, behind one Start/Restart/
// Shutdown/Status surface.
//
// # Description
//
// Bring-up is strictly ordered: gate, then environment detection and
// capability probe, then the mandatory subsystem phase, then the optional
// phase, and only then the background loops. A failure at the gate, the
// probe, or the mandatory phase is fatal to the run: the page enters the
// degraded terminal state with a critical notification and a narrowed
// feature set, and nothing downstream is started. Optional-phase failures
// never block completion.
//
// # Thread Safety
//
// Safe for concurrent use. Start, Restart, and Shutdown serialize on one
// mutex; Status and Subscribe may be called from any goroutine.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/environment"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/faults"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/gate"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/health"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/registry"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/sequencer"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/telemetry"
)

// Orchestrator phases reported on the status surface.
const (
	PhaseCreated  = "created"
	PhaseStarting = "starting"
	PhaseRunning  = "running"
	PhaseDegraded = "degraded"
	PhaseStopped  = "stopped"
)

// ErrAlreadyRunning is returned by Start when bring-up has already
// completed. Use Restart to re-run.
var ErrAlreadyRunning = errors.New("orchestrator already running")

// criticalMessage is the user-facing text of the degraded startup panel.
const criticalMessage = "Something went wrong while starting. Please reload the page."

// Orchestrator owns every lifecycle component and the event bus.
type Orchestrator struct {
	host    runtime.Host
	collab  runtime.Collaborators
	metrics *observability.Metrics
	logger  *slog.Logger
	tracer  trace.Tracer

	registry *registry.Registry
	bus      *eventBus

	mu          sync.Mutex
	phase       string
	runCancel   context.CancelFunc
	profile     *datatypes.EnvironmentProfile
	caps        datatypes.CapabilitySet
	sequencer   *sequencer.Sequencer
	interceptor *faults.Interceptor
	monitor     *telemetry.Monitor
	evaluator   *health.Evaluator
	idle        *health.IdleDetector
	report      *BringupReport
}

// New builds an orchestrator for the given host and collaborators.
func New(host runtime.Host, collab runtime.Collaborators,
	metrics *observability.Metrics, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		host:     host,
		collab:   collab,
		metrics:  metrics,
		logger:   logger,
		tracer:   otel.Tracer("orchestrator/lifecycle"),
		registry: registry.New(),
		bus:      newEventBus(),
		phase:    PhaseCreated,
	}
}

// Start runs bring-up once. A second call returns ErrAlreadyRunning;
// Restart is the supported way to re-run.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase == PhaseRunning {
		return ErrAlreadyRunning
	}
	return o.bringupLocked(ctx)
}

// Restart tears down the background loops, clears the system registry and
// the error buffer, and re-runs the full bring-up sequence. State persisted
// by subsystems themselves is untouched.
func (o *Orchestrator) Restart(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.logger.Info("restarting application")
	o.metrics.RestartsTotal.Inc()
	o.teardownLocked()
	o.registry.Clear()
	if o.interceptor != nil {
		o.interceptor.Clear()
	}
	o.bus.publish(Event{Type: EventRestart, Timestamp: time.Now()})
	return o.bringupLocked(ctx)
}

// Shutdown stops the background loops and marks the orchestrator stopped.
// It does not touch subsystem state; a stopped orchestrator can only be
// revived through Restart.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.teardownLocked()
	o.host.Markers().Clear(runtime.MarkerAppReady)
	o.phase = PhaseStopped
	o.logger.Info("orchestrator stopped")
}

// Subscribe returns a lifecycle event channel and its cancel function.
func (o *Orchestrator) Subscribe() (<-chan Event, func()) {
	return o.bus.subscribe()
}

// Registry exposes the system registry for the status handlers.
func (o *Orchestrator) Registry() *registry.Registry {
	return o.registry
}

// Errors returns a copy of the captured error buffer, oldest first.
// Empty before bring-up has installed the interceptor.
func (o *Orchestrator) Errors() []datatypes.ErrorRecord {
	o.mu.Lock()
	interceptor := o.interceptor
	o.mu.Unlock()
	if interceptor == nil {
		return nil
	}
	return interceptor.Records()
}

// Health returns the most recent health summary.
func (o *Orchestrator) Health() datatypes.HealthSummary {
	o.mu.Lock()
	evaluator := o.evaluator
	o.mu.Unlock()
	if evaluator == nil {
		return datatypes.HealthSummary{Healthy: true, Issues: []datatypes.HealthIssue{}}
	}
	return evaluator.Summary()
}

// bringupLocked runs one full bring-up attempt. Caller holds o.mu.
func (o *Orchestrator) bringupLocked(ctx context.Context) error {
	began := time.Now()
	ctx, span := o.tracer.Start(ctx, "orchestrator.bringup")
	defer span.End()

	o.phase = PhaseStarting
	o.logger.Info("bring-up started", "hostname", o.host.Hostname())

	// Markers from a previous run do not survive a fresh bring-up.
	for _, marker := range []string{
		runtime.MarkerAppReady, runtime.MarkerDegraded,
		runtime.MarkerDataSaving, runtime.MarkerInactive,
	} {
		o.host.Markers().Clear(marker)
	}

	// 1. Dependency gate: all-or-nothing, before anything is started.
	if err := gate.Verify(o.collab, runtime.MandatoryCollaborators); err != nil {
		return o.failLocked(span, began, err)
	}

	// 2. Environment detection and capability probe.
	o.profile = environment.DetectProfile(o.host.Hostname())
	o.logger.Info("environment detected",
		"mode", o.profile.Mode, "debug", o.profile.DebugEnabled)

	prober := environment.NewProber(o.host, o.logger)
	caps, err := prober.Probe()
	o.caps = caps
	if err != nil {
		return o.failLocked(span, began, err)
	}

	if o.collab.Analytics != nil && !o.profile.FeatureEnabled(environment.FeatureAnalytics) {
		o.collab.Analytics.SetEnabled(false)
	}

	// Loops and subsystem inits live on the run context, detached from the
	// caller's deadline. Restart and Shutdown cancel it.
	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	o.runCancel = cancel

	// 3. Mandatory phase: one failure is fatal to the run.
	o.sequencer = sequencer.New(o.registry, o.metrics, o.logger)
	var mandatory []runtime.Subsystem
	for _, name := range runtime.MandatoryCollaborators {
		sub, _ := o.collab.Lookup(name)
		mandatory = append(mandatory, sub)
	}
	if err := o.sequencer.RunMandatory(runCtx, mandatory); err != nil {
		return o.failLocked(span, began, err)
	}

	// 4. Optional phase: best-effort, all-settle.
	o.sequencer.RunOptional(runCtx, o.collab.Optional(runtime.OptionalCollaborators))

	// 5. Background loops.
	o.interceptor = faults.New(o.host, o.collab, o.registry.Statuses, o.metrics, o.logger)
	o.interceptor.OnRecord(func(rec datatypes.ErrorRecord) {
		o.bus.publish(Event{Type: EventFault, Timestamp: time.Now(), Fault: &rec})
	})
	o.interceptor.Install(runCtx)

	o.monitor = telemetry.New(o.host, o.collab, o.profile, o.metrics, o.logger)
	o.monitor.OnTransition(func(state datatypes.ConnectivityState) {
		o.bus.publish(Event{Type: EventConnectivity, Timestamp: time.Now(), Connectivity: &state})
	})
	o.monitor.Run(runCtx)

	o.evaluator = health.New(o.registry, o.monitor, o.interceptor,
		o.sequencer, o.collab, o.metrics, o.logger)
	go o.evaluator.Run(runCtx)

	o.idle = health.NewIdleDetector(o.host, o.collab, o.logger)
	go o.idle.Run(runCtx)

	// 6. Ready: marker, metric, completion broadcast.
	took := time.Since(began)
	o.host.Markers().Set(runtime.MarkerAppReady)
	o.metrics.BringupDurationSeconds.WithLabelValues("success").Observe(took.Seconds())

	report := BringupReport{
		DurationMs:    float64(took.Milliseconds()),
		Systems:       o.registry.Initialized(),
		Performance:   o.monitor.Snapshot(),
		CompletedAtMs: time.Now().UnixMilli(),
	}
	o.report = &report
	o.phase = PhaseRunning
	o.bus.publish(Event{Type: EventBringupComplete, Timestamp: time.Now(), Bringup: &report})
	o.logger.Info("application ready",
		"duration_ms", took.Milliseconds(), "systems", report.Systems)
	return nil
}

// failLocked renders the degraded terminal state: loops cancelled, degraded
// marker set, features narrowed, critical panel shown. Caller holds o.mu.
func (o *Orchestrator) failLocked(span trace.Span, began time.Time, err error) error {
	o.teardownLocked()
	o.phase = PhaseDegraded
	o.metrics.BringupDurationSeconds.WithLabelValues("failure").Observe(time.Since(began).Seconds())

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	o.host.Markers().Set(runtime.MarkerDegraded)
	if o.profile != nil {
		o.profile.DisableFeature(environment.FeatureAnalytics)
		o.profile.DisableFeature(environment.FeatureRichMedia)
		o.profile.DisableFeature(environment.FeatureBackgroundSync)
	}
	o.collab.Notify(criticalMessage, "critical")
	o.bus.publish(Event{Type: EventBringupFailed, Timestamp: time.Now(), Error: err.Error()})
	o.logger.Error("bring-up failed", "error", err)
	return err
}

// teardownLocked cancels the run context and waits for the channel
// consumers to drain. Caller holds o.mu.
func (o *Orchestrator) teardownLocked() {
	if o.runCancel != nil {
		o.runCancel()
		o.runCancel = nil
	}
	if o.interceptor != nil {
		o.interceptor.Wait()
	}
	if o.monitor != nil {
		o.monitor.Wait()
	}
}
