// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package sequencer runs the two-phase subsystem bring-up.
//
// # Description
//
// The mandatory phase fans out all required subsystems and joins
// all-or-fail: one failure aborts the remainder of startup. The optional
// phase fans out best-effort and joins all-settle: every start runs to
// completion regardless of its siblings, failures are collected and
// reported as a batch. Every start, mandatory or optional, is timed and
// its outcome written to the system registry under the subsystem's name.
//
// There is no timeout around a subsystem start. A hung optional start
// stalls only its own settle branch; it cannot delay observation of the
// other branches' outcomes being recorded, and it never blocks the
// mandatory phase.
package sequencer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/registry"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
)

// Sequencer starts subsystems and records their outcomes.
type Sequencer struct {
	registry *registry.Registry
	metrics  *observability.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

// New builds a sequencer writing into the given registry.
func New(reg *registry.Registry, metrics *observability.Metrics, logger *slog.Logger) *Sequencer {
	return &Sequencer{
		registry: reg,
		metrics:  metrics,
		logger:   logger,
		tracer:   otel.Tracer("orchestrator/sequencer"),
	}
}

// RunMandatory starts every required subsystem concurrently and waits for
// all of them. The first failure is returned and there is no partial
// mandatory success: the caller must treat any error as fatal to bring-up.
func (s *Sequencer) RunMandatory(ctx context.Context, subs []runtime.Subsystem) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, sub := range subs {
		g.Go(func() error {
			if err := s.start(gctx, sub); err != nil {
				return fmt.Errorf("mandatory subsystem %s: %w", sub.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// RunOptional starts every given subsystem best-effort. Each start is
// isolated: a failure (or panic) in one cannot cancel or mask the others.
// After all outcomes settle, failed names are logged as one batch warning.
// Returns the success count and the failed names in start order.
func (s *Sequencer) RunOptional(ctx context.Context, subs []runtime.Subsystem) (succeeded int, failed []string) {
	errs := make([]error, len(subs))

	var wg sync.WaitGroup
	for i, sub := range subs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = s.startIsolated(ctx, sub)
		}()
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			failed = append(failed, subs[i].Name())
		}
	}
	if len(failed) > 0 {
		s.logger.Warn("optional subsystems failed to initialize",
			"failed", failed, "total", len(subs))
	}
	succeeded = len(subs) - len(failed)
	s.logger.Info("optional phase settled", "succeeded", succeeded, "total", len(subs))
	return succeeded, failed
}

// start runs one timed initialization attempt and records its outcome.
func (s *Sequencer) start(ctx context.Context, sub runtime.Subsystem) error {
	name := sub.Name()
	ctx, span := s.tracer.Start(ctx, "subsystem.init",
		trace.WithAttributes(attribute.String("system", name)))
	defer span.End()

	s.registry.MarkPending(name)
	began := time.Now()
	err := sub.Init(ctx)
	took := time.Since(began)
	s.registry.RecordOutcome(name, err, took)

	status := string(datatypes.SystemInitialized)
	if err != nil {
		status = string(datatypes.SystemFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.metrics.SystemInitTotal.WithLabelValues(name, status).Inc()
	s.metrics.SystemInitDurationSeconds.WithLabelValues(name).Observe(took.Seconds())

	if err != nil {
		s.logger.Error("subsystem initialization failed",
			"system", name, "duration_ms", took.Milliseconds(), "error", err)
		return err
	}
	s.logger.Info("subsystem initialized",
		"system", name, "duration_ms", took.Milliseconds())
	return nil
}

// Reinitialize runs one isolated re-initialization attempt for a subsystem
// that previously failed. The outcome overwrites the registry record either
// way; the health evaluator swallows the returned error.
func (s *Sequencer) Reinitialize(ctx context.Context, sub runtime.Subsystem) error {
	return s.startIsolated(ctx, sub)
}

// startIsolated wraps start so a panicking optional subsystem settles as a
// failure instead of taking down the whole fan-in.
func (s *Sequencer) startIsolated(ctx context.Context, sub runtime.Subsystem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subsystem %s panicked: %v", sub.Name(), r)
			s.registry.RecordOutcome(sub.Name(), err, 0)
		}
	}()
	return s.start(ctx, sub)
}
