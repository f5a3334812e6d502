// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package faults

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime/simhost"
)

const eventually = 2 * time.Second

type fixture struct {
	host        *simhost.SimHost
	store       *simhost.MemStorage
	notifier    *simhost.RecordingNotifier
	analytics   *simhost.FakeAnalytics
	interceptor *Interceptor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	host := simhost.New("localhost")
	store := simhost.NewMemStorage()
	host.SetStorage(store)
	notifier := simhost.NewRecordingNotifier()
	analytics := simhost.NewFakeAnalytics()
	collab := runtime.Collaborators{
		State:     simhost.NewStubSubsystem("stateManager"),
		UI:        notifier,
		Analytics: analytics,
	}
	statuses := func() map[string]datatypes.SystemStatus {
		return map[string]datatypes.SystemStatus{"stateManager": datatypes.SystemInitialized}
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		host:        host,
		store:       store,
		notifier:    notifier,
		analytics:   analytics,
		interceptor: New(host, collab, statuses, metrics, logger),
	}
}

func TestInterceptor_CapturesScriptFault(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectScriptFault(runtime.ScriptFault{
		Message: "undefined is not a function",
		Source:  "lesson.js",
		Line:    42,
		Column:  7,
	})

	require.Eventually(t, func() bool { return f.interceptor.Count() == 1 },
		eventually, 10*time.Millisecond)

	records := f.interceptor.Records()
	rec := records[0]
	assert.Equal(t, datatypes.ErrorScript, rec.Kind)
	assert.Equal(t, "undefined is not a function", rec.Details["message"])
	assert.Equal(t, datatypes.SystemInitialized, rec.Systems["stateManager"])
	assert.Zero(t, f.host.Reloads())
}

func TestInterceptor_CapturesRejection(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectRejection(runtime.RejectionFault{Reason: "fetch aborted"})

	require.Eventually(t, func() bool { return f.interceptor.Count() == 1 },
		eventually, 10*time.Millisecond)
	rec := f.interceptor.Records()[0]
	assert.Equal(t, datatypes.ErrorRejection, rec.Kind)
	assert.Equal(t, "fetch aborted", rec.Details["reason"])
}

func TestInterceptor_StorageFaultClearsStoreAndReloads(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, f.store.Set(ctx, "progress", []byte("unit-3")))
	f.interceptor.Install(ctx)

	f.host.InjectScriptFault(runtime.ScriptFault{
		Message: "QuotaExceededError: storage is full",
		Source:  "persistence.js",
	})

	require.Eventually(t, func() bool { return f.host.Reloads() == 1 },
		eventually, 10*time.Millisecond)
	assert.Equal(t, 1, f.store.Clears())
	assert.Zero(t, f.store.Len())
	assert.Equal(t, 1, f.interceptor.Count())
}

func TestInterceptor_FailedScriptLoadEntersDegradedState(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectResourceFault(runtime.ResourceFault{
		TagName: "script",
		URL:     "https://cdn.lumenlearn.io/quiz-widget.js",
	})

	require.Eventually(t, func() bool {
		return f.host.Markers().Has(runtime.MarkerDegraded)
	}, eventually, 10*time.Millisecond)

	notes := f.notifier.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, "warning", notes[0].Level)
	// Degraded mode never reloads; the page keeps running.
	assert.Zero(t, f.host.Reloads())
}

func TestInterceptor_FailedImageLoadIsRecordedOnly(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectResourceFault(runtime.ResourceFault{
		TagName: "img",
		URL:     "https://cdn.lumenlearn.io/diagram.png",
	})

	require.Eventually(t, func() bool { return f.interceptor.Count() == 1 },
		eventually, 10*time.Millisecond)
	assert.False(t, f.host.Markers().Has(runtime.MarkerDegraded))
	assert.Empty(t, f.notifier.Notifications())
	assert.Zero(t, f.host.Reloads())
}

func TestInterceptor_ForwardsToAnalyticsWhenEnabled(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectRejection(runtime.RejectionFault{Reason: "boom"})
	require.Eventually(t, func() bool { return len(f.analytics.Events()) == 1 },
		eventually, 10*time.Millisecond)
	assert.Equal(t, "fault_captured", f.analytics.Events()[0].Name)
}

func TestInterceptor_SkipsAnalyticsWhenDisabled(t *testing.T) {
	f := newFixture(t)
	f.analytics.SetEnabled(false)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectRejection(runtime.RejectionFault{Reason: "boom"})
	require.Eventually(t, func() bool { return f.interceptor.Count() == 1 },
		eventually, 10*time.Millisecond)
	assert.Empty(t, f.analytics.Events())
}

func TestInterceptor_OnRecordHook(t *testing.T) {
	f := newFixture(t)
	captured := make(chan datatypes.ErrorRecord, 1)
	f.interceptor.OnRecord(func(rec datatypes.ErrorRecord) {
		captured <- rec
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectRejection(runtime.RejectionFault{Reason: "hooked"})
	select {
	case rec := <-captured:
		assert.Equal(t, datatypes.ErrorRejection, rec.Kind)
	case <-time.After(eventually):
		t.Fatal("hook was not invoked")
	}
}

func TestInterceptor_PruneAndClear(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)

	f.host.InjectRejection(runtime.RejectionFault{Reason: "one"})
	f.host.InjectRejection(runtime.RejectionFault{Reason: "two"})
	require.Eventually(t, func() bool { return f.interceptor.Count() == 2 },
		eventually, 10*time.Millisecond)

	// Fresh records survive the one-hour cutoff.
	assert.Zero(t, f.interceptor.Prune())
	assert.Equal(t, 2, f.interceptor.Count())

	f.interceptor.Clear()
	assert.Zero(t, f.interceptor.Count())
}

func TestInterceptor_StateTransitions(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.interceptor.Install(ctx)
	assert.Equal(t, "INSTALLED", f.interceptor.StateName())

	f.host.InjectRejection(runtime.RejectionFault{Reason: "observe me"})
	require.Eventually(t, func() bool {
		return f.interceptor.StateName() == "ERROR_OBSERVED"
	}, eventually, 10*time.Millisecond)
}
