// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package analytics implements the product-analytics collaborator backed
// by InfluxDB.
//
// # Description
//
// Events are buffered in memory and flushed to InfluxDB on a fixed period.
// TrackEvent never blocks the caller: it appends to a bounded buffer and
// returns. When the buffer is full the oldest event is dropped; losing a
// product event beats growing without bound on a flaky connection. The
// telemetry monitor calls SyncOfflineData when the connection returns,
// which forces an immediate flush of everything buffered while offline.
//
// # Thread Safety
//
// Safe for concurrent use.
package analytics

import (
	"context"
	"log/slog"
	"sync"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/lumenlearn/LumenLearn/pkg/validation"
)

const (
	// maxBuffered bounds the in-memory event buffer.
	maxBuffered = 256

	// flushInterval is the periodic flush cadence.
	flushInterval = 10 * time.Second

	// flushTimeout bounds one flush attempt.
	flushTimeout = 5 * time.Second

	// measurement is the InfluxDB measurement all events land in.
	measurement = "client_events"
)

// Config holds the InfluxDB connection settings.
type Config struct {
	URL    string
	Token  string
	Org    string
	Bucket string

	// Session tags every event with the page session it came from.
	Session string
}

// Tracker is the InfluxDB-backed analytics collaborator.
type Tracker struct {
	cfg    Config
	logger *slog.Logger

	client influxdb2.Client
	write  api.WriteAPIBlocking

	mu      sync.Mutex
	enabled bool
	pending []*write.Point
	running bool
	stop    chan struct{}
}

// New builds a tracker. The InfluxDB client is created in Init, not here,
// so construction never fails.
func New(cfg Config, logger *slog.Logger) *Tracker {
	return &Tracker{
		cfg:     cfg,
		logger:  logger,
		enabled: true,
	}
}

// NewWithWriteAPI builds a tracker around an existing write API. Tests
// inject a mock here.
func NewWithWriteAPI(writeAPI api.WriteAPIBlocking, logger *slog.Logger) *Tracker {
	return &Tracker{
		logger:  logger,
		write:   writeAPI,
		enabled: true,
	}
}

// Name implements runtime.Subsystem.
func (t *Tracker) Name() string { return "analytics" }

// Init connects the client and starts the periodic flusher. Init after a
// failed or repeated attempt is safe; the flusher is started once.
func (t *Tracker) Init(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.write == nil {
		t.client = influxdb2.NewClient(t.cfg.URL, t.cfg.Token)
		t.write = t.client.WriteAPIBlocking(t.cfg.Org, t.cfg.Bucket)
	}
	if !t.running {
		t.running = true
		t.stop = make(chan struct{})
		go t.flushLoop(t.stop)
	}
	t.logger.Info("analytics tracker initialized", "url", t.cfg.URL, "bucket", t.cfg.Bucket)
	return nil
}

// Close stops the flusher and releases the client.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.running {
		t.running = false
		close(t.stop)
	}
	client := t.client
	t.client = nil
	t.mu.Unlock()

	if client != nil {
		client.Close()
	}
}

// TrackEvent buffers one event. Never blocks; drops the oldest buffered
// event when full. The name becomes an InfluxDB tag, so it is sanitized
// first and events with unusable names are dropped.
func (t *Tracker) TrackEvent(name string, props map[string]any) {
	event, err := validation.SanitizeEventName(name)
	if err != nil {
		t.logger.Warn("analytics event dropped", "name", name, "error", err)
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled {
		return
	}

	fields := make(map[string]any, len(props)+1)
	fields["count"] = 1
	for k, v := range props {
		fields[k] = v
	}
	point := influxdb2.NewPoint(measurement,
		map[string]string{"event": event, "session": t.cfg.Session},
		fields,
		time.Now())

	if len(t.pending) >= maxBuffered {
		t.pending = t.pending[1:]
	}
	t.pending = append(t.pending, point)
}

// Cleanup drops the buffered events. Invoked by high-memory remediation.
func (t *Tracker) Cleanup(_ context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	dropped := len(t.pending)
	t.pending = nil
	if dropped > 0 {
		t.logger.Info("analytics buffer dropped", "events", dropped)
	}
	return nil
}

// SyncOfflineData flushes everything buffered, immediately.
func (t *Tracker) SyncOfflineData(ctx context.Context) error {
	return t.flush(ctx)
}

// SetEnabled toggles event buffering. Disabling does not drop what is
// already buffered.
func (t *Tracker) SetEnabled(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.enabled = enabled
}

// Enabled reports whether events are being accepted.
func (t *Tracker) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Buffered returns the number of events awaiting flush.
func (t *Tracker) Buffered() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

func (t *Tracker) flushLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
			if err := t.flush(ctx); err != nil {
				t.logger.Warn("analytics flush failed", "error", err)
			}
			cancel()
		}
	}
}

// flush writes the pending buffer. On failure the batch is restored ahead
// of anything tracked meanwhile, preserving event order.
func (t *Tracker) flush(ctx context.Context) error {
	t.mu.Lock()
	batch := t.pending
	t.pending = nil
	writeAPI := t.write
	t.mu.Unlock()

	if len(batch) == 0 || writeAPI == nil {
		return nil
	}
	if err := writeAPI.WritePoint(ctx, batch...); err != nil {
		t.mu.Lock()
		restored := append(batch, t.pending...)
		if len(restored) > maxBuffered {
			restored = restored[len(restored)-maxBuffered:]
		}
		t.pending = restored
		t.mu.Unlock()
		return err
	}
	t.logger.Debug("analytics events flushed", "events", len(batch))
	return nil
}
