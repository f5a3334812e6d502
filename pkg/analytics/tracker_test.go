// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package analytics

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock InfluxDB WriteAPI ---

type MockWriteAPI struct {
	mu             sync.Mutex
	WritePointFunc func(ctx context.Context, point ...*write.Point) error
	WrittenPoints  []*write.Point
}

func (m *MockWriteAPI) WritePoint(ctx context.Context, point ...*write.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WritePointFunc != nil {
		if err := m.WritePointFunc(ctx, point...); err != nil {
			return err
		}
	}
	m.WrittenPoints = append(m.WrittenPoints, point...)
	return nil
}

func (m *MockWriteAPI) WriteRecord(ctx context.Context, line ...string) error {
	return nil
}

func (m *MockWriteAPI) EnableBatching()                 {}
func (m *MockWriteAPI) Flush(ctx context.Context) error { return nil }

func (m *MockWriteAPI) Points() []*write.Point {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*write.Point(nil), m.WrittenPoints...)
}

func newTestTracker(mock *MockWriteAPI) *Tracker {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWithWriteAPI(mock, logger)
}

func TestTrackEvent_BuffersUntilFlush(t *testing.T) {
	mock := &MockWriteAPI{}
	tracker := newTestTracker(mock)

	tracker.TrackEvent("lesson_completed", map[string]any{"lesson": "algebra-1"})
	tracker.TrackEvent("Quiz Started", nil)

	assert.Equal(t, 2, tracker.Buffered())
	assert.Empty(t, mock.Points())

	require.NoError(t, tracker.SyncOfflineData(context.Background()))
	assert.Zero(t, tracker.Buffered())

	points := mock.Points()
	require.Len(t, points, 2)
	assert.Equal(t, "lesson_completed", pointTag(points[0], "event"))
	// Names are normalized before becoming tags.
	assert.Equal(t, "quiz_started", pointTag(points[1], "event"))
}

func TestTrackEvent_InvalidNameIsDropped(t *testing.T) {
	tracker := newTestTracker(&MockWriteAPI{})

	tracker.TrackEvent("", nil)
	tracker.TrackEvent("42nd-street", nil)
	assert.Zero(t, tracker.Buffered())
}

func TestTrackEvent_DisabledDropsNewEvents(t *testing.T) {
	tracker := newTestTracker(&MockWriteAPI{})

	tracker.TrackEvent("kept", nil)
	tracker.SetEnabled(false)
	tracker.TrackEvent("dropped", nil)

	// Disabling keeps what was already buffered.
	assert.Equal(t, 1, tracker.Buffered())
	assert.False(t, tracker.Enabled())
}

func TestTrackEvent_BufferIsBoundedDropOldest(t *testing.T) {
	mock := &MockWriteAPI{}
	tracker := newTestTracker(mock)

	for i := 0; i < maxBuffered+10; i++ {
		tracker.TrackEvent("page_view", map[string]any{"seq": i})
	}
	assert.Equal(t, maxBuffered, tracker.Buffered())
}

func TestFlush_FailureRestoresBatchInOrder(t *testing.T) {
	mock := &MockWriteAPI{}
	fail := true
	mock.WritePointFunc = func(_ context.Context, _ ...*write.Point) error {
		if fail {
			return errors.New("influx unreachable")
		}
		return nil
	}
	tracker := newTestTracker(mock)

	tracker.TrackEvent("first", nil)
	tracker.TrackEvent("second", nil)
	require.Error(t, tracker.SyncOfflineData(context.Background()))
	assert.Equal(t, 2, tracker.Buffered())

	tracker.TrackEvent("third", nil)
	fail = false
	require.NoError(t, tracker.SyncOfflineData(context.Background()))

	points := mock.Points()
	require.Len(t, points, 3)
	assert.Equal(t, "first", pointTag(points[0], "event"))
	assert.Equal(t, "second", pointTag(points[1], "event"))
	assert.Equal(t, "third", pointTag(points[2], "event"))
}

func TestCleanup_DropsPendingBuffer(t *testing.T) {
	mock := &MockWriteAPI{}
	tracker := newTestTracker(mock)

	tracker.TrackEvent("doomed", nil)
	require.NoError(t, tracker.Cleanup(context.Background()))
	assert.Zero(t, tracker.Buffered())

	require.NoError(t, tracker.SyncOfflineData(context.Background()))
	assert.Empty(t, mock.Points())
}

func TestInit_IsIdempotent(t *testing.T) {
	tracker := newTestTracker(&MockWriteAPI{})
	defer tracker.Close()

	require.NoError(t, tracker.Init(context.Background()))
	require.NoError(t, tracker.Init(context.Background()))
	assert.Equal(t, "analytics", tracker.Name())
}

func TestFlush_EmptyBufferIsNoop(t *testing.T) {
	mock := &MockWriteAPI{WritePointFunc: func(_ context.Context, _ ...*write.Point) error {
		t.Fatal("WritePoint called with empty buffer")
		return nil
	}}
	tracker := newTestTracker(mock)
	assert.NoError(t, tracker.SyncOfflineData(context.Background()))
}

func pointTag(p *write.Point, key string) string {
	for _, tag := range p.TagList() {
		if tag.Key == key {
			return tag.Value
		}
	}
	return ""
}
