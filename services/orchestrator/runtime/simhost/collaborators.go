// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package simhost

import (
	"context"
	"sync"
	"time"
)

// StubSubsystem is a configurable runtime.Subsystem.
type StubSubsystem struct {
	name string

	// InitErr, when set, is returned by every Init call.
	InitErr error

	// InitDelay stretches Init to simulate slow bring-up.
	InitDelay time.Duration

	// PanicOnInit makes Init panic instead of returning.
	PanicOnInit bool

	mu    sync.Mutex
	calls int
}

// NewStubSubsystem returns a subsystem that initializes instantly.
func NewStubSubsystem(name string) *StubSubsystem {
	return &StubSubsystem{name: name}
}

// Name implements runtime.Subsystem.
func (s *StubSubsystem) Name() string { return s.name }

// Init implements runtime.Subsystem.
func (s *StubSubsystem) Init(ctx context.Context) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()

	if s.InitDelay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.InitDelay):
		}
	}
	if s.PanicOnInit {
		panic("subsystem init panic: " + s.name)
	}
	return s.InitErr
}

// InitCalls returns how many times Init has run.
func (s *StubSubsystem) InitCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Notification is one message shown to the user.
type Notification struct {
	Message string
	Level   string
}

// RecordingNotifier is a runtime.Notifier that records what it was asked
// to show.
type RecordingNotifier struct {
	StubSubsystem

	mu    sync.Mutex
	notes []Notification
}

// NewRecordingNotifier returns an empty notifier named "uiComponents".
func NewRecordingNotifier() *RecordingNotifier {
	return &RecordingNotifier{StubSubsystem: StubSubsystem{name: "uiComponents"}}
}

// Notify records the notification.
func (n *RecordingNotifier) Notify(message, level string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notes = append(n.notes, Notification{Message: message, Level: level})
}

// Notifications returns a copy of everything shown so far.
func (n *RecordingNotifier) Notifications() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, len(n.notes))
	copy(out, n.notes)
	return out
}

// TrackedEvent is one recorded analytics event.
type TrackedEvent struct {
	Name  string
	Props map[string]any
}

// FakeAnalytics is a runtime.Analytics that records calls in memory.
type FakeAnalytics struct {
	StubSubsystem

	// CleanupErr and SyncErr, when set, are returned by the corresponding
	// methods.
	CleanupErr error
	SyncErr    error

	mu       sync.Mutex
	enabled  bool
	events   []TrackedEvent
	cleanups int
	syncs    int
}

// NewFakeAnalytics returns an enabled analytics stub named "analytics".
func NewFakeAnalytics() *FakeAnalytics {
	return &FakeAnalytics{
		StubSubsystem: StubSubsystem{name: "analytics"},
		enabled:       true,
	}
}

// TrackEvent records the event.
func (a *FakeAnalytics) TrackEvent(name string, props map[string]any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, TrackedEvent{Name: name, Props: props})
}

// Events returns a copy of all tracked events.
func (a *FakeAnalytics) Events() []TrackedEvent {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]TrackedEvent, len(a.events))
	copy(out, a.events)
	return out
}

// Cleanup counts the call and returns CleanupErr.
func (a *FakeAnalytics) Cleanup(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cleanups++
	return a.CleanupErr
}

// Cleanups returns how many times Cleanup has run.
func (a *FakeAnalytics) Cleanups() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.cleanups
}

// SyncOfflineData counts the call and returns SyncErr.
func (a *FakeAnalytics) SyncOfflineData(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.syncs++
	return a.SyncErr
}

// Syncs returns how many times SyncOfflineData has run.
func (a *FakeAnalytics) Syncs() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.syncs
}

// SetEnabled implements runtime.Analytics.
func (a *FakeAnalytics) SetEnabled(enabled bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = enabled
}

// Enabled implements runtime.Analytics.
func (a *FakeAnalytics) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}
