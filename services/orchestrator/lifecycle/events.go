// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package lifecycle

import (
	"sync"
	"time"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/datatypes"
)

// Event types broadcast by the orchestrator.
const (
	EventBringupComplete = "bringup-complete"
	EventBringupFailed   = "bringup-failed"
	EventFault           = "fault"
	EventConnectivity    = "connectivity"
	EventRestart         = "restart"
)

// BringupReport is the payload of the one-time bring-up completion event.
type BringupReport struct {
	DurationMs    float64                       `json:"durationMs"`
	Systems       []string                      `json:"systems"`
	Performance   datatypes.PerformanceSnapshot `json:"performance"`
	CompletedAtMs int64                         `json:"completedAtMs"`
}

// Event is one lifecycle broadcast. Exactly one payload field is set,
// matching Type.
type Event struct {
	Type         string                       `json:"type"`
	Timestamp    time.Time                    `json:"timestamp"`
	Bringup      *BringupReport               `json:"bringup,omitempty"`
	Fault        *datatypes.ErrorRecord       `json:"fault,omitempty"`
	Connectivity *datatypes.ConnectivityState `json:"connectivity,omitempty"`
	Error        string                       `json:"error,omitempty"`
}

// eventBus fans events out to subscribers. Slow subscribers drop events
// rather than block the orchestrator.
type eventBus struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func newEventBus() *eventBus {
	return &eventBus{subs: make(map[int]chan Event)}
}

// subscribe returns a receive channel and its cancel function. The channel
// is buffered; events beyond the buffer are dropped for that subscriber.
func (b *eventBus) subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.next
	b.next++
	ch := make(chan Event, 16)
	b.subs[id] = ch
	return ch, func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(sub)
		}
	}
}

func (b *eventBus) publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
