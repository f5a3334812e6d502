// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/lumenlearn/LumenLearn/services/orchestrator/lifecycle"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

// eventWriteTimeout bounds each websocket write so one stuck client cannot
// pin the writer goroutine.
const eventWriteTimeout = 10 * time.Second

// HandleEventStream streams lifecycle events over a websocket.
//
// Each connected client gets its own subscription; a slow client drops
// events rather than slowing the orchestrator or its siblings. The
// subscription ends when the client disconnects or the write fails.
func HandleEventStream(orch *lifecycle.Orchestrator, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()

		metrics.EventStreamClients.Inc()
		defer metrics.EventStreamClients.Dec()
		slog.Info("event stream client connected", "remote", ws.RemoteAddr().String())

		events, cancel := orch.Subscribe()
		defer cancel()

		// Reader exists only to observe the close; inbound frames are
		// discarded.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				slog.Info("event stream client disconnected")
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := ws.SetWriteDeadline(time.Now().Add(eventWriteTimeout)); err != nil {
					return
				}
				if err := ws.WriteJSON(ev); err != nil {
					slog.Warn("event stream write failed", "error", err)
					return
				}
			}
		}
	}
}
