// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package handlers implements the orchestrator's HTTP status surface.
package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lumenlearn/LumenLearn/pkg/extensions"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/lifecycle"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/middleware"
)

// HealthCheck reports liveness. It answers as long as the process serves
// HTTP, regardless of orchestrator phase; phase lives on /v1/status.
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStatus serves the full diagnostic snapshot.
func GetStatus(orch *lifecycle.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Status())
	}
}

// GetSystems serves the per-subsystem initialization records.
func GetSystems(orch *lifecycle.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"systems": orch.Registry().Snapshot(),
		})
	}
}

// GetErrors serves the captured error buffer, oldest first.
func GetErrors(orch *lifecycle.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		records := orch.Errors()
		c.JSON(http.StatusOK, gin.H{
			"count":  len(records),
			"errors": records,
		})
	}
}

// GetHealth serves the most recent health evaluation summary.
func GetHealth(orch *lifecycle.Orchestrator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, orch.Health())
	}
}

// PostRestart re-runs the full bring-up sequence. The attempt is audited;
// a failed bring-up reports 503 with the failure cause.
func PostRestart(orch *lifecycle.Orchestrator, audit extensions.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := "unknown"
		if info := middleware.GetAuthInfo(c); info != nil {
			userID = info.UserID
		}
		audit.Record(c.Request.Context(), extensions.AuditEvent{
			Action:    "restart",
			UserID:    userID,
			Timestamp: time.Now(),
		})

		if err := orch.Restart(c.Request.Context()); err != nil {
			slog.Error("restart bring-up failed", "error", err, "user_id", userID)
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "degraded",
				"error":  err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "restarted"})
	}
}
