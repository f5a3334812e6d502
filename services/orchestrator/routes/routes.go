// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lumenlearn/LumenLearn/pkg/extensions"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/handlers"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/lifecycle"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/middleware"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
)

// SetupRoutes wires the status surface. Read endpoints are open; restart
// goes through the auth middleware.
func SetupRoutes(router *gin.Engine, orch *lifecycle.Orchestrator,
	metrics *observability.Metrics, opts extensions.ServiceOptions) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/status", handlers.GetStatus(orch))
		v1.GET("/systems", handlers.GetSystems(orch))
		v1.GET("/errors", handlers.GetErrors(orch))
		v1.GET("/health", handlers.GetHealth(orch))
		v1.GET("/events/ws", handlers.HandleEventStream(orch, metrics))

		v1.POST("/restart",
			middleware.AuthMiddleware(opts.AuthProvider),
			handlers.PostRestart(orch, opts.AuditLogger))
	}
}
