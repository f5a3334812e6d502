// Copyright (C) 2025 LumenLearn (engineering@lumenlearn.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/credentials/insecure"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"

	"github.com/lumenlearn/LumenLearn/pkg/analytics"
	"github.com/lumenlearn/LumenLearn/pkg/extensions"
	"github.com/lumenlearn/LumenLearn/pkg/logging"
	"github.com/lumenlearn/LumenLearn/pkg/storage"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/lifecycle"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/observability"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/routes"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime"
	"github.com/lumenlearn/LumenLearn/services/orchestrator/runtime/simhost"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "lumenlearn-otel-collector:4317"
	}
	conn, err := grpc.NewClient(otelEndpoint,
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	traceExporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(conn))
	if err != nil {
		return nil, err
	}
	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceNameKey.String("client-orchestrator")))
	if err != nil {
		return nil, err
	}
	bsp := sdktrace.NewBatchSpanProcessor(traceExporter)
	traceProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
		sdktrace.WithSpanProcessor(bsp))
	otel.SetTracerProvider(traceProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.
		TraceContext{}, propagation.Baggage{}))

	return func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, time.Second*5)
		defer cancel()
		if err := traceExporter.Shutdown(ctx); err != nil {
			slog.Error("failed to shutdown OTLP exporter", "error", err)
		}
	}, nil
}

// logNotifier surfaces user notifications on the structured log. The
// service binary has no page to render them on.
type logNotifier struct {
	logger *slog.Logger
}

func (n *logNotifier) Name() string                 { return "uiComponents" }
func (n *logNotifier) Init(_ context.Context) error { return nil }
func (n *logNotifier) Notify(message, level string) {
	n.logger.Info("user notification", "level", level, "message", message)
}

func main() {
	port := os.Getenv("ORCHESTRATOR_PORT")
	if port == "" {
		port = "12310"
	}

	appLogger := logging.New(logging.Config{
		Level:   logging.ParseLevel(os.Getenv("LOG_LEVEL")),
		LogDir:  os.Getenv("LOG_DIR"),
		Service: "client-orchestrator",
		JSON:    true,
	})
	defer appLogger.Close()
	logger := appLogger.Slog()
	slog.SetDefault(logger)

	cleanup, err := initTracer()
	if err != nil {
		log.Fatalf("failed to setup the OTLP tracer: %v", err)
	}
	defer cleanup(context.Background())

	metrics := observability.InitMetrics()

	// The binary has no real page; the simulated host stands in for it.
	hostname := os.Getenv("PAGE_HOSTNAME")
	if hostname == "" {
		hostname = "localhost"
	}
	host := simhost.New(hostname)

	// Persistent storage: badger on disk when a directory is configured,
	// in-memory otherwise.
	if dir := os.Getenv("STORAGE_DIR"); dir != "" {
		storeCfg := storage.DefaultConfig()
		storeCfg.Path = dir
		storeCfg.Logger = logger
		store, err := storage.Open(storeCfg)
		if err != nil {
			log.Fatalf("failed to open storage at %s: %v", dir, err)
		}
		defer store.Close()
		host.SetStorage(store)
	}

	collab := runtime.Collaborators{
		State:  simhost.NewStubSubsystem("stateManager"),
		UI:     &logNotifier{logger: logger},
		Router: simhost.NewStubSubsystem("router"),
	}

	// Analytics joins only when InfluxDB is configured, matching the
	// optional-collaborator contract.
	if influxURL := os.Getenv("INFLUXDB_URL"); influxURL != "" {
		tracker := analytics.New(analytics.Config{
			URL:     influxURL,
			Token:   os.Getenv("INFLUXDB_TOKEN"),
			Org:     os.Getenv("INFLUXDB_ORG"),
			Bucket:  os.Getenv("INFLUXDB_BUCKET"),
			Session: os.Getenv("SESSION_ID"),
		}, logger)
		defer tracker.Close()
		collab.Analytics = tracker
	} else {
		slog.Info("INFLUXDB_URL not set. Running without the analytics collaborator.")
	}

	orch := lifecycle.New(host, collab, metrics, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := orch.Start(ctx); err != nil {
		// Degraded is a terminal but servable state: the status surface
		// stays up so the operator can see what failed and retry.
		slog.Error("bring-up failed, serving degraded status surface", "error", err)
	}
	defer orch.Shutdown()

	opts := extensions.DefaultOptions()
	if token := os.Getenv("ORCHESTRATOR_API_TOKEN"); token != "" {
		opts = opts.WithAuth(&extensions.StaticTokenProvider{Token: token})
	}
	opts = opts.WithAudit(&extensions.SlogAuditLogger{Logger: logger})

	router := gin.Default()
	router.Use(otelgin.Middleware("client-orchestrator"))
	routes.SetupRoutes(router, orch, metrics, opts)

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}
	go func() {
		slog.Info("starting the orchestrator server", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	slog.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}
