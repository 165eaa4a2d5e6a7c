// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/cache"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/config"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/middleware"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/query"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/resolver"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/routes"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"

	// --- OpenTelemetry imports ---
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func initTracer() (func(context.Context), error) {
	ctx := context.Background()

	otelEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otelEndpoint == "" {
		otelEndpoint = "aleutian-otel-collector:4317"
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
		resource.WithAttributes(semconv.ServiceNameKey.String("roadmap-service")))
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

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: %v", err)
	}

	// --- Init the tracer ---
	// A missing collector leaves otel on its noop provider; the service
	// runs untraced rather than not at all.
	if cleanup, err := initTracer(); err != nil {
		slog.Warn("OTLP tracer unavailable, tracing disabled", "error", err)
	} else {
		defer cleanup(context.Background())
	}

	metrics := observability.InitMetrics()

	wh, err := warehouse.NewDatabricksClient(warehouse.Config{
		Hostname:     cfg.DatabricksHostname,
		HTTPPath:     cfg.DatabricksHTTPPath,
		AccessToken:  cfg.DatabricksToken,
		Catalog:      cfg.DatabricksCatalog,
		Schema:       cfg.DatabricksSchema,
		QueryTimeout: cfg.QueryTimeout,
	})
	if err != nil {
		log.Fatalf("FATAL: Could not build the warehouse client: %v", err)
	}
	defer wh.Close()

	// A dead warehouse at startup is worth knowing about, but the service
	// still comes up: the cache can serve, and connectivity recovers on
	// its own through the pool.
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 10*time.Second)
	if err := wh.Ping(pingCtx); err != nil {
		slog.Warn("Warehouse unreachable at startup", "error", err)
	}
	cancelPing()

	store, err := cache.New(context.Background(), cache.Config{
		RedisAddr:     cfg.RedisAddr,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		Dir:           cfg.CacheDir,
		MaxBytes:      cfg.CacheMaxBytes,
		DefaultTTL:    cfg.CacheTTL,
		Logger:        logger,
	})
	if err != nil {
		log.Fatalf("FATAL: Could not open the cache: %v", err)
	}
	defer store.Close()

	res, err := resolver.New(wh, store, query.NewTemplateStore(cfg.SQLDir),
		resolver.Config{CacheTTL: cfg.CacheTTL, Metrics: metrics}, logger)
	if err != nil {
		log.Fatalf("FATAL: Could not build the resolver: %v", err)
	}

	router := gin.Default()
	router.Use(otelgin.Middleware("roadmap-service"))
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.FrontendURL))

	routes.SetupRoutes(router, res, store, wh, metrics)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Println("Starting the roadmap server on port ", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Block until SIGINT/SIGTERM, then drain in-flight requests before the
	// deferred cache and warehouse closes run.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("Shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
	}
}
