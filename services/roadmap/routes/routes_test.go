// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package routes

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/cache"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/query"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/resolver"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"
)

// ============================================================================
// Test Setup
// ============================================================================

func init() {
	// Set Gin to test mode to reduce noise in test output
	gin.SetMode(gin.TestMode)
}

// mockWarehouse is a minimal mock for warehouse.Client
type mockWarehouse struct{}

func (m *mockWarehouse) Execute(context.Context, string, map[string]any) ([]warehouse.Row, error) {
	return nil, nil
}

func (m *mockWarehouse) Ping(context.Context) error { return nil }
func (m *mockWarehouse) Close() error               { return nil }

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()

	store, err := cache.New(context.Background(), cache.Config{InMemory: true, DefaultTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	wh := &mockWarehouse{}
	res, err := resolver.New(wh, store, query.NewTemplateStore(""), resolver.Config{}, slog.Default())
	require.NoError(t, err)

	router := gin.New()
	SetupRoutes(router, res, store, wh, observability.NewMetrics(prometheus.NewRegistry()))
	return router
}

// ============================================================================
// SetupRoutes Tests
// ============================================================================

func TestSetupRoutes_RegistersCoreRoutes(t *testing.T) {
	router := newRouter(t)

	coreRoutes := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/metrics"},
		{"GET", "/v1/connection/test"},
		{"GET", "/v1/roadmap/:level"},
		{"GET", "/v1/cache/stats"},
		{"DELETE", "/v1/cache"},
	}

	routes := router.Routes()
	for _, expected := range coreRoutes {
		found := false
		for _, r := range routes {
			if r.Method == expected.method && r.Path == expected.path {
				found = true
				break
			}
		}
		assert.True(t, found, "route %s %s not registered", expected.method, expected.path)
	}
}

func TestSetupRoutes_MetricsEndpointServes(t *testing.T) {
	router := newRouter(t)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/metrics", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
