// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/cache"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
)

// CacheStats reports tier availability and occupancy.
//
// Route: GET /v1/cache/stats
func CacheStats(store *cache.TieredCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, store.Stats(c.Request.Context()))
	}
}

// CacheClear invalidates cached query results. With ?pattern= only fast-tier
// keys containing the substring are dropped; without it both tiers are
// emptied.
//
// Route: DELETE /v1/cache
func CacheClear(store *cache.TieredCache, metrics *observability.RoadmapMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		pattern := c.Query("pattern")

		scope := "all"
		if pattern != "" {
			scope = "pattern"
		}
		metrics.CacheClearsTotal.WithLabelValues(scope).Inc()

		if !store.Clear(c.Request.Context(), pattern) {
			slog.Error("Cache clear failed", "scope", scope)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "cache clear failed"})
			return
		}

		slog.Info("Cache cleared", "scope", scope)
		c.JSON(http.StatusOK, gin.H{"status": "cleared", "scope": scope})
	}
}
