// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/cache"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/handlers"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/resolver"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"
)

func SetupRoutes(router *gin.Engine, res *resolver.Resolver, store *cache.TieredCache,
	wh warehouse.Client, metrics *observability.RoadmapMetrics) {

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1 group
	v1 := router.Group("/v1")
	{
		v1.GET("/connection/test", handlers.TestConnection(wh))
		v1.GET("/roadmap/:level", handlers.GetRoadmap(res, metrics))
		// Cache administration routes
		cacheAdmin := v1.Group("/cache")
		{
			cacheAdmin.GET("/stats", handlers.CacheStats(store))
		}
		v1.DELETE("/cache", handlers.CacheClear(store, metrics))
	}
}
