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
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/query"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/resolver"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"
)

// roadmapQuery carries the query-string inputs for a resolve request.
// Identifier values are validated downstream by the shaper; here we only
// bind shapes and defaults.
type roadmapQuery struct {
	Page        int    `form:"page,default=1"`
	Limit       int    `form:"limit,default=20"`
	PortfolioID string `form:"portfolio_id"`
	ProgramID   string `form:"program_id"`
	Region      string `form:"region"`
}

// GetRoadmap resolves one hierarchy level with its dependent investments.
//
// Route: GET /v1/roadmap/:level
func GetRoadmap(res *resolver.Resolver, metrics *observability.RoadmapMetrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		level, err := query.ParseLevel(c.Param("level"))
		if err != nil {
			metrics.RecordRequest(c.Param("level"), observability.StatusClientError, time.Since(start).Seconds())
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var q roadmapQuery
		if err := c.ShouldBindQuery(&q); err != nil {
			metrics.RecordRequest(string(level), observability.StatusClientError, time.Since(start).Seconds())
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters"})
			return
		}

		qctx := query.Context{}
		if q.PortfolioID != "" {
			qctx["portfolio_id"] = q.PortfolioID
		}
		if q.ProgramID != "" {
			qctx["program_id"] = q.ProgramID
		}
		if q.Region != "" {
			qctx["region"] = q.Region
		}

		result, err := res.Resolve(c.Request.Context(), level, qctx,
			query.PageRequest{Page: q.Page, Limit: q.Limit})
		if err != nil {
			status, metricStatus := mapResolveError(err)
			metrics.RecordRequest(string(level), metricStatus, time.Since(start).Seconds())

			var verr *query.ValidationError
			if errors.As(err, &verr) {
				c.JSON(status, gin.H{"error": verr.Error()})
				return
			}
			slog.Error("Roadmap resolve failed", "level", level, "error", err)
			c.JSON(status, gin.H{"error": http.StatusText(status)})
			return
		}

		metrics.RecordRequest(string(level), observability.StatusSuccess, time.Since(start).Seconds())
		c.JSON(http.StatusOK, result)
	}
}

// mapResolveError translates resolver errors into an HTTP status and a
// metrics label. Validation problems are the caller's fault; warehouse
// connectivity and deadlines are upstream faults with distinct codes so
// the frontend can distinguish "retry later" from "query is broken".
func mapResolveError(err error) (int, observability.Status) {
	var verr *query.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, observability.StatusClientError
	case errors.Is(err, warehouse.ErrTimeout):
		return http.StatusGatewayTimeout, observability.StatusUpstreamError
	case errors.Is(err, warehouse.ErrConnection):
		return http.StatusBadGateway, observability.StatusUpstreamError
	default:
		return http.StatusInternalServerError, observability.StatusInternalError
	}
}
