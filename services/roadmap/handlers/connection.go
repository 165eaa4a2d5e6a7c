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

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"
)

// TestConnection pings the warehouse and reports reachability. Used by the
// frontend's settings page and by the admin CLI before a deploy.
func TestConnection(wh warehouse.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := wh.Ping(c.Request.Context()); err != nil {
			slog.Error("Warehouse connection test failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"connected": false,
				"error":     "warehouse unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{"connected": true})
	}
}
