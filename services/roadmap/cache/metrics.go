// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for tiered cache operations. These live next to the
// code that increments them; request-level metrics live in observability.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "roadmap",
		Name:      "cache_hits_total",
		Help:      "Cache hits by tier",
	}, []string{"tier"})

	cacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "roadmap",
		Name:      "cache_misses_total",
		Help:      "Lookups that missed both tiers",
	})

	cacheSetsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "roadmap",
		Name:      "cache_sets_total",
		Help:      "Successful cache writes by tier",
	}, []string{"tier"})

	cacheTierErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aleutian",
		Subsystem: "roadmap",
		Name:      "cache_tier_errors_total",
		Help:      "Recovered tier failures by tier and operation",
	}, []string{"tier", "op"})
)
