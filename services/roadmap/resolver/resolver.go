// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package resolver chains the hierarchy-level query into its dependent
// investment query (the cascade).
//
// # Description
//
// A resolve call is two warehouse round-trips at most:
//
//	shape hierarchy ──► cache? ──► warehouse ──► child IDs
//	                                   │
//	                                   ▼ (skipped when no children)
//	shape investment IN(ids) ──► cache? ──► warehouse
//
// Portfolio level is the documented exception: instead of chaining, the
// full unfiltered investment dataset is fetched concurrently with the
// hierarchy page and identifier matching is left to the caller. That trades
// a wider scan for removing the sequential dependency at the one level
// where the identifier set is largest and most stable.
//
// # Caching
//
// Each statement's results are cached under a key derived from its SQL and
// bound parameters. Concurrent misses on one key are not coalesced; each
// caller queries the warehouse and writes independently. Reads are
// idempotent, so duplicated work is the whole cost.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/cache"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/observability"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/query"
	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/warehouse"
)

var tracer = otel.Tracer("aleutian.roadmap.resolver")

// Result is a resolved page: the hierarchy rows for the requested level,
// the dependent investment rows, and the pagination envelope computed from
// the hierarchy page.
type Result struct {
	Hierarchy  []warehouse.Row `json:"hierarchy"`
	Investment []warehouse.Row `json:"investment"`
	Pagination query.Envelope  `json:"pagination"`
}

// Config tunes the resolver.
type Config struct {
	// CacheTTL applies to both cascade statements. Default 5 minutes.
	CacheTTL time.Duration

	// MaxLimit caps the page size. Default query.DefaultMaxLimit.
	MaxLimit int

	// Metrics receives warehouse query counts and durations. Optional;
	// nil disables recording.
	Metrics *observability.RoadmapMetrics
}

// Resolver executes the cascade against the shared warehouse client and
// tiered cache. One resolver serves the whole process.
type Resolver struct {
	wh             warehouse.Client
	store          *cache.TieredCache
	hierarchyTmpl  string
	investmentTmpl string
	ttl            time.Duration
	maxLimit       int
	metrics        *observability.RoadmapMetrics
	log            *slog.Logger
}

// New builds a resolver. Templates are loaded once here; a missing template
// is a startup failure, not a request-time one.
func New(wh warehouse.Client, store *cache.TieredCache, templates *query.TemplateStore, cfg Config, log *slog.Logger) (*Resolver, error) {
	hier, err := templates.Load(query.TemplateHierarchy)
	if err != nil {
		return nil, fmt.Errorf("load hierarchy template: %w", err)
	}
	inv, err := templates.Load(query.TemplateInvestment)
	if err != nil {
		return nil, fmt.Errorf("load investment template: %w", err)
	}

	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = query.DefaultMaxLimit
	}
	if log == nil {
		log = slog.Default()
	}

	return &Resolver{
		wh:             wh,
		store:          store,
		hierarchyTmpl:  hier,
		investmentTmpl: inv,
		ttl:            cfg.CacheTTL,
		maxLimit:       cfg.MaxLimit,
		metrics:        cfg.Metrics,
		log:            log,
	}, nil
}

// Resolve runs the cascade for one level and page.
//
// ValidationErrors surface unchanged for the transport layer to map to
// client errors; warehouse errors surface after zero internal retries.
func (r *Resolver) Resolve(ctx context.Context, level query.Level, qctx query.Context, page query.PageRequest) (*Result, error) {
	ctx, span := tracer.Start(ctx, "resolver.Resolve")
	defer span.End()
	span.SetAttributes(attribute.String("roadmap.level", string(level)))

	page, err := page.Normalize(r.maxLimit)
	if err != nil {
		return nil, err
	}

	hierStmt, err := query.ShapeHierarchy(r.hierarchyTmpl, level, qctx, page)
	if err != nil {
		return nil, err
	}

	if level == query.LevelPortfolio {
		return r.resolvePortfolio(ctx, hierStmt, page)
	}

	hierarchy, err := r.fetch(ctx, hierStmt)
	if err != nil {
		return nil, err
	}

	ids := childIDs(hierarchy)
	investment := []warehouse.Row{}
	if len(ids) > 0 {
		invStmt, err := query.ShapeInvestment(r.investmentTmpl, ids)
		if err != nil {
			return nil, err
		}
		investment, err = r.fetch(ctx, invStmt)
		if err != nil {
			return nil, err
		}
	} else {
		// No children means no valid IN predicate; skip the second
		// warehouse call entirely.
		r.log.Debug("hierarchy page empty, skipping investment query", "level", level)
	}

	return &Result{
		Hierarchy:  hierarchy,
		Investment: investment,
		Pagination: query.NewEnvelope(len(hierarchy), page),
	}, nil
}

// resolvePortfolio fetches the hierarchy page and the full investment
// dataset concurrently. See the package doc for why Portfolio does not
// chain.
func (r *Resolver) resolvePortfolio(ctx context.Context, hierStmt query.Statement, page query.PageRequest) (*Result, error) {
	invStmt, err := query.ShapeInvestmentAll(r.investmentTmpl)
	if err != nil {
		return nil, err
	}

	var hierarchy, investment []warehouse.Row
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		hierarchy, err = r.fetch(gctx, hierStmt)
		return err
	})
	g.Go(func() error {
		var err error
		investment, err = r.fetch(gctx, invStmt)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		Hierarchy:  hierarchy,
		Investment: investment,
		Pagination: query.NewEnvelope(len(hierarchy), page),
	}, nil
}

// fetch is one cache-checked statement execution: derive key, try tiers,
// on miss query the warehouse and populate the cache.
func (r *Resolver) fetch(ctx context.Context, stmt query.Statement) ([]warehouse.Row, error) {
	ctx, span := tracer.Start(ctx, "resolver.fetch")
	defer span.End()

	key := cache.DeriveKey(stmt.SQL, stmt.Params)

	if found := r.store.Get(ctx, key); found.Hit() {
		span.SetAttributes(attribute.String("cache.tier", found.Tier.String()))
		var rows []warehouse.Row
		if err := found.Decode(&rows); err == nil {
			return rows, nil
		}
		// Undecodable payload is treated as a miss; the fresh result
		// overwrites it below.
		r.log.Warn("discarding undecodable cache entry", "key", key)
	}
	span.SetAttributes(attribute.String("cache.tier", "none"))

	start := time.Now()
	rows, err := r.wh.Execute(ctx, stmt.SQL, stmt.Params)
	if r.metrics != nil {
		r.metrics.RecordWarehouseQuery(queryStatus(err), time.Since(start).Seconds())
	}
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []warehouse.Row{}
	}

	r.store.Set(ctx, key, rows, r.ttl)
	return rows, nil
}

// queryStatus maps a warehouse result onto its metrics label, following the
// sentinel categories the client classifies into.
func queryStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, warehouse.ErrTimeout):
		return "timeout"
	case errors.Is(err, warehouse.ErrConnection):
		return "connection"
	default:
		return "query"
	}
}

// childIDs extracts the distinct CHILD_ID values in first-seen order.
func childIDs(rows []warehouse.Row) []string {
	seen := make(map[string]struct{}, len(rows))
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		id, ok := row[query.ChildIDColumn].(string)
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
