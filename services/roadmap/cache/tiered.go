// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache implements the tiered query-result cache.
//
// # Description
//
// Two tiers sit in front of the analytical warehouse:
//
//	Get ──► fast tier (Redis, opportunistic) ──► durable tier (BadgerDB, local)
//
// The fast tier is used when reachable; every fast-tier failure is recovered
// locally and the lookup falls through to the durable tier. Tier state is
// reported as a tagged result (TierFast / TierDurable / TierNone) rather
// than through errors: cache unavailability is an operational condition,
// not a request failure.
//
// # Lifecycle
//
// One TieredCache is constructed by the composition root at startup and
// closed at shutdown. It is never built per request.
//
// # Thread Safety
//
// Safe for concurrent use. Redis and BadgerDB each provide their own
// internal synchronization; this package adds no request-level locking.
// Concurrent misses on the same key are NOT coalesced: each caller fetches
// and writes independently. Warehouse reads are idempotent, so the cost is
// duplicate work, never wrong data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/AleutianAI/portfolio-roadmap/services/roadmap/storage/badger"
)

// Tier tags where a lookup was satisfied.
type Tier int

const (
	// TierNone means both tiers missed (or were unavailable).
	TierNone Tier = iota
	// TierFast means the Redis tier answered.
	TierFast
	// TierDurable means the local BadgerDB tier answered.
	TierDurable
)

// String returns the metric label for the tier.
func (t Tier) String() string {
	switch t {
	case TierFast:
		return "fast"
	case TierDurable:
		return "durable"
	default:
		return "none"
	}
}

// Lookup is the tagged result of a Get.
type Lookup struct {
	Value []byte
	Tier  Tier
}

// Hit reports whether either tier answered.
func (l Lookup) Hit() bool {
	return l.Tier != TierNone
}

// Decode unmarshals the cached payload into v.
func (l Lookup) Decode(v any) error {
	return json.Unmarshal(l.Value, v)
}

// Config configures the tiered cache.
type Config struct {
	// RedisAddr is the fast tier address. Empty disables the fast tier
	// without attempting a connection.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Dir is the durable tier directory. Ignored when InMemory is true.
	Dir string

	// InMemory runs the durable tier without disk persistence (tests).
	InMemory bool

	// MaxBytes caps the durable tier on disk. <= 0 disables the cap.
	MaxBytes int64

	// DefaultTTL applies when Set is called with ttl <= 0.
	DefaultTTL time.Duration

	// Logger receives tier fallback warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// TieredCache is the two-tier store. See the package documentation for the
// tier semantics.
type TieredCache struct {
	fast       *fastTier
	durable    *durableTier
	gc         *badger.GCRunner
	defaultTTL time.Duration
	log        *slog.Logger
}

// Stats is a point-in-time snapshot of both tiers.
type Stats struct {
	FastAvailable  bool   `json:"fast_tier_available"`
	DurableEntries int    `json:"durable_entry_count"`
	FastKeys       int    `json:"fast_tier_key_count,omitempty"`
	FastMemory     string `json:"fast_tier_memory,omitempty"`
}

// New constructs the tiered cache.
//
// The durable tier must open or construction fails. The fast tier is
// attempted with a short (2s) connect timeout; failure is logged and the
// cache runs durable-only: the service degrades, it does not refuse to
// start because Redis is down.
func New(ctx context.Context, cfg Config) (*TieredCache, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultTTL <= 0 {
		cfg.DefaultTTL = 5 * time.Minute
	}

	bcfg := badger.DefaultConfig()
	bcfg.Path = cfg.Dir
	bcfg.InMemory = cfg.InMemory
	db, err := badger.Open(bcfg)
	if err != nil {
		return nil, err
	}

	c := &TieredCache{
		durable:    &durableTier{db: db, maxBytes: cfg.MaxBytes},
		defaultTTL: cfg.DefaultTTL,
		log:        cfg.Logger,
	}

	if !cfg.InMemory && bcfg.GCInterval > 0 {
		gc, err := badger.NewGCRunner(db, bcfg.GCInterval, bcfg.GCDiscardRatio, cfg.Logger)
		if err == nil {
			gc.Start()
			c.gc = gc
		}
	}

	if cfg.RedisAddr != "" {
		fast, err := newFastTier(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			cfg.Logger.Warn("fast cache tier unavailable, running durable-only",
				"addr", cfg.RedisAddr, "error", err)
		} else {
			c.fast = fast
			cfg.Logger.Info("fast cache tier connected", "addr", cfg.RedisAddr)
		}
	}

	return c, nil
}

// Get looks a key up, fast tier first. Any fast-tier failure is logged and
// the lookup falls through; no error ever reaches the caller.
func (c *TieredCache) Get(ctx context.Context, key string) Lookup {
	if c.fast != nil {
		value, err := c.fast.get(ctx, key)
		switch {
		case err == nil:
			cacheHitsTotal.WithLabelValues(TierFast.String()).Inc()
			return Lookup{Value: value, Tier: TierFast}
		case !errors.Is(err, errFastMiss):
			cacheTierErrorsTotal.WithLabelValues(TierFast.String(), "get").Inc()
			c.log.Warn("fast tier get failed, falling through", "error", err)
		}
	}

	value, err := c.durable.get(key)
	switch {
	case err == nil:
		cacheHitsTotal.WithLabelValues(TierDurable.String()).Inc()
		return Lookup{Value: value, Tier: TierDurable}
	case !errors.Is(err, errDurableMiss):
		cacheTierErrorsTotal.WithLabelValues(TierDurable.String(), "get").Inc()
		c.log.Warn("durable tier get failed", "error", err)
	}

	cacheMissesTotal.Inc()
	return Lookup{Tier: TierNone}
}

// Set serializes value and writes it to both tiers independently with the
// given TTL (the default TTL when ttl <= 0). A failure in one tier never
// blocks the other. Returns true when at least one tier accepted the write;
// serialization failures are logged, never raised.
func (c *TieredCache) Set(ctx context.Context, key string, value any, ttl time.Duration) bool {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	payload, err := json.Marshal(value)
	if err != nil {
		c.log.Error("cache set skipped: payload not serializable", "key", key, "error", err)
		return false
	}

	ok := false
	if c.fast != nil {
		if err := c.fast.set(ctx, key, payload, ttl); err != nil {
			cacheTierErrorsTotal.WithLabelValues(TierFast.String(), "set").Inc()
			c.log.Warn("fast tier set failed", "error", err)
		} else {
			cacheSetsTotal.WithLabelValues(TierFast.String()).Inc()
			ok = true
		}
	}

	if err := c.durable.set(key, payload, ttl); err != nil {
		cacheTierErrorsTotal.WithLabelValues(TierDurable.String(), "set").Inc()
		c.log.Warn("durable tier set failed", "error", err)
	} else {
		cacheSetsTotal.WithLabelValues(TierDurable.String()).Inc()
		ok = true
	}

	return ok
}

// Clear removes cached entries.
//
// With a pattern, only matching fast-tier keys are deleted (substring
// match); the durable tier has no efficient pattern scan and is left
// intact, entries aging out by TTL. With an empty pattern both tiers are
// cleared fully. Returns false only when every attempted operation failed.
func (c *TieredCache) Clear(ctx context.Context, pattern string) bool {
	if pattern != "" {
		if c.fast == nil {
			return true
		}
		n, err := c.fast.clearPattern(ctx, pattern)
		if err != nil {
			cacheTierErrorsTotal.WithLabelValues(TierFast.String(), "clear").Inc()
			c.log.Warn("fast tier pattern clear failed", "error", err)
			return false
		}
		c.log.Info("cleared fast tier entries", "count", n, "pattern", pattern)
		return true
	}

	ok := false
	if c.fast != nil {
		if n, err := c.fast.clearPattern(ctx, ""); err != nil {
			cacheTierErrorsTotal.WithLabelValues(TierFast.String(), "clear").Inc()
			c.log.Warn("fast tier clear failed", "error", err)
		} else {
			c.log.Info("cleared fast tier", "count", n)
			ok = true
		}
	}

	if err := c.durable.clearAll(); err != nil {
		cacheTierErrorsTotal.WithLabelValues(TierDurable.String(), "clear").Inc()
		c.log.Warn("durable tier clear failed", "error", err)
	} else {
		c.log.Info("cleared durable tier")
		ok = true
	}
	return ok
}

// Stats snapshots both tiers. Fast-tier detail fields are best-effort and
// omitted when Redis is unavailable.
func (c *TieredCache) Stats(ctx context.Context) Stats {
	s := Stats{FastAvailable: c.fast != nil}

	if n, err := c.durable.entryCount(); err == nil {
		s.DurableEntries = n
	}

	if c.fast != nil {
		if n, err := c.fast.keyCount(ctx); err == nil {
			s.FastKeys = n
		}
		if mem, err := c.fast.memoryUsed(ctx); err == nil {
			s.FastMemory = mem
		}
	}

	return s
}

// Close stops the GC runner and closes both tiers. Called once at shutdown.
func (c *TieredCache) Close() error {
	if c.gc != nil {
		c.gc.Stop()
	}
	if c.fast != nil {
		if err := c.fast.close(); err != nil {
			c.log.Warn("closing fast tier", "error", err)
		}
	}
	return c.durable.close()
}
