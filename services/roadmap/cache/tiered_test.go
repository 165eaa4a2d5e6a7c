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
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestCache builds a durable-only in-memory cache.
func newTestCache(t *testing.T) *TieredCache {
	t.Helper()
	c, err := New(context.Background(), Config{InMemory: true, DefaultTTL: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// TestTieredCache_SetGetRoundTrip verifies a set is visible to get with the
// durable tier tag when no fast tier exists.
func TestTieredCache_SetGetRoundTrip(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	payload := []map[string]any{{"CHILD_ID": "PROG000328"}}
	key := DeriveKey("SELECT * FROM h", map[string]any{"portfolio_id": "PTF1"})

	require.True(t, c.Set(ctx, key, payload, time.Minute))

	got := c.Get(ctx, key)
	require.True(t, got.Hit())
	assert.Equal(t, TierDurable, got.Tier)

	var decoded []map[string]any
	require.NoError(t, got.Decode(&decoded))
	assert.Equal(t, "PROG000328", decoded[0]["CHILD_ID"])
}

// TestTieredCache_MissReturnsTagged verifies a miss is a tagged result,
// not an error.
func TestTieredCache_MissReturnsTagged(t *testing.T) {
	c := newTestCache(t)

	got := c.Get(context.Background(), KeyNamespace+"absent")
	assert.False(t, got.Hit())
	assert.Equal(t, TierNone, got.Tier)
}

// TestTieredCache_TTLExpiry verifies an entry stops being served after its
// TTL, per the no-stale-reads invariant.
func TestTieredCache_TTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, KeyNamespace+"short", "v", time.Second))
	require.True(t, c.Get(ctx, KeyNamespace+"short").Hit())

	// Badger entry TTLs have one-second granularity.
	time.Sleep(1500 * time.Millisecond)

	assert.False(t, c.Get(ctx, KeyNamespace+"short").Hit())
}

// TestTieredCache_FastTierUnreachable simulates an unreachable Redis: the
// cache must construct in degraded mode and serve get/set via the durable
// tier with no error escaping.
func TestTieredCache_FastTierUnreachable(t *testing.T) {
	c, err := New(context.Background(), Config{
		InMemory:   true,
		RedisAddr:  "127.0.0.1:1", // nothing listens here
		DefaultTTL: time.Minute,
	})
	require.NoError(t, err, "fast tier failure must be non-fatal")
	defer c.Close()

	ctx := context.Background()
	assert.True(t, c.Set(ctx, KeyNamespace+"degraded", map[string]any{"ok": true}, time.Minute))

	got := c.Get(ctx, KeyNamespace+"degraded")
	assert.Equal(t, TierDurable, got.Tier)

	stats := c.Stats(ctx)
	assert.False(t, stats.FastAvailable)
	assert.Equal(t, 1, stats.DurableEntries)
}

// TestTieredCache_SetUnserializable verifies serialization failures are
// reflected only in the boolean return.
func TestTieredCache_SetUnserializable(t *testing.T) {
	c := newTestCache(t)

	assert.False(t, c.Set(context.Background(), KeyNamespace+"bad", func() {}, time.Minute))
}

// TestTieredCache_ClearAll verifies a patternless clear empties the durable
// tier.
func TestTieredCache_ClearAll(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, KeyNamespace+"a", 1, time.Minute))
	require.True(t, c.Set(ctx, KeyNamespace+"b", 2, time.Minute))
	require.Equal(t, 2, c.Stats(ctx).DurableEntries)

	assert.True(t, c.Clear(ctx, ""))
	assert.Equal(t, 0, c.Stats(ctx).DurableEntries)
	assert.False(t, c.Get(ctx, KeyNamespace+"a").Hit())
}

// TestTieredCache_ClearPatternWithoutFastTier verifies a pattern clear is a
// no-op success when only the durable tier exists: the durable tier supports
// full clear only, and its entries age out by TTL.
func TestTieredCache_ClearPatternWithoutFastTier(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.True(t, c.Set(ctx, KeyNamespace+"keep", 1, time.Minute))
	assert.True(t, c.Clear(ctx, "hierarchy"))
	assert.True(t, c.Get(ctx, KeyNamespace+"keep").Hit())
}

// TestTieredCache_Overwrite verifies a second set for the same key replaces
// the cached payload.
func TestTieredCache_Overwrite(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	key := KeyNamespace + "ow"

	require.True(t, c.Set(ctx, key, "first", time.Minute))
	require.True(t, c.Set(ctx, key, "second", time.Minute))

	var v string
	require.NoError(t, c.Get(ctx, key).Decode(&v))
	assert.Equal(t, "second", v)
}
