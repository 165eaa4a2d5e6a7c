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
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// fastTimeout bounds every fast-tier network operation. A degraded Redis
// must never stall the request path; on timeout the durable tier (or a
// direct warehouse fetch) proceeds.
const fastTimeout = 2 * time.Second

// errFastMiss distinguishes "key absent" from tier failure inside the
// fast tier.
var errFastMiss = errors.New("fast tier miss")

// fastTier is the opportunistic Redis-backed tier.
//
// Every method takes its own short deadline; callers treat any error as
// "tier unavailable" and fall through, never as a request failure.
type fastTier struct {
	client *redis.Client
}

// newFastTier builds the tier and verifies connectivity with one ping.
// Returns an error when Redis is unreachable; the tiered store treats that
// as non-fatal and runs durable-only.
func newFastTier(ctx context.Context, addr, password string, db int) (*fastTier, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  fastTimeout,
		ReadTimeout:  fastTimeout,
		WriteTimeout: fastTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, fastTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return &fastTier{client: client}, nil
}

func (t *fastTier) get(ctx context.Context, key string) ([]byte, error) {
	opCtx, cancel := context.WithTimeout(ctx, fastTimeout)
	defer cancel()

	val, err := t.client.Get(opCtx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errFastMiss
	}
	if err != nil {
		return nil, err
	}
	return val, nil
}

func (t *fastTier) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	opCtx, cancel := context.WithTimeout(ctx, fastTimeout)
	defer cancel()

	return t.client.Set(opCtx, key, value, ttl).Err()
}

// clearPattern deletes keys matching *pattern* within the service namespace
// via SCAN, so a shared Redis database is never flushed wholesale. An empty
// pattern deletes every namespaced key.
func (t *fastTier) clearPattern(ctx context.Context, pattern string) (int, error) {
	match := KeyNamespace + "*"
	if pattern != "" {
		match = KeyNamespace + "*" + pattern + "*"
	}

	deleted := 0
	var cursor uint64
	for {
		opCtx, cancel := context.WithTimeout(ctx, fastTimeout)
		keys, next, err := t.client.Scan(opCtx, cursor, match, 100).Result()
		if err != nil {
			cancel()
			return deleted, err
		}
		if len(keys) > 0 {
			n, err := t.client.Del(opCtx, keys...).Result()
			if err != nil {
				cancel()
				return deleted, err
			}
			deleted += int(n)
		}
		cancel()

		cursor = next
		if cursor == 0 {
			return deleted, nil
		}
	}
}

// keyCount counts namespaced keys via SCAN.
func (t *fastTier) keyCount(ctx context.Context) (int, error) {
	count := 0
	var cursor uint64
	for {
		opCtx, cancel := context.WithTimeout(ctx, fastTimeout)
		keys, next, err := t.client.Scan(opCtx, cursor, KeyNamespace+"*", 500).Result()
		cancel()
		if err != nil {
			return 0, err
		}
		count += len(keys)

		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

// memoryUsed reports Redis's human-readable memory figure from INFO.
func (t *fastTier) memoryUsed(ctx context.Context) (string, error) {
	opCtx, cancel := context.WithTimeout(ctx, fastTimeout)
	defer cancel()

	info, err := t.client.Info(opCtx, "memory").Result()
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(info, "\n") {
		if v, ok := strings.CutPrefix(line, "used_memory_human:"); ok {
			return strings.TrimSpace(v), nil
		}
	}
	return "", nil
}

func (t *fastTier) close() error {
	return t.client.Close()
}
