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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// KeyNamespace prefixes every derived cache key. Namespacing keeps the fast
// tier's pattern operations (clear, stats) scoped to this service when the
// Redis database is shared.
const KeyNamespace = "roadmap:q:"

// DeriveKey derives the cache key for a (query text, parameters) pair.
//
// Parameters are folded in canonical key-sorted order so two maps with the
// same contents always derive the same key regardless of insertion order.
// The digest is SHA-256, so semantically distinct pairs collide only with
// negligible probability; a parameter value can never alias a different
// query's key the way naive string concatenation would allow.
//
// Pure function: deterministic, no side effects, no error conditions.
func DeriveKey(query string, params map[string]any) string {
	h := sha256.New()

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		// Length-prefixed fields prevent ambiguity between ("ab","c")
		// and ("a","bc") style splits.
		fmt.Fprintf(h, "%d:%s=%v;", len(k), k, params[k])
	}
	fmt.Fprintf(h, "|%s", query)

	return KeyNamespace + hex.EncodeToString(h.Sum(nil))
}
