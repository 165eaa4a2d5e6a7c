// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestPageRequest_Normalize covers validation and the limit cap.
func TestPageRequest_Normalize(t *testing.T) {
	t.Run("valid request passes through", func(t *testing.T) {
		p, err := PageRequest{Page: 3, Limit: 10}.Normalize(50)
		require.NoError(t, err)
		assert.Equal(t, PageRequest{Page: 3, Limit: 10}, p)
		assert.Equal(t, 20, p.Offset())
	})

	t.Run("limit is capped at the configured maximum", func(t *testing.T) {
		p, err := PageRequest{Page: 1, Limit: 500}.Normalize(50)
		require.NoError(t, err)
		assert.Equal(t, 50, p.Limit)
	})

	t.Run("zero maxLimit falls back to the default", func(t *testing.T) {
		p, err := PageRequest{Page: 1, Limit: 500}.Normalize(0)
		require.NoError(t, err)
		assert.Equal(t, DefaultMaxLimit, p.Limit)
	})

	t.Run("page below 1 is a validation error", func(t *testing.T) {
		_, err := PageRequest{Page: 0, Limit: 10}.Normalize(50)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("limit below 1 is a validation error", func(t *testing.T) {
		_, err := PageRequest{Page: 1, Limit: 0}.Normalize(50)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

// TestNewEnvelope covers the has_more heuristic, including the documented
// exact-multiple edge where a full final page still reports has_more.
func TestNewEnvelope(t *testing.T) {
	t.Run("full page reports more", func(t *testing.T) {
		env := NewEnvelope(10, PageRequest{Page: 1, Limit: 10})
		assert.True(t, env.HasMore)
		assert.Equal(t, 10, env.TotalItems)
	})

	t.Run("short page reports exhausted", func(t *testing.T) {
		env := NewEnvelope(3, PageRequest{Page: 2, Limit: 10})
		assert.False(t, env.HasMore)
		assert.Equal(t, 2, env.Page)
	})

	t.Run("empty page reports exhausted", func(t *testing.T) {
		env := NewEnvelope(0, PageRequest{Page: 5, Limit: 10})
		assert.False(t, env.HasMore)
	})
}
