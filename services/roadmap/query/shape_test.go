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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestShapeHierarchy_Portfolio verifies the structural literal filter and
// that no user-bound parameters are added beyond pagination.
func TestShapeHierarchy_Portfolio(t *testing.T) {
	stmt, err := ShapeHierarchy("SELECT * FROM h", LevelPortfolio, Context{}, PageRequest{Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "WHERE COE_ROADMAP_TYPE = 'Portfolio'")
	assert.Contains(t, stmt.SQL, "ORDER BY CHILD_ID")
	assert.True(t, strings.HasSuffix(stmt.SQL, "LIMIT 20 OFFSET 0"))
	assert.Empty(t, stmt.Params)
}

// TestShapeHierarchy_Program verifies the binding discipline: exactly one
// WHERE clause, the identifier bound as a parameter, and the literal value
// absent from the SQL text.
func TestShapeHierarchy_Program(t *testing.T) {
	stmt, err := ShapeHierarchy("SELECT * FROM h", LevelProgram, Context{"portfolio_id": "PTF1"}, PageRequest{Page: 1, Limit: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(strings.ToUpper(stmt.SQL), "WHERE"))
	assert.Contains(t, stmt.SQL, "COE_ROADMAP_PARENT_ID = :portfolio_id")
	assert.NotContains(t, stmt.SQL, "PTF1")
	assert.Equal(t, "PTF1", stmt.Params["portfolio_id"])
}

// TestShapeHierarchy_PageTwo covers the no-WHERE template scenario with a
// second page: inserted WHERE plus LIMIT 10 OFFSET 10.
func TestShapeHierarchy_PageTwo(t *testing.T) {
	stmt, err := ShapeHierarchy("SELECT * FROM t", LevelProgram, Context{"portfolio_id": "A1"}, PageRequest{Page: 2, Limit: 10})
	require.NoError(t, err)

	assert.Contains(t, stmt.SQL, "WHERE COE_ROADMAP_PARENT_ID = :portfolio_id")
	assert.True(t, strings.HasSuffix(stmt.SQL, "LIMIT 10 OFFSET 10"), "got %q", stmt.SQL)
	assert.Equal(t, "A1", stmt.Params["portfolio_id"])
}

// TestShapeHierarchy_RequiredContext verifies each level's required key.
func TestShapeHierarchy_RequiredContext(t *testing.T) {
	cases := []struct {
		level Level
		key   string
	}{
		{LevelProgram, "portfolio_id"},
		{LevelSubProgram, "program_id"},
		{LevelRegion, "region"},
	}

	for _, tc := range cases {
		t.Run(string(tc.level), func(t *testing.T) {
			_, err := ShapeHierarchy("SELECT * FROM h", tc.level, Context{}, PageRequest{Page: 1, Limit: 10})
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.key, verr.Field)

			_, err = ShapeHierarchy("SELECT * FROM h", tc.level, Context{tc.key: ""}, PageRequest{Page: 1, Limit: 10})
			assert.ErrorAs(t, err, &verr)
		})
	}
}

// TestShapeHierarchy_RejectsMalformedIdentifier verifies identifier
// validation runs before binding, and the raw value stays out of the error.
func TestShapeHierarchy_RejectsMalformedIdentifier(t *testing.T) {
	injected := "X'; DROP TABLE portfolio_hierarchy; --"
	_, err := ShapeHierarchy("SELECT * FROM h", LevelProgram, Context{"portfolio_id": injected}, PageRequest{Page: 1, Limit: 10})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.NotContains(t, err.Error(), "DROP TABLE")
}

// TestShapeInvestment verifies the IN-query shaping.
func TestShapeInvestment(t *testing.T) {
	t.Run("binds each identifier separately", func(t *testing.T) {
		stmt, err := ShapeInvestment("SELECT * FROM inv", []string{"PROG000328", "PR00003652"})
		require.NoError(t, err)

		assert.Contains(t, stmt.SQL, "INV_EXT_ID IN (:inv_id, :inv_id_1)")
		assert.NotContains(t, stmt.SQL, "PROG000328")
		assert.Len(t, stmt.Params, 2)
	})

	t.Run("rejects empty identifier set", func(t *testing.T) {
		_, err := ShapeInvestment("SELECT * FROM inv", nil)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("rejects malformed identifiers", func(t *testing.T) {
		_, err := ShapeInvestment("SELECT * FROM inv", []string{"ok", "bad id"})
		assert.Error(t, err)
	})
}

// TestShapeInvestmentAll verifies the portfolio-scope full scan statement.
func TestShapeInvestmentAll(t *testing.T) {
	stmt, err := ShapeInvestmentAll("SELECT * FROM inv;")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM inv ORDER BY INV_EXT_ID", stmt.SQL)
	assert.Empty(t, stmt.Params)
}

// TestParseLevel verifies level parsing from path segments.
func TestParseLevel(t *testing.T) {
	for _, s := range []string{"portfolio", "program", "subprogram", "region"} {
		l, err := ParseLevel(s)
		require.NoError(t, err)
		assert.True(t, l.Valid())
	}

	_, err := ParseLevel("universe")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}
