// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package query shapes level-specific, parameterized, paginated statements
// from immutable SQL templates.
//
// # Description
//
// The hierarchy warehouse tables are queried at four levels (Portfolio,
// Program, SubProgram, Region), each with its own filter predicate. This
// package turns a generic template into a fully formed statement:
//
//	template ──► Builder ──► Statement{SQL, Params}
//	              │
//	              ├─► literal structural filters (never user input)
//	              ├─► bound predicates (always user input)
//	              └─► ORDER BY / LIMIT / OFFSET (validated integers)
//
// # Injection Safety
//
// User-influenced values are never concatenated into SQL text. They travel
// exclusively as named parameters. The only inlined values are limit and
// offset, which pass through non-negative integer validation first.
package query

import "fmt"

// Level identifies a hierarchy level. Each level determines which filter
// predicate is layered onto the hierarchy template.
type Level string

const (
	// LevelPortfolio is the broadest scope: a structural filter on roadmap
	// type, no parent identifier required.
	LevelPortfolio Level = "portfolio"

	// LevelProgram filters children of a portfolio. Requires portfolio_id.
	LevelProgram Level = "program"

	// LevelSubProgram filters children of a program. Requires program_id.
	LevelSubProgram Level = "subprogram"

	// LevelRegion filters by region. Requires region.
	LevelRegion Level = "region"
)

// ContextKey returns the context key this level requires, or "" when the
// level needs no caller-supplied identifier (Portfolio).
func (l Level) ContextKey() string {
	switch l {
	case LevelProgram:
		return "portfolio_id"
	case LevelSubProgram:
		return "program_id"
	case LevelRegion:
		return "region"
	default:
		return ""
	}
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	switch l {
	case LevelPortfolio, LevelProgram, LevelSubProgram, LevelRegion:
		return true
	}
	return false
}

// ParseLevel converts a path segment into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", &ValidationError{Field: "level", Reason: fmt.Sprintf("must be one of %s, %s, %s, %s",
			LevelPortfolio, LevelProgram, LevelSubProgram, LevelRegion)}
	}
	return l, nil
}

// Context carries the caller-supplied filter identifiers for a level query.
// Keys match Level.ContextKey values.
type Context map[string]string
