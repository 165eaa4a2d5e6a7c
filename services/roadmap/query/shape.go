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
	"github.com/AleutianAI/portfolio-roadmap/pkg/validation"
)

// Warehouse column names used by the shaper. These are code constants and
// the only identifiers ever spliced into SQL text.
const (
	colRoadmapType = "COE_ROADMAP_TYPE"
	colParentID    = "COE_ROADMAP_PARENT_ID"
	colRegion      = "REGION"
	colChildID     = "CHILD_ID"
	colInvExtID    = "INV_EXT_ID"
)

// ChildIDColumn is the hierarchy join-key column the resolver reads.
const ChildIDColumn = colChildID

// InvestmentIDColumn is the investment-side join-key column.
const InvestmentIDColumn = colInvExtID

// ShapeHierarchy turns the generic hierarchy template into the statement for
// one level, with the level's filter predicate, deterministic ordering and
// pagination applied.
//
// Portfolio gets a structural literal filter (COE_ROADMAP_TYPE = 'Portfolio',
// not user input). The other three levels bind their identifier as a named
// parameter; the raw value never appears in the SQL text. A missing or
// malformed required context value yields a ValidationError.
func ShapeHierarchy(template string, level Level, qctx Context, page PageRequest) (Statement, error) {
	if !level.Valid() {
		return Statement{}, NewValidationError("level", "unknown hierarchy level")
	}

	b := NewBuilder(template)

	switch level {
	case LevelPortfolio:
		b.Literal(colRoadmapType + " = 'Portfolio'")
	case LevelProgram:
		v, err := requireContext(qctx, level.ContextKey())
		if err != nil {
			return Statement{}, err
		}
		b.Bind(Predicate{Column: colParentID, Operator: "=", Param: "portfolio_id"}, v)
	case LevelSubProgram:
		v, err := requireContext(qctx, level.ContextKey())
		if err != nil {
			return Statement{}, err
		}
		b.Bind(Predicate{Column: colParentID, Operator: "=", Param: "program_id"}, v)
	case LevelRegion:
		v, err := requireContext(qctx, level.ContextKey())
		if err != nil {
			return Statement{}, err
		}
		b.Bind(Predicate{Column: colRegion, Operator: "=", Param: "region"}, v)
	}

	b.OrderBy(colChildID)
	b.Paginate(page.Limit, page.Offset())
	return b.Build()
}

// ShapeInvestment turns the investment template into an IN-query over the
// given external identifiers, each bound as its own named parameter.
//
// Identifiers originate from hierarchy query results, a trusted source, but
// binding discipline stays uniform: string-joining them would be both
// dialect-fragile and a habit worth not having.
func ShapeInvestment(template string, externalIDs []string) (Statement, error) {
	if len(externalIDs) == 0 {
		return Statement{}, NewValidationError("external_ids", "at least one identifier is required")
	}
	if err := validation.ValidateIdentifiers(externalIDs); err != nil {
		return Statement{}, NewValidationError("external_ids", err.Error())
	}

	b := NewBuilder(template)
	b.BindIn(colInvExtID, "inv_id", externalIDs)
	b.OrderBy(colInvExtID)
	return b.Build()
}

// ShapeInvestmentAll returns the full unfiltered investment statement.
//
// Used only at Portfolio scope, where the resolver deliberately fetches the
// whole dataset instead of chaining on hierarchy results; see the resolver
// for the tradeoff.
func ShapeInvestmentAll(template string) (Statement, error) {
	b := NewBuilder(template)
	b.OrderBy(colInvExtID)
	return b.Build()
}

// requireContext fetches and validates a required context value. The value
// itself is validated as an identifier so malformed input fails here, before
// it reaches a cache key or a warehouse parameter.
func requireContext(qctx Context, key string) (string, error) {
	v, ok := qctx[key]
	if !ok || v == "" {
		return "", NewValidationError(key, "required for this level and must be non-empty")
	}
	sanitized, err := validation.SanitizeIdentifier(v)
	if err != nil {
		return "", NewValidationError(key, err.Error())
	}
	return sanitized, nil
}
