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

// DefaultMaxLimit caps the page size when no other maximum is configured.
const DefaultMaxLimit = 50

// PageRequest is a 1-based page plus a page size.
type PageRequest struct {
	Page  int
	Limit int
}

// Normalize validates the request and caps the limit.
//
// Page must be >= 1 and Limit >= 1; Limit is clamped to maxLimit (or
// DefaultMaxLimit when maxLimit <= 0). Returns a ValidationError on
// out-of-range values rather than silently correcting them, so callers
// get a 4xx instead of surprising pagination.
func (p PageRequest) Normalize(maxLimit int) (PageRequest, error) {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	if p.Page < 1 {
		return PageRequest{}, NewValidationError("page", "must be >= 1")
	}
	if p.Limit < 1 {
		return PageRequest{}, NewValidationError("limit", "must be >= 1")
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	return p, nil
}

// Offset converts the 1-based page into a row offset.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Envelope is the pagination metadata returned with a page of results.
//
// HasMore is a heuristic: it is true exactly when the page came back full.
// When the total row count is an exact multiple of the limit, the client
// makes one extra request that returns an empty page. That is accepted
// rather than corrected, because an exact answer costs a second COUNT
// query per page against the warehouse.
type Envelope struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	TotalItems int  `json:"total_items"`
	HasMore    bool `json:"has_more"`
}

// NewEnvelope computes the envelope for a page of rowCount rows.
func NewEnvelope(rowCount int, page PageRequest) Envelope {
	return Envelope{
		Page:       page.Page,
		Limit:      page.Limit,
		TotalItems: rowCount,
		HasMore:    rowCount == page.Limit,
	}
}
