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
	"fmt"
	"regexp"
	"strings"
)

// Predicate is a tagged filter clause: a column, a comparison operator and
// the name of the parameter the value is bound under. Carrying the parameter
// name instead of the value makes the binding discipline visible in the type:
// a Predicate physically cannot smuggle a raw value into SQL text.
type Predicate struct {
	Column   string
	Operator string
	Param    string
}

// Statement is a fully formed parameterized query plus its bound values,
// keyed by parameter name.
type Statement struct {
	SQL    string
	Params map[string]any
}

// whereDetect matches an existing WHERE keyword in a template,
// case-insensitively, on word boundaries so column names containing
// "where" don't false-positive.
var whereDetect = regexp.MustCompile(`(?i)\bWHERE\b`)

// Builder layers filters, ordering and pagination onto an immutable base
// template. The base text is never edited in place; clauses are appended
// in a fixed order at Build time.
//
// Not safe for concurrent use; build one per statement.
type Builder struct {
	base     string
	literals []string
	preds    []Predicate
	params   map[string]any
	orderBy  string
	limit    int
	offset   int
	paginate bool
}

// NewBuilder starts a builder from a raw template. Trailing statement
// terminators and whitespace are stripped so appended clauses don't produce
// a double-terminated statement.
func NewBuilder(template string) *Builder {
	base := strings.TrimSpace(template)
	base = strings.TrimRight(base, ";")
	base = strings.TrimSpace(base)
	return &Builder{
		base:   base,
		params: make(map[string]any),
	}
}

// Literal appends a structural filter condition verbatim.
//
// Only compile-time constant conditions belong here (e.g. a roadmap type
// discriminator). Anything derived from a request must go through Bind.
func (b *Builder) Literal(cond string) *Builder {
	b.literals = append(b.literals, cond)
	return b
}

// Bind appends a predicate whose value travels as a named parameter.
func (b *Builder) Bind(p Predicate, value any) *Builder {
	b.preds = append(b.preds, p)
	b.params[p.Param] = value
	return b
}

// BindIn appends an IN predicate over the given values, binding each one
// under its own generated parameter name (param, param_1, param_2, ...).
// An empty value slice is rejected at Build time: "IN ()" is not valid SQL.
func (b *Builder) BindIn(column, param string, values []string) *Builder {
	markers := make([]string, len(values))
	for i, v := range values {
		name := param
		if i > 0 {
			name = fmt.Sprintf("%s_%d", param, i)
		}
		markers[i] = ":" + name
		b.params[name] = v
	}
	// Zero values yields "col IN ()", which Build rejects.
	b.literals = append(b.literals, fmt.Sprintf("%s IN (%s)", column, strings.Join(markers, ", ")))
	return b
}

// OrderBy sets the ordering column. The column comes from code constants,
// never from the request.
func (b *Builder) OrderBy(column string) *Builder {
	b.orderBy = column
	return b
}

// Paginate sets LIMIT/OFFSET. Values are validated at Build time.
func (b *Builder) Paginate(limit, offset int) *Builder {
	b.limit = limit
	b.offset = offset
	b.paginate = true
	return b
}

// Build assembles the final statement.
//
// Filter conditions are introduced with WHERE when the template has none,
// or appended with AND when it already does. Pagination integers are the
// only values inlined, and only after non-negative validation; everything
// else is a named parameter marker.
func (b *Builder) Build() (Statement, error) {
	if b.base == "" {
		return Statement{}, fmt.Errorf("query builder: empty template")
	}

	conds := make([]string, 0, len(b.literals)+len(b.preds))
	for _, lit := range b.literals {
		if strings.HasSuffix(lit, "IN ()") {
			return Statement{}, fmt.Errorf("query builder: IN predicate with no values")
		}
		conds = append(conds, lit)
	}
	for _, p := range b.preds {
		conds = append(conds, fmt.Sprintf("%s %s :%s", p.Column, p.Operator, p.Param))
	}

	var sb strings.Builder
	sb.WriteString(b.base)

	if len(conds) > 0 {
		if whereDetect.MatchString(b.base) {
			sb.WriteString(" AND ")
		} else {
			sb.WriteString(" WHERE ")
		}
		sb.WriteString(strings.Join(conds, " AND "))
	}

	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}

	if b.paginate {
		if b.limit < 0 || b.offset < 0 {
			return Statement{}, fmt.Errorf("query builder: limit and offset must be non-negative")
		}
		// Safe to inline: both values passed integer validation above and
		// were never strings.
		fmt.Fprintf(&sb, " LIMIT %d OFFSET %d", b.limit, b.offset)
	}

	params := make(map[string]any, len(b.params))
	for k, v := range b.params {
		params[k] = v
	}
	return Statement{SQL: sb.String(), Params: params}, nil
}
