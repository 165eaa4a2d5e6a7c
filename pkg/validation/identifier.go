// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation utilities for security-critical operations.
//
// This package contains validators for user-provided inputs that are used in
// database queries. Using these validators prevents injection attacks even
// when values are only ever passed as bound parameters: rejecting malformed
// identifiers early keeps garbage out of cache keys and error logs too.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

// identifierPattern matches valid roadmap external identifiers.
// Allows: letters, digits, then dots, underscores and hyphens
// (covers Clarity-style IDs like PTF000109, PROG000328, PR00003652).
// Max length: 64 characters.
var identifierPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._\-]{0,63}$`)

// ValidateIdentifier validates a portfolio/program/region identifier before it
// is bound into a warehouse query or folded into a cache key.
//
// Valid identifiers:
//   - 1-64 characters
//   - Letters A-Z a-z and digits 0-9
//   - Dots (.), underscores (_) and hyphens (-) after the first character
//
// Returns an error if the identifier is invalid. The error never echoes the
// offending value; callers surfacing errors to clients report only the field
// name and reason.
//
// Example:
//
//	if err := validation.ValidateIdentifier(portfolioID); err != nil {
//	    return nil, fmt.Errorf("invalid portfolio_id: %w", err)
//	}
//	// Safe to bind as a named parameter
func ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("identifier cannot be empty")
	}

	if !identifierPattern.MatchString(id) {
		return fmt.Errorf("invalid identifier format (must be 1-64 alphanumeric chars, dots, underscores, or hyphens)")
	}

	return nil
}

// ValidateIdentifiers validates multiple identifiers.
// Returns an error naming the count of invalid entries if any fail validation.
func ValidateIdentifiers(ids []string) error {
	invalid := 0
	for _, id := range ids {
		if err := ValidateIdentifier(id); err != nil {
			invalid++
		}
	}

	if invalid > 0 {
		return fmt.Errorf("%d of %d identifiers failed validation", invalid, len(ids))
	}
	return nil
}

// SanitizeIdentifier normalizes and validates an identifier.
// Returns the trimmed identifier if valid, or an error if invalid.
func SanitizeIdentifier(id string) (string, error) {
	normalized := strings.TrimSpace(id)
	if err := ValidateIdentifier(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}
