// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package warehouse provides the analytical SQL warehouse client.
//
// The resolver depends only on the Client interface; the Databricks
// implementation lives behind it so tests can substitute a fake without a
// network. Errors are classified into three sentinel categories so callers
// can map them to transport-appropriate responses without inspecting
// driver-specific types.
package warehouse

import (
	"context"
	"errors"
)

// Row is one warehouse record, keyed by column name. Values are whatever
// the driver produced; consumers treat rows as opaque except for the join
// key columns they explicitly read.
type Row map[string]any

// Sentinel error categories for warehouse failures.
var (
	// ErrConnection marks transport-level failures: unreachable host,
	// refused connection, broken session.
	ErrConnection = errors.New("warehouse connection error")

	// ErrTimeout marks an exceeded query deadline.
	ErrTimeout = errors.New("warehouse query timeout")

	// ErrQuery marks a warehouse-side rejection: bad SQL, missing table,
	// permission failure.
	ErrQuery = errors.New("warehouse query error")
)

// Client executes parameterized statements against the warehouse.
//
// Implementations must be safe for concurrent use; the service shares one
// long-lived client across all requests. Errors wrap one of the sentinel
// categories above. No retries happen at this layer: retry policy belongs
// to callers who know whether a request is worth repeating.
type Client interface {
	// Execute runs a statement with named parameters and returns all rows.
	Execute(ctx context.Context, query string, params map[string]any) ([]Row, error)

	// Ping verifies connectivity with a trivial query.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close() error
}
