// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"time"

	dbsql "github.com/databricks/databricks-sql-go"
)

// Config holds Databricks SQL warehouse connection settings.
type Config struct {
	Hostname    string
	HTTPPath    string
	AccessToken string
	Port        int
	Catalog     string
	Schema      string

	// QueryTimeout bounds each Execute call. Default 30s.
	QueryTimeout time.Duration
}

// DatabricksClient implements Client over the Databricks SQL driver.
//
// The driver speaks database/sql, so the connection pool, statement
// lifecycle and named-parameter binding all follow stdlib semantics.
// Catalog and schema are set as the session's initial namespace, which is
// why templates reference bare table names.
type DatabricksClient struct {
	db      *sql.DB
	timeout time.Duration
}

// NewDatabricksClient builds the client. It does not dial: connections are
// established lazily by the pool, and startup connectivity is checked via
// Ping by the composition root.
func NewDatabricksClient(cfg Config) (*DatabricksClient, error) {
	if cfg.Hostname == "" || cfg.HTTPPath == "" || cfg.AccessToken == "" {
		return nil, errors.New("databricks hostname, http path and access token are required")
	}
	if cfg.Port == 0 {
		cfg.Port = 443
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 30 * time.Second
	}

	connector, err := dbsql.NewConnector(
		dbsql.WithServerHostname(cfg.Hostname),
		dbsql.WithHTTPPath(cfg.HTTPPath),
		dbsql.WithAccessToken(cfg.AccessToken),
		dbsql.WithPort(cfg.Port),
		dbsql.WithInitialNamespace(cfg.Catalog, cfg.Schema),
	)
	if err != nil {
		return nil, fmt.Errorf("build databricks connector: %w", err)
	}

	return &DatabricksClient{
		db:      sql.OpenDB(connector),
		timeout: cfg.QueryTimeout,
	}, nil
}

// Execute runs a statement with named parameters under the configured
// timeout and materializes every row into a map.
func (c *DatabricksClient) Execute(ctx context.Context, query string, params map[string]any) ([]Row, error) {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := make([]any, 0, len(params))
	for name, value := range params {
		args = append(args, dbsql.Parameter{Name: name, Value: value})
	}

	rows, err := c.db.QueryContext(opCtx, query, args...)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}

	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classify(err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Ping verifies connectivity.
func (c *DatabricksClient) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.db.PingContext(opCtx); err != nil {
		return classify(err)
	}
	return nil
}

// Close releases the pool.
func (c *DatabricksClient) Close() error {
	return c.db.Close()
}

// classify wraps a driver error with the matching sentinel category.
// Deadline errors become ErrTimeout, transport errors ErrConnection,
// everything else ErrQuery.
func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	case isTransport(err):
		return fmt.Errorf("%w: %v", ErrConnection, err)
	default:
		return fmt.Errorf("%w: %v", ErrQuery, err)
	}
}

func isTransport(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr) || errors.Is(err, sql.ErrConnDone)
}
