// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the roadmap service configuration from environment
// variables.
//
// Defaults suit local development; only the Databricks credentials are
// mandatory. Struct-tag validation catches misconfiguration at startup
// instead of at first request.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

// Config is the full service configuration.
type Config struct {
	// HTTP
	Port        string `validate:"required,numeric"`
	FrontendURL string `validate:"omitempty,url"`

	// Databricks SQL warehouse
	DatabricksHostname string `validate:"required,hostname_rfc1123"`
	DatabricksHTTPPath string `validate:"required,startswith=/"`
	DatabricksToken    string `validate:"required"`
	DatabricksCatalog  string
	DatabricksSchema   string
	QueryTimeout       time.Duration `validate:"min=1s,max=10m"`

	// Cache
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheDir      string        `validate:"required"`
	CacheMaxBytes int64         `validate:"min=1048576"`
	CacheTTL      time.Duration `validate:"min=1s"`

	// SQL template override directory. Empty means embedded templates only.
	SQLDir string
}

// Load reads configuration from the environment and validates it.
func Load() (Config, error) {
	cfg := Config{
		Port:          "8092",
		CacheDir:      "/var/lib/aleutian/roadmap-cache",
		CacheMaxBytes: 500 * 1024 * 1024,
		CacheTTL:      5 * time.Minute,
		QueryTimeout:  30 * time.Second,
	}

	cfg.DatabricksHostname = os.Getenv("DATABRICKS_SERVER_HOSTNAME")
	cfg.DatabricksHTTPPath = os.Getenv("DATABRICKS_HTTP_PATH")
	cfg.DatabricksToken = os.Getenv("DATABRICKS_ACCESS_TOKEN")
	cfg.DatabricksCatalog = os.Getenv("DATABRICKS_CATALOG")
	cfg.DatabricksSchema = os.Getenv("DATABRICKS_SCHEMA")

	if v := os.Getenv("ROADMAP_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.FrontendURL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.RedisDB = i
		}
	}
	if v := os.Getenv("ROADMAP_CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("ROADMAP_CACHE_MAX_BYTES"); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.CacheMaxBytes = i
		}
	}
	if v := os.Getenv("ROADMAP_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("ROADMAP_QUERY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.QueryTimeout = d
		}
	}
	if v := os.Getenv("ROADMAP_SQL_DIR"); v != "" {
		cfg.SQLDir = v
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration against the struct tags.
func (c Config) Validate() error {
	return validator.New().Struct(c)
}
