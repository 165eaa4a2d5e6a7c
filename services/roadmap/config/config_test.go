// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// Tests for environment configuration loading

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setRequiredEnv sets the minimum environment for Load to succeed.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABRICKS_SERVER_HOSTNAME", "adb-123.azuredatabricks.net")
	t.Setenv("DATABRICKS_HTTP_PATH", "/sql/1.0/warehouses/abc")
	t.Setenv("DATABRICKS_ACCESS_TOKEN", "dapi-test")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8092", cfg.Port)
	assert.Equal(t, int64(500*1024*1024), cfg.CacheMaxBytes)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 30*time.Second, cfg.QueryTimeout)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_MissingCredentialsFails(t *testing.T) {
	t.Setenv("DATABRICKS_SERVER_HOSTNAME", "")
	t.Setenv("DATABRICKS_HTTP_PATH", "")
	t.Setenv("DATABRICKS_ACCESS_TOKEN", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROADMAP_PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("ROADMAP_CACHE_TTL", "90s")
	t.Setenv("ROADMAP_CACHE_MAX_BYTES", "10485760")
	t.Setenv("ROADMAP_QUERY_TIMEOUT", "45s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, int64(10*1024*1024), cfg.CacheMaxBytes)
	assert.Equal(t, 45*time.Second, cfg.QueryTimeout)
}

func TestLoad_MalformedDurationKeepsDefault(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROADMAP_CACHE_TTL", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.CacheTTL)
}

func TestValidate_RejectsBadHTTPPath(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DATABRICKS_HTTP_PATH", "sql/no-leading-slash")

	_, err := Load()
	assert.Error(t, err)
}
