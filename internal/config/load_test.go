package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tests use t.Setenv, so none of them run in parallel.

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Server.LogLevel)
	assert.False(t, cfg.Server.RequireIdentity)

	assert.Equal(t, "postgres://localhost:5432/dispatch", cfg.Database.URL)

	assert.Equal(t, 5*time.Second, cfg.Dispatch.PollInterval)
	assert.Equal(t, 5, cfg.Dispatch.BatchSize)
	assert.Equal(t, 30*time.Minute, cfg.Dispatch.StuckAge)

	assert.Empty(t, cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.Model)
	assert.Equal(t, 3, cfg.LLM.MaxRetries)
	assert.Equal(t, 2, cfg.LLM.RetryDelaySeconds)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DISPATCH_DATABASE_URL", "postgres://db:5432/dispatch")
	t.Setenv("DISPATCH_SERVER_PORT", "9090")
	t.Setenv("DISPATCH_SERVER_LOG_LEVEL", "debug")
	t.Setenv("DISPATCH_SERVER_REQUIRE_IDENTITY", "true")
	t.Setenv("DISPATCH_DISPATCH_POLL_INTERVAL", "250ms")
	t.Setenv("DISPATCH_DISPATCH_BATCH_SIZE", "20")
	t.Setenv("DISPATCH_DISPATCH_STUCK_AGE", "1h")
	t.Setenv("DISPATCH_LLM_API_KEY", "test-key")
	t.Setenv("DISPATCH_LLM_MODEL", "gemini-2.0-pro")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.True(t, cfg.Server.RequireIdentity)
	assert.Equal(t, "postgres://db:5432/dispatch", cfg.Database.URL)
	assert.Equal(t, 250*time.Millisecond, cfg.Dispatch.PollInterval)
	assert.Equal(t, 20, cfg.Dispatch.BatchSize)
	assert.Equal(t, time.Hour, cfg.Dispatch.StuckAge)
	assert.Equal(t, "test-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.0-pro", cfg.LLM.Model)
}

func TestLoad_ValidationFailures(t *testing.T) {
	t.Run("missing database URL", func(t *testing.T) {
		t.Setenv("DISPATCH_DATABASE_URL", "")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("bad log level", func(t *testing.T) {
		t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch")
		t.Setenv("DISPATCH_SERVER_LOG_LEVEL", "verbose")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch")
		t.Setenv("DISPATCH_SERVER_PORT", "70000")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "invalid configuration")
	})

	t.Run("zero batch size", func(t *testing.T) {
		t.Setenv("DISPATCH_DATABASE_URL", "postgres://localhost:5432/dispatch")
		t.Setenv("DISPATCH_DISPATCH_BATCH_SIZE", "0")

		cfg, err := Load()
		assert.Nil(t, cfg)
		assert.ErrorContains(t, err, "invalid configuration")
	})
}
