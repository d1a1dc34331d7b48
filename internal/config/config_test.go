package config

import (
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allConfigKeys lists every CREDCACHE_ env var that Load() reads.
var allConfigKeys = []string{
	"CREDCACHE_DB_PATH",
	"CREDCACHE_LOG_LEVEL",
}

// isolateConfigEnv saves and unsets all CREDCACHE_ env vars so tests don't
// inherit values from the host environment.
// t.Cleanup restores original values after the test.
func isolateConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range allConfigKeys {
		if orig, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, orig) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestLoad_Success(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CREDCACHE_DB_PATH", "/tmp/test.db")
	t.Setenv("CREDCACHE_LOG_LEVEL", "debug")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.DBPath)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Defaults(t *testing.T) {
	isolateConfigEnv(t)

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "credential.db", cfg.DBPath)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_EmptyDBPathUsesDefault(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CREDCACHE_DB_PATH", "")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, DatabaseName, cfg.DBPath)
}

func TestLoad_LogLevels(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{" warn ", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			isolateConfigEnv(t)
			t.Setenv("CREDCACHE_LOG_LEVEL", tt.in)

			cfg, err := Load()

			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.LogLevel)
		})
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	isolateConfigEnv(t)
	t.Setenv("CREDCACHE_LOG_LEVEL", "verbose")

	cfg, err := Load()

	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "CREDCACHE_LOG_LEVEL")
}

func TestDatabaseConstants(t *testing.T) {
	assert.Equal(t, "credential.db", DatabaseName)
	assert.Equal(t, 1, DatabaseVersion)
}
