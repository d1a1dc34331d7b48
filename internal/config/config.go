// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// DatabaseName is the fixed file name of the credential cache.
const DatabaseName = "credential.db"

// DatabaseVersion is the schema version the credential cache is expected to
// have. Bump it whenever the cache schema changes; any mismatch with the
// version stored in the file discards the cached rows.
const DatabaseVersion = 1

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath   string
	LogLevel slog.Level
}

// Load reads configuration from environment variables and returns a validated Config.
// Optional variables with defaults: CREDCACHE_DB_PATH (credential.db),
// CREDCACHE_LOG_LEVEL (info; one of debug, info, warn, error).
func Load() (*Config, error) {
	dbPath := DatabaseName
	if v, ok := os.LookupEnv("CREDCACHE_DB_PATH"); ok && v != "" {
		dbPath = v
	}

	logLevel := slog.LevelInfo
	if v, ok := os.LookupEnv("CREDCACHE_LOG_LEVEL"); ok && v != "" {
		parsed, err := parseLevel(v)
		if err != nil {
			return nil, err
		}
		logLevel = parsed
	}

	return &Config{
		DBPath:   dbPath,
		LogLevel: logLevel,
	}, nil
}

func parseLevel(v string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("CREDCACHE_LOG_LEVEL has invalid level %q", v)
	}
}
