package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvAPIURL   = "TUICARDS_API_URL"
	EnvAPIToken = "TUICARDS_API_TOKEN"
	EnvLogLevel = "TUICARDS_LOG_LEVEL"
)

// LoadDotEnv loads variables from the given .env files, or ./.env when none
// are given. Missing files are ignored; variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// ApplyEnv overrides file values with TUICARDS_* environment variables.
func ApplyEnv(cfg *FileConfig) {
	if v, ok := os.LookupEnv(EnvAPIURL); ok && v != "" {
		cfg.API.BaseURL = &v
	}
	if v, ok := os.LookupEnv(EnvAPIToken); ok && v != "" {
		cfg.API.Token = &v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		cfg.Log.Level = &v
	}
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
