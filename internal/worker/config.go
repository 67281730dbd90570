// Package worker provides background directory refresh processing.
package worker

import (
	"os"
	"time"
)

// RefreshConfig holds configuration for the scheduled directory refresh.
type RefreshConfig struct {
	// Interval between scheduled refreshes.
	// Default: 5 minutes
	Interval time.Duration

	// Timeout for a single refresh operation.
	// Default: 60 seconds
	Timeout time.Duration

	// InitialDelay before the first scheduled refresh, letting the API
	// warm the cache on demand first.
	// Default: 10 seconds
	InitialDelay time.Duration
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Interval:     5 * time.Minute,
		Timeout:      60 * time.Second,
		InitialDelay: 10 * time.Second,
	}
}

// RefreshConfigFromEnv builds a RefreshConfig from environment variables,
// falling back to defaults for anything unset or unparsable.
func RefreshConfigFromEnv() RefreshConfig {
	cfg := DefaultRefreshConfig()

	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Interval = d
		}
	}
	if raw := os.Getenv("REFRESH_TIMEOUT"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if raw := os.Getenv("REFRESH_INITIAL_DELAY"); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil && d >= 0 {
			cfg.InitialDelay = d
		}
	}

	return cfg
}
