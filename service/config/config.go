package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables.
// All required fields are validated at startup to ensure fail-fast behavior.
type Config struct {
	// Logging
	LogLevel string

	// Indexer API configuration
	IndexerBaseURL   string
	IndexerProjectID string

	// Throttling and batching
	RequestInterval time.Duration
	BatchSize       int
	BatchPause      time.Duration
}

// Load reads configuration from environment variables, applying defaults for
// anything unset. It returns an error only when a value fails to parse;
// required-field checks live in Validate so callers can layer overrides
// (command-line flags) on top before validating.
func Load() (*Config, error) {
	cfg := &Config{}
	var errs []error

	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "info")

	cfg.IndexerBaseURL = getEnvOrDefault("INDEXER_BASE_URL", "https://cardano-mainnet.blockfrost.io/api/v0")

	cfg.IndexerProjectID = os.Getenv("INDEXER_PROJECT_ID")

	requestInterval, err := parseDuration("REQUEST_INTERVAL", "100ms")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.RequestInterval = requestInterval
	}

	batchSize, err := parseInt("BATCH_SIZE", 10)
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchSize = batchSize
	}

	batchPause, err := parseDuration("BATCH_PAUSE", "500ms")
	if err != nil {
		errs = append(errs, err)
	} else {
		cfg.BatchPause = batchPause
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration parsing failed: %v", errs)
	}

	return cfg, nil
}

// MustLoad is like Load followed by Validate, but panics if configuration is
// missing or invalid. Useful for initialization where misconfiguration should
// halt startup.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("invalid configuration: %v", err))
	}
	return cfg
}

// Validate checks if the configuration is valid.
// This is useful for testing configuration without loading from env.
func (c *Config) Validate() error {
	var errs []error

	if c.IndexerBaseURL == "" {
		errs = append(errs, fmt.Errorf("IndexerBaseURL is required"))
	}

	if c.IndexerProjectID == "" {
		errs = append(errs, fmt.Errorf("IndexerProjectID is required"))
	}

	if c.RequestInterval <= 0 {
		errs = append(errs, fmt.Errorf("RequestInterval must be positive"))
	}

	if c.BatchSize <= 0 {
		errs = append(errs, fmt.Errorf("BatchSize must be positive"))
	}

	// The inter-batch pause is a rate-limiting layer above the per-request
	// throttle; it only does its job when it outlasts the throttle interval.
	if c.BatchPause <= c.RequestInterval {
		errs = append(errs, fmt.Errorf("BatchPause (%v) must be greater than RequestInterval (%v)",
			c.BatchPause, c.RequestInterval))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errs)
	}

	return nil
}

// getEnvOrDefault returns the environment variable value or a default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseDuration parses a duration from an environment variable or uses a default.
func parseDuration(key, defaultValue string) (time.Duration, error) {
	value := getEnvOrDefault(key, defaultValue)
	duration, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return duration, nil
}

// parseInt parses an integer from an environment variable or uses a default.
func parseInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return result, nil
}
