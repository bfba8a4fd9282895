package config

import (
	"fmt"
	"strings"
)

var validLogLevels = []string{"debug", "info", "warn", "error"}

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Runner validation - Elevation
	if strings.TrimSpace(c.Runner.ElevationCommand) == "" {
		errs = append(errs, "runner.elevation_command must not be empty")
	}
	if c.Runner.ElevationProbeTimeoutMs < 1 {
		errs = append(errs, "runner.elevation_probe_timeout_ms must be >= 1")
	}
	if c.Runner.ElevationLookupTimeoutMs < 1 {
		errs = append(errs, "runner.elevation_lookup_timeout_ms must be >= 1")
	}

	// Runner validation - Retry
	if c.Runner.RetryAttempts < 1 {
		errs = append(errs, "runner.retry_attempts must be >= 1")
	}
	if c.Runner.RetryBackoffMs < 0 {
		errs = append(errs, "runner.retry_backoff_ms must be >= 0")
	}

	// Runner validation - Output
	if c.Runner.DrainTimeoutMs < 1 {
		errs = append(errs, "runner.drain_timeout_ms must be >= 1")
	}
	if c.Runner.MaxCapturedOutputSize < 1 {
		errs = append(errs, "runner.max_captured_output_size must be >= 1")
	}

	// Log validation
	if strings.TrimSpace(c.Log.File) == "" && strings.TrimSpace(c.Log.FallbackFile) == "" {
		errs = append(errs, "log.file or log.fallback_file must be set")
	}
	if !isValidLogLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level must be one of %v", validLogLevels))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	for _, l := range validLogLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}
