package config

// Config holds all application configuration values.
// Defaults are set in DefaultConfig() and can be overridden via dotfile.
// NOTE: Values in config files override defaults, including explicit zero values.
// Missing keys are left at their default values.
type Config struct {
	Runner  RunnerConfig  `json:"runner" toml:"runner"`
	Log     LogConfig     `json:"log" toml:"log"`
	Console ConsoleConfig `json:"console" toml:"console"`
}

type RunnerConfig struct {
	// Elevation
	ElevationCommand         string `json:"elevation_command" toml:"elevation_command"`                   // Default: "sudo"
	ElevationProbeTimeoutMs  int    `json:"elevation_probe_timeout_ms" toml:"elevation_probe_timeout_ms"`   // Default: 2000
	ElevationLookupTimeoutMs int    `json:"elevation_lookup_timeout_ms" toml:"elevation_lookup_timeout_ms"` // Default: 1000

	// Network retry
	RetryAttempts  int `json:"retry_attempts" toml:"retry_attempts"`     // Default: 3
	RetryBackoffMs int `json:"retry_backoff_ms" toml:"retry_backoff_ms"` // Default: 1000

	// Output
	DrainTimeoutMs        int   `json:"drain_timeout_ms" toml:"drain_timeout_ms"`                 // Default: 1000
	MaxCapturedOutputSize int64 `json:"max_captured_output_size" toml:"max_captured_output_size"` // Default: 10 * 1024 * 1024 (10MB)
}

type LogConfig struct {
	File         string `json:"file" toml:"file"`                   // Default: "/var/log/setup.log"
	FallbackFile string `json:"fallback_file" toml:"fallback_file"` // Default: "~/.setup.log"
	Level        string `json:"level" toml:"level"`                 // Default: "debug"
}

type ConsoleConfig struct {
	NoColor bool `json:"no_color" toml:"no_color"` // Default: false
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Runner: RunnerConfig{
			ElevationCommand:         "sudo",
			ElevationProbeTimeoutMs:  2000,
			ElevationLookupTimeoutMs: 1000,
			RetryAttempts:            3,
			RetryBackoffMs:           1000,
			DrainTimeoutMs:           1000,
			MaxCapturedOutputSize:    10 * 1024 * 1024,
		},
		Log: LogConfig{
			File:         "/var/log/setup.log",
			FallbackFile: "~/.setup.log",
			Level:        "debug",
		},
	}
}
