package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "rig"
	// ConfigFile is the JSON config file name
	ConfigFile = "config.json"
	// ConfigFileTOML is the TOML config file name. It wins over ConfigFile when both exist.
	ConfigFileTOML = "config.toml"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Load reads configuration from ~/.config/rig/config.toml or ~/.config/rig/config.json
// and merges it with defaults. Dotfile values override defaults.
// Returns default config if no dotfile exists.
// Returns error only for parse errors, permission issues, or validation failures.
//
// NOTE: Keys are decoded directly over the default configuration, so explicit
// zero values (e.g., 0, false, "") in the file override defaults.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return cfg, nil // Use defaults if can't get home dir
	}

	dir := filepath.Join(homeDir, ".config", ConfigDir)

	found, err := l.decodeTOML(filepath.Join(dir, ConfigFileTOML), cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		if _, err := l.decodeJSON(filepath.Join(dir, ConfigFile), cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (l *Loader) decodeTOML(path string, cfg *Config) (bool, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return true, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return true, nil
}

func (l *Loader) decodeJSON(path string, cfg *Config) (bool, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return true, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return true, nil
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(fs FileSystem, path string) string {
	if path != "~" && !hasHomePrefix(path) {
		return path
	}
	home, err := fs.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	return filepath.Join(home, path[2:])
}

func hasHomePrefix(path string) bool {
	return len(path) >= 2 && path[0] == '~' && path[1] == '/'
}
