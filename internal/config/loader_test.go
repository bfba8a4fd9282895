package config

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockFileSystem implements FileSystem for testing.
type MockFileSystem struct {
	HomeDir     string
	HomeDirErr  error
	Files       map[string][]byte
	ReadFileErr error
}

func (m *MockFileSystem) UserHomeDir() (string, error) {
	return m.HomeDir, m.HomeDirErr
}

func (m *MockFileSystem) ReadFile(path string) ([]byte, error) {
	if m.ReadFileErr != nil {
		return nil, m.ReadFileErr
	}
	data, ok := m.Files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

const (
	jsonPath = "/home/user/.config/rig/config.json"
	tomlPath = "/home/user/.config/rig/config.toml"
)

// --- HAPPY PATH TESTS ---

func TestLoad_NoConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files:   map[string][]byte{},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Runner.RetryAttempts)
	assert.Equal(t, 1000, cfg.Runner.RetryBackoffMs)
	assert.Equal(t, 2000, cfg.Runner.ElevationProbeTimeoutMs)
	assert.Equal(t, 1000, cfg.Runner.ElevationLookupTimeoutMs)
	assert.Equal(t, "sudo", cfg.Runner.ElevationCommand)
	assert.Equal(t, "/var/log/setup.log", cfg.Log.File)
}

func TestLoad_JSONPartialOverride_MergesWithDefaults(t *testing.T) {
	configJSON := `{"runner": {"retry_attempts": 5}}`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(configJSON),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Runner.RetryAttempts)         // Overridden
	assert.Equal(t, 1000, cfg.Runner.RetryBackoffMs)     // Default
	assert.Equal(t, "/var/log/setup.log", cfg.Log.File)  // Default
	assert.Equal(t, 1000, cfg.Runner.DrainTimeoutMs)     // Default
	assert.Equal(t, "sudo", cfg.Runner.ElevationCommand) // Default
	assert.False(t, cfg.Console.NoColor)                 // Default
}

func TestLoad_TOMLOverride(t *testing.T) {
	configTOML := `
[runner]
retry_backoff_ms = 250
elevation_command = "doas"

[log]
file = "/tmp/rig.log"

[console]
no_color = true
`
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			tomlPath: []byte(configTOML),
		},
	}
	loader := NewLoaderWithFS(fs)

	cfg, err := loader.Load()

	require.NoError(t, err)
	assert.Equal(t, 250, cfg.Runner.RetryBackoffMs)
	assert.Equal(t, "doas", cfg.Runner.ElevationCommand)
	assert.Equal(t, "/tmp/rig.log", cfg.Log.File)
	assert.True(t, cfg.Console.NoColor)
	assert.Equal(t, 3, cfg.Runner.RetryAttempts) // Default preserved
}

func TestLoad_TOMLWinsOverJSON(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			tomlPath: []byte("[runner]\nretry_attempts = 7\n"),
			jsonPath: []byte(`{"runner": {"retry_attempts": 9}}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Runner.RetryAttempts)
}

func TestLoad_EmptyConfigFile_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

// --- UNHAPPY PATH TESTS ---

func TestLoad_MalformedJSON_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{invalid json`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid")
}

func TestLoad_MalformedTOML_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			tomlPath: []byte("[runner\nretry_attempts = "),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestLoad_PermissionDenied_ReturnsError(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir:     "/home/user",
		ReadFileErr: os.ErrPermission,
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.True(t, errors.Is(err, os.ErrPermission))
}

func TestLoad_HomeDirError_ReturnsDefaults(t *testing.T) {
	fs := &MockFileSystem{
		HomeDirErr: errors.New("homeless"),
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Runner.RetryAttempts)
}

func TestLoad_NegativeValues_Rejected(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{"runner": {"retry_backoff_ms": -1}}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	assert.Error(t, err)
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "validation failed")
}

// --- EDGE CASE TESTS ---

func TestLoad_ExplicitZeroBackoff_Overrides(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{"runner": {"retry_backoff_ms": 0}}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Runner.RetryBackoffMs)
}

func TestLoad_UnknownFields_Ignored(t *testing.T) {
	fs := &MockFileSystem{
		HomeDir: "/home/user",
		Files: map[string][]byte{
			jsonPath: []byte(`{"runner": {"retry_attempts": 4}, "unknown_field": "ignored"}`),
		},
	}

	cfg, err := NewLoaderWithFS(fs).Load()

	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Runner.RetryAttempts)
}

func TestExpandHome(t *testing.T) {
	fs := &MockFileSystem{HomeDir: "/home/user"}

	assert.Equal(t, "/home/user/.setup.log", ExpandHome(fs, "~/.setup.log"))
	assert.Equal(t, "/home/user", ExpandHome(fs, "~"))
	assert.Equal(t, "/var/log/setup.log", ExpandHome(fs, "/var/log/setup.log"))
	assert.Equal(t, "~user/x", ExpandHome(fs, "~user/x"))

	broken := &MockFileSystem{HomeDirErr: errors.New("homeless")}
	assert.Equal(t, "~/.setup.log", ExpandHome(broken, "~/.setup.log"))
}
