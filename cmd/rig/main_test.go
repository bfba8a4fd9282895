package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Cyclone1070/rig/internal/config"
	"github.com/Cyclone1070/rig/internal/executor"
	"github.com/Cyclone1070/rig/internal/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	spawner *mocks.MockSpawner
	logger  *mocks.MockLogger
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	deps    Dependencies
}

func newTestEnv(spawner *mocks.MockSpawner) *testEnv {
	cfg := config.DefaultConfig()
	cfg.Console.NoColor = true
	env := &testEnv{
		spawner: spawner,
		logger:  &mocks.MockLogger{},
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
	}
	env.deps = Dependencies{
		Config:  cfg,
		Spawner: spawner,
		Logger:  env.logger,
		Stdin:   strings.NewReader(""),
		Stdout:  env.stdout,
		Stderr:  env.stderr,
		ExecutorOptions: []executor.Option{
			executor.WithSleep(func(context.Context, time.Duration) error { return nil }),
		},
	}
	return env
}

func TestRun_NoArgs_PrintsUsage(t *testing.T) {
	env := newTestEnv(mocks.NewMockSpawner())

	code := run(context.Background(), nil, env.deps)

	assert.Equal(t, exitFatal, code)
	assert.Contains(t, env.stderr.String(), "Usage:")
}

func TestRun_UnknownCommand(t *testing.T) {
	env := newTestEnv(mocks.NewMockSpawner())

	code := run(context.Background(), []string{"frobnicate"}, env.deps)

	assert.Equal(t, exitFatal, code)
	assert.Contains(t, env.stderr.String(), `unknown command "frobnicate"`)
}

func TestExec_Success(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Replies = []mocks.Reply{{Output: "v1.0\n"}}
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"exec", "--capture", "--", "tool", "--version"}, env.deps)

	assert.Equal(t, 0, code)
	assert.Equal(t, [][]string{{"tool", "--version"}}, spawner.Calls)
	assert.Equal(t, "v1.0\n", env.stdout.String())
}

func TestExec_SudoFlagElevates(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"exec", "--sudo", "--desc", "Updating", "--", "apt", "update"}, env.deps)

	assert.Equal(t, 0, code)
	assert.Equal(t, [][]string{{"sudo", "apt", "-qq", "update", "-o", "APT::Status-Fd=/dev/null"}}, spawner.Calls)
	assert.Contains(t, env.stdout.String(), "→ Updating")
	assert.True(t, env.logger.HasPrefix("CMD: sudo apt -qq update"))
}

func TestExec_NoCheckReturnsChildExitCode(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Replies = []mocks.Reply{{ExitCode: 3}}
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"exec", "--no-check", "--", "grep", "x"}, env.deps)

	assert.Equal(t, 3, code)
}

func TestExec_TaxonomyFailure(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.Replies = []mocks.Reply{{ExitCode: 6}}
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"exec", "--", "curl", "-L", "https://example.invalid/x"}, env.deps)

	assert.Equal(t, exitFailure, code)
	out := env.stdout.String()
	assert.Contains(t, out, "✖ [network] Network operation failed")
	assert.Contains(t, out, "URL: https://example.invalid/x")
	assert.Equal(t, 3, spawner.CallCount())
}

func TestExec_ElevationUnavailableIsFatal(t *testing.T) {
	spawner := mocks.NewMockSpawner()
	spawner.NonInteractiveExit = 1
	spawner.LookupExit = 1
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"exec", "--sudo", "--", "apt", "update"}, env.deps)

	assert.Equal(t, exitFatal, code)
	assert.Contains(t, env.stdout.String(), "sudo is required but not available")
	assert.Equal(t, 0, spawner.CallCount())
}

func TestExec_BadFlags(t *testing.T) {
	env := newTestEnv(mocks.NewMockSpawner())

	assert.Equal(t, exitFatal, run(context.Background(), []string{"exec", "--bogus", "--", "true"}, env.deps))
	assert.Equal(t, exitFatal, run(context.Background(), []string{"exec"}, env.deps))
	assert.Equal(t, exitFatal, run(context.Background(), []string{"exec", "--timeout", "-1s", "--", "true"}, env.deps))
}

func TestRecipe_RunsAndSummarizes(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.toml")
	require.NoError(t, os.WriteFile(ok, []byte(`
name = "Btop"
[[step]]
argv = ["apt", "install", "-y", "btop"]
sudo = true
`), 0o644))
	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte(`
name = "Broken"
[[step]]
argv = ["false"]
`), 0o644))

	spawner := mocks.NewMockSpawner()
	spawner.StartFunc = func(_ context.Context, argv []string, _ executor.ProcessOptions) (executor.Process, error) {
		if argv[0] == "false" {
			return &mocks.MockProcess{WaitFunc: func() error { return &mocks.ExitError{Code: 1} }}, nil
		}
		return &mocks.MockProcess{}, nil
	}
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"recipe", ok, broken}, env.deps)

	assert.Equal(t, exitFailure, code)
	out := env.stdout.String()
	assert.Contains(t, out, "✔ Btop: Btop installed")
	assert.Contains(t, out, "✖ Broken: Failed to install Broken")
	assert.Contains(t, out, "1 of 2 recipes failed")
}

func TestRecipe_InvalidFileIsFatal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("name = \n"), 0o644))
	spawner := mocks.NewMockSpawner()
	env := newTestEnv(spawner)

	code := run(context.Background(), []string{"recipe", path}, env.deps)

	assert.Equal(t, exitFatal, code)
	assert.Equal(t, 0, spawner.CallCount())
}

func TestElevation_Status(t *testing.T) {
	tests := []struct {
		name           string
		nonInteractive int
		lookup         int
		wantCode       int
		wantOutput     string
	}{
		{"passwordless", 0, 0, 0, "Elevation: passwordless"},
		{"password required", 1, 0, 0, "Elevation: password required"},
		{"unavailable", 1, 1, exitFailure, "Elevation: unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spawner := mocks.NewMockSpawner()
			spawner.NonInteractiveExit = tt.nonInteractive
			spawner.LookupExit = tt.lookup
			env := newTestEnv(spawner)

			code := run(context.Background(), []string{"elevation"}, env.deps)

			assert.Equal(t, tt.wantCode, code)
			assert.Contains(t, env.stdout.String(), tt.wantOutput)
		})
	}
}
