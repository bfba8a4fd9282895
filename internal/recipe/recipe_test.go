package recipe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Testdata(t *testing.T) {
	rec, err := Load(filepath.Join("testdata", "fail2ban.toml"))

	require.NoError(t, err)
	assert.Equal(t, "Fail2ban", rec.Name)
	assert.Equal(t, []string{"fail2ban-client", "--version"}, rec.InstalledCheck)
	require.Len(t, rec.Steps, 2)

	install := rec.Steps[0]
	assert.Equal(t, []string{"apt", "install", "-y", "fail2ban"}, install.Argv)
	assert.True(t, install.Elevate)
	assert.True(t, install.CheckExitCode())
	assert.Equal(t, "Installing Fail2ban", install.Description)

	configure := rec.Steps[1]
	assert.False(t, configure.Elevate)
	assert.Equal(t, 30*time.Second, configure.Timeout)
	assert.Contains(t, rec.Notice, "NOT started")
}

func TestParse_CheckFalseIgnoresExitCode(t *testing.T) {
	rec, err := Parse([]byte(`
name = "Probe"
[[step]]
argv = ["systemctl", "is-active", "ssh"]
check = false
capture = true
`))

	require.NoError(t, err)
	assert.False(t, rec.Steps[0].CheckExitCode())
	assert.True(t, rec.Steps[0].Capture)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"malformed", "name = ", "toml"},
		{"missing name", "[[step]]\nargv = [\"true\"]\n", "name is required"},
		{"no steps", "name = \"x\"\n", "has no steps"},
		{"empty argv", "name = \"x\"\n[[step]]\nargv = []\n", "argv must name a program"},
		{"negative timeout", "name = \"x\"\n[[step]]\nargv = [\"true\"]\ntimeout_seconds = -1\n", "timeout_seconds"},
		{"unknown step key", "name = \"x\"\n[[step]]\nargv = [\"true\"]\nsudoo = true\n", "sudoo"},
		{"unknown top-level key", "name = \"x\"\nauthor = \"me\"\n[[step]]\nargv = [\"true\"]\n", "author"},
		{"wrong type", "name = \"x\"\n[[step]]\nargv = \"true\"\n", "invalid step"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse([]byte(tt.input))

			require.Error(t, err)
			assert.Nil(t, rec)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecodeStep(t *testing.T) {
	dto, err := DecodeStep(map[string]any{
		"argv":            []any{"curl", "-fsSL", "https://example.com"},
		"sudo":            false,
		"timeout_seconds": int64(5),
	})

	require.NoError(t, err)
	assert.Nil(t, dto.Check)
	spec := dto.Spec()
	assert.Equal(t, []string{"curl", "-fsSL", "https://example.com"}, spec.Argv)
	assert.Equal(t, 5*time.Second, spec.Timeout)
	assert.True(t, spec.CheckExitCode())
}
