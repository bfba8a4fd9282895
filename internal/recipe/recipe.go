// Package recipe loads declarative installer recipes and runs their steps
// through the execution engine.
package recipe

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Cyclone1070/rig/internal/executor"
	"github.com/mitchellh/mapstructure"
)

// Recipe is an ordered list of commands that installs one tool.
type Recipe struct {
	Name        string
	Description string
	// InstalledCheck, when set, is run before the steps. A zero exit means the
	// tool is already present and the recipe is skipped.
	InstalledCheck []string
	// SuccessMessage replaces the default completion message.
	SuccessMessage string
	// Notice is shown to the operator after a successful run.
	Notice string
	Steps  []executor.CommandSpec
}

// fileRecipe mirrors the TOML layout. Steps stay untyped so each table can
// be decoded and validated on its own.
type fileRecipe struct {
	Name           string           `toml:"name"`
	Description    string           `toml:"description"`
	InstalledCheck []string         `toml:"installed_check"`
	SuccessMessage string           `toml:"success_message"`
	Notice         string           `toml:"notice"`
	Steps          []map[string]any `toml:"step"`
}

// StepDTO is the decoded form of one [[step]] table.
type StepDTO struct {
	Argv           []string `mapstructure:"argv"`
	Sudo           bool     `mapstructure:"sudo"`
	Capture        bool     `mapstructure:"capture"`
	Check          *bool    `mapstructure:"check"`
	Description    string   `mapstructure:"description"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
}

// Validate checks the step for structural errors.
func (s StepDTO) Validate() error {
	if len(s.Argv) == 0 || strings.TrimSpace(s.Argv[0]) == "" {
		return errors.New("argv must name a program")
	}
	if s.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must be >= 0, got %d", s.TimeoutSeconds)
	}
	return nil
}

// Spec converts the step into a CommandSpec. Exit codes are checked unless
// check is explicitly false.
func (s StepDTO) Spec() executor.CommandSpec {
	spec := executor.Command(s.Argv...)
	spec.Elevate = s.Sudo
	spec.Capture = s.Capture
	spec.IgnoreExitCode = s.Check != nil && !*s.Check
	spec.Description = s.Description
	spec.Timeout = time.Duration(s.TimeoutSeconds) * time.Second
	return spec
}

// DecodeStep decodes a raw step table into a validated StepDTO.
// Unknown keys are rejected.
func DecodeStep(raw map[string]any) (StepDTO, error) {
	var dto StepDTO
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &dto,
		ErrorUnused: true,
	})
	if err != nil {
		return StepDTO{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return StepDTO{}, fmt.Errorf("invalid step: %w", err)
	}
	if err := dto.Validate(); err != nil {
		return StepDTO{}, fmt.Errorf("invalid step: %w", err)
	}
	return dto, nil
}

// Load reads and parses the recipe file at path.
func Load(path string) (*Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("recipe load failed (%s): %w", path, err)
	}
	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("recipe parse failed (%s): %w", path, err)
	}
	return r, nil
}

// Parse decodes a TOML recipe.
func Parse(data []byte) (*Recipe, error) {
	var raw fileRecipe
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, key := range undecoded {
			// Step tables are checked by DecodeStep.
			if len(key) > 0 && key[0] == "step" {
				continue
			}
			keys = append(keys, key.String())
		}
		if len(keys) > 0 {
			return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}

	name := strings.TrimSpace(raw.Name)
	if name == "" {
		return nil, errors.New("recipe name is required")
	}
	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("recipe %q has no steps", name)
	}

	r := &Recipe{
		Name:           name,
		Description:    strings.TrimSpace(raw.Description),
		InstalledCheck: raw.InstalledCheck,
		SuccessMessage: strings.TrimSpace(raw.SuccessMessage),
		Notice:         strings.TrimSpace(raw.Notice),
		Steps:          make([]executor.CommandSpec, 0, len(raw.Steps)),
	}
	for i, table := range raw.Steps {
		dto, err := DecodeStep(table)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		r.Steps = append(r.Steps, dto.Spec())
	}
	return r, nil
}
