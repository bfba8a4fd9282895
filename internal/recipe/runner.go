package recipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Cyclone1070/rig/internal/executor"
	"github.com/Cyclone1070/rig/internal/rigerr"
)

// Executor is the part of the execution engine a recipe needs.
type Executor interface {
	Execute(ctx context.Context, spec executor.CommandSpec) (*executor.Result, error)
	Which(name string) (string, bool)
}

// Console receives the runner's progress notices.
type Console interface {
	Info(msg string)
	Success(msg string)
	Warn(headline, detail string)
	Error(msg string)
}

// InstallerResult is the outcome of running one recipe.
type InstallerResult struct {
	Name    string
	Success bool
	Skipped bool
	Message string
	// Error, Kind and Suggestion describe the failing step.
	Error      error
	Kind       rigerr.Kind
	Suggestion string
}

// Runner executes recipes step by step.
type Runner struct {
	exec    Executor
	console Console
}

// NewRunner creates a Runner with injected dependencies.
func NewRunner(exec Executor, console Console) *Runner {
	if exec == nil {
		panic("exec is required")
	}
	if console == nil {
		panic("console is required")
	}
	return &Runner{exec: exec, console: console}
}

// IsInstalled reports whether the recipe's installed check passes. Recipes
// without a check are never considered installed.
func (r *Runner) IsInstalled(ctx context.Context, rec *Recipe) bool {
	if len(rec.InstalledCheck) == 0 {
		return false
	}
	// Avoid logging a failure for a program that is simply absent.
	if _, ok := r.exec.Which(rec.InstalledCheck[0]); !ok {
		return false
	}
	if len(rec.InstalledCheck) == 1 {
		return true
	}
	res, err := r.exec.Execute(ctx, executor.Command(rec.InstalledCheck...).Captured().Unchecked())
	return err == nil && res.Success()
}

// Run executes rec. It stops at the first failing step and never returns
// an error; failures are reported through the result.
func (r *Runner) Run(ctx context.Context, rec *Recipe) InstallerResult {
	if r.IsInstalled(ctx, rec) {
		msg := rec.Name + " is already installed"
		r.console.Info(msg)
		return InstallerResult{Name: rec.Name, Success: true, Skipped: true, Message: msg}
	}

	r.console.Info("Installing " + rec.Name)
	for i, step := range rec.Steps {
		if err := ctx.Err(); err != nil {
			return r.failed(rec, fmt.Errorf("step %d: %w", i+1, err))
		}
		if _, err := r.exec.Execute(ctx, step); err != nil {
			return r.failed(rec, fmt.Errorf("step %d (%s): %w", i+1, step.String(), err))
		}
	}

	msg := rec.SuccessMessage
	if msg == "" {
		msg = rec.Name + " installed"
	}
	r.console.Success(msg)
	if rec.Notice != "" {
		r.console.Warn(rec.Notice, "")
	}
	return InstallerResult{Name: rec.Name, Success: true, Message: msg}
}

func (r *Runner) failed(rec *Recipe, err error) InstallerResult {
	result := InstallerResult{
		Name:    rec.Name,
		Message: "Failed to install " + rec.Name,
		Error:   err,
	}

	var rigErr *rigerr.Error
	switch {
	case errors.As(err, &rigErr):
		result.Kind = rigErr.Kind
		result.Suggestion = rigErr.Suggestion
		r.console.Error(fmt.Sprintf("%s: %s", result.Message, rigErr.Message))
	case errors.Is(err, executor.ErrElevationUnavailable):
		result.Suggestion = "Install sudo and make sure your user may use it."
		r.console.Error(result.Message + ": " + err.Error())
	default:
		r.console.Error(result.Message + ": " + err.Error())
	}
	if result.Suggestion != "" {
		r.console.Warn("Suggestion", result.Suggestion)
	}
	return result
}
