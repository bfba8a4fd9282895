package executor

import (
	"slices"
	"strings"
	"time"
)

// CommandSpec describes one command to run.
// The zero value of every flag is the common case: unelevated, streamed to
// the terminal, exit code checked.
type CommandSpec struct {
	// Argv is the program followed by its arguments.
	Argv []string
	// Elevate runs the command through the elevation mechanism (sudo).
	Elevate bool
	// Capture merges stderr into stdout and returns it in Result.Output
	// instead of showing it live.
	Capture bool
	// IgnoreExitCode disables the non-zero exit check.
	IgnoreExitCode bool
	// Description is shown to the operator before the command runs.
	Description string
	// Timeout bounds a single attempt. Zero means no bound.
	Timeout time.Duration
}

// Command returns a spec for argv with default flags.
func Command(argv ...string) CommandSpec {
	return CommandSpec{Argv: argv}
}

// Elevated returns a copy of s that runs with elevation.
func (s CommandSpec) Elevated() CommandSpec {
	s.Argv = slices.Clone(s.Argv)
	s.Elevate = true
	return s
}

// Captured returns a copy of s that captures combined output.
func (s CommandSpec) Captured() CommandSpec {
	s.Argv = slices.Clone(s.Argv)
	s.Capture = true
	return s
}

// Unchecked returns a copy of s that tolerates non-zero exit codes.
func (s CommandSpec) Unchecked() CommandSpec {
	s.Argv = slices.Clone(s.Argv)
	s.IgnoreExitCode = true
	return s
}

// Describe returns a copy of s with an operator-facing description.
func (s CommandSpec) Describe(description string) CommandSpec {
	s.Argv = slices.Clone(s.Argv)
	s.Description = description
	return s
}

// WithTimeout returns a copy of s bounded by d per attempt.
func (s CommandSpec) WithTimeout(d time.Duration) CommandSpec {
	s.Argv = slices.Clone(s.Argv)
	s.Timeout = d
	return s
}

// CheckExitCode reports whether a non-zero exit code is a failure.
func (s CommandSpec) CheckExitCode() bool {
	return !s.IgnoreExitCode
}

// Program returns the program name, or "" for an empty spec.
func (s CommandSpec) Program() string {
	if len(s.Argv) == 0 {
		return ""
	}
	return s.Argv[0]
}

// String returns the argument vector joined by spaces.
func (s CommandSpec) String() string {
	return strings.Join(s.Argv, " ")
}

// Result represents the outcome of one Execute call.
type Result struct {
	// Argv is the resolved argument vector actually run, including any
	// elevation prefix and injected quiet flags.
	Argv []string
	// ExitCode of the final attempt.
	ExitCode int
	// Output holds combined stdout/stderr when it was captured.
	Output string
	// Captured reports whether Output was collected.
	Captured bool
	// Truncated reports whether captured output exceeded the size limit.
	Truncated bool
	// Attempts is the number of times the process was run.
	Attempts int
}

// Success reports whether the command exited with code zero.
func (r *Result) Success() bool {
	return r.ExitCode == 0
}

// outputMode selects how the child's standard streams are wired.
type outputMode int

const (
	// modeInherit connects stdin/stdout/stderr to the terminal.
	modeInherit outputMode = iota
	// modeCapture merges stdout and stderr into one collected blob.
	modeCapture
	// modeStream keeps stdin on the terminal and drains merged output line by line.
	modeStream
)

func (m outputMode) String() string {
	switch m {
	case modeCapture:
		return "capture"
	case modeStream:
		return "stream"
	default:
		return "inherit"
	}
}

// selectMode picks exactly one I/O strategy per invocation.
func selectMode(elevated, packageManager, capture bool) outputMode {
	switch {
	case capture:
		return modeCapture
	case elevated && packageManager:
		return modeStream
	default:
		return modeInherit
	}
}
