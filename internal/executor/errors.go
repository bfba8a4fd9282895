package executor

import (
	"errors"
	"fmt"
)

var (
	// ErrElevationUnavailable is returned when a command requires elevation but
	// no working elevation mechanism exists. It is a precondition failure, not
	// a classified command failure: nothing is spawned.
	ErrElevationUnavailable = errors.New("sudo is required but not available or not configured")

	// ErrEmptyCommand is returned when a CommandSpec has no program.
	ErrEmptyCommand = errors.New("command cannot be empty")

	// ErrTimeout is returned when a command exceeds its timeout.
	ErrTimeout = errors.New("command timeout")
)

// Failure stages reported by CommandError.
const (
	StageStart     = "start"
	StageExecution = "execution"
	StageExit      = "exit"
)

// CommandError represents a raw process failure (spawn, timeout, non-zero exit)
// before it is classified.
type CommandError struct {
	Cmd      string
	Stage    string
	ExitCode int
	Cause    error
}

func (e *CommandError) Error() string {
	if e.Stage == StageExit {
		return fmt.Sprintf("command %s exited with code %d", e.Cmd, e.ExitCode)
	}
	return fmt.Sprintf("command %s failed at %s: %v", e.Cmd, e.Stage, e.Cause)
}
func (e *CommandError) Unwrap() error { return e.Cause }
