package executor

import (
	"errors"
	"fmt"
	"io/fs"
	"os/exec"

	"github.com/Cyclone1070/rig/internal/rigerr"
)

// classify logs a failed invocation and maps it onto the error taxonomy.
// Categories are checked in priority order: missing program, network,
// elevated refusal, package-manager lock, timeout, then generic.
func (e *Executor) classify(inv *invocation, result *Result, err error) *rigerr.Error {
	var output string
	exit := -1
	if result != nil {
		output = result.Output
		exit = result.ExitCode
	}
	timedOut := errors.Is(err, ErrTimeout)
	cmdStr := inv.String()

	e.logFailure(cmdStr, inv.spec.Program(), exit, output, err)

	var classified *rigerr.Error
	// Timeout is checked inside the network rule and lock ahead of the
	// package-manager exit-1 rule, so neither is shadowed by the broader case.
	switch {
	case isNotFound(err) || (inv.spec.Elevate && MentionsCommandNotFound(output)):
		classified = rigerr.NewCommandNotFound(inv.spec.Program())
	case inv.network && timedOut:
		classified = rigerr.NewTimeout("Network operation timed out: "+cmdStr, FirstURL(inv.spec.Argv))
	case inv.network:
		classified = rigerr.NewNetwork("Network operation failed: "+cmdStr, FirstURL(inv.spec.Argv))
	case inv.spec.Elevate && exit == 1 && !inv.packageManager:
		classified = rigerr.NewPermission("Permission denied: "+cmdStr, inv.spec.String())
	case inv.packageManager && MentionsLock(output):
		pkg := PackageName(inv.argv)
		classified = rigerr.NewPackageManagerLocked(lockMessage(pkg), pkg)
		classified.ExitCode = exit
	case inv.spec.Elevate && exit == 1:
		classified = rigerr.NewPermission("Permission denied: "+cmdStr, inv.spec.String())
	case timedOut:
		classified = rigerr.NewGeneric("Command timed out: "+cmdStr, exit, output)
	default:
		classified = rigerr.NewGeneric(fmt.Sprintf("Command failed: %s (exit code %d)", cmdStr, exit), exit, output)
	}
	return classified.WithCause(err).WithOutput(output)
}

// logFailure writes the failure to the log in the same shape whatever its
// category.
func (e *Executor) logFailure(cmdStr, program string, exit int, output string, err error) {
	var msg string
	switch {
	case isNotFound(err):
		msg = "Command not found: " + program
	case errors.Is(err, ErrTimeout):
		msg = "Command timed out: " + cmdStr
	default:
		msg = fmt.Sprintf("Command failed: %s\nExit code: %d", cmdStr, exit)
		if output != "" {
			msg += "\nOutput: " + output
		}
	}
	e.logger.Log("error", msg)
}

func lockMessage(pkg string) string {
	if pkg == "" {
		return "Package manager is locked by another process"
	}
	return "Package manager is locked by another process while installing " + pkg
}

// isNotFound reports whether err means the program does not exist.
func isNotFound(err error) bool {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) && cmdErr.Stage != StageStart {
		return false
	}
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
