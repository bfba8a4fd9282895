// Package rigerr defines the closed set of failure categories reported by the
// command execution engine. Every value carries a human message and a
// remediation suggestion computed at construction time.
package rigerr

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies a failure category.
type Kind string

const (
	KindNetwork              Kind = "network"
	KindPermission           Kind = "permission"
	KindPackageManagerLocked Kind = "package_manager_locked"
	KindCommandNotFound      Kind = "command_not_found"
	KindTimeout              Kind = "timeout"
	KindGeneric              Kind = "generic"
)

// Kinds lists every category in a stable order.
var Kinds = []Kind{
	KindNetwork,
	KindPermission,
	KindPackageManagerLocked,
	KindCommandNotFound,
	KindTimeout,
	KindGeneric,
}

// Error is a classified command failure.
// Only the context fields relevant to Kind are populated.
type Error struct {
	Kind       Kind
	Message    string
	Suggestion string

	URL      string // Network, Timeout
	Command  string // Permission, CommandNotFound
	Package  string // PackageManagerLocked
	ExitCode int    // Generic, Permission, PackageManagerLocked
	Output   string // captured stdout/stderr, when available

	Cause error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying process failure.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithCause attaches the raw failure and returns e.
func (e *Error) WithCause(cause error) *Error {
	e.Cause = cause
	return e
}

// WithOutput attaches captured output and returns e.
func (e *Error) WithOutput(output string) *Error {
	e.Output = output
	return e
}

// NewNetwork reports a failed download or index refresh.
func NewNetwork(message, url string) *Error {
	suggestion := "Check your internet connection and try again."
	if url != "" {
		suggestion += " URL: " + url
	}
	return &Error{Kind: KindNetwork, Message: message, Suggestion: suggestion, URL: url}
}

// NewPermission reports an elevated command that was refused.
func NewPermission(message, command string) *Error {
	suggestion := "This operation requires administrator privileges. Try running with sudo."
	if command != "" {
		suggestion = "This operation requires administrator privileges. Try running with sudo: " + withSudo(command)
	}
	return &Error{Kind: KindPermission, Message: message, Suggestion: suggestion, Command: command, ExitCode: 1}
}

// NewPackageManagerLocked reports a package-manager run blocked by a lock.
// pkg is optional.
func NewPackageManagerLocked(message, pkg string) *Error {
	parts := []string{"Try updating package lists: sudo apt update"}
	if pkg != "" {
		parts = append(parts,
			"Check if package exists: apt search "+pkg,
			"Try installing manually: sudo apt install "+pkg,
		)
	}
	parts = append(parts, "Check for locked files: sudo killall apt apt-get")
	return &Error{
		Kind:       KindPackageManagerLocked,
		Message:    message,
		Suggestion: strings.Join(parts, " | "),
		Package:    pkg,
	}
}

// NewCommandNotFound reports a program that does not exist on the host.
func NewCommandNotFound(command string) *Error {
	return &Error{
		Kind:       KindCommandNotFound,
		Message:    "Command not found: " + command,
		Suggestion: fmt.Sprintf("Install %s using your package manager (apt, yum, etc.)", command),
		Command:    command,
	}
}

// NewTimeout reports a network command that did not finish in time.
func NewTimeout(message, url string) *Error {
	suggestion := "The operation timed out. Retry later and check your internet connection."
	if url != "" {
		suggestion += " URL: " + url
	}
	return &Error{Kind: KindTimeout, Message: message, Suggestion: suggestion, URL: url}
}

// NewGeneric reports any failure that matched no other category.
func NewGeneric(message string, exitCode int, output string) *Error {
	return &Error{
		Kind:       KindGeneric,
		Message:    message,
		Suggestion: "Inspect the command output above and the setup log for details.",
		ExitCode:   exitCode,
		Output:     output,
	}
}

func withSudo(command string) string {
	if strings.HasPrefix(command, "sudo ") {
		return command
	}
	return "sudo " + command
}

// KindOf returns the category of err, or "" when err is not a taxonomy error.
func KindOf(err error) Kind {
	var rigErr *Error
	if errors.As(err, &rigErr) {
		return rigErr.Kind
	}
	return ""
}

// SuggestionOf returns the remediation suggestion carried by err, if any.
func SuggestionOf(err error) string {
	var rigErr *Error
	if errors.As(err, &rigErr) {
		return rigErr.Suggestion
	}
	return ""
}

// Is reports whether err is a taxonomy error of the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsRetryable reports whether a failure of this category is worth retrying.
// Only network-related categories qualify.
func IsRetryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindTimeout:
		return true
	default:
		return false
	}
}
