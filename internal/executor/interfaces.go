package executor

import (
	"context"
	"io"
)

// Logger is the durable log sink. Implementations must accept concurrent,
// line-oriented writes.
type Logger interface {
	Log(level, message string)
}

// Console is the operator-facing notice sink.
type Console interface {
	Warn(headline, detail string)
	Dim(msg string)
	DimError(line string)
	Step(description string)
}

// Process is a started child process.
type Process interface {
	Wait() error
}

// ProcessOptions wires a child's environment and standard streams.
// A nil stream is connected to the null device.
type ProcessOptions struct {
	Env    []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Spawner starts processes and resolves programs on PATH.
type Spawner interface {
	Start(ctx context.Context, argv []string, opts ProcessOptions) (Process, error)
	LookPath(file string) (string, error)
}
