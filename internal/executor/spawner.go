package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
)

// OSProcess implements Process for real OS processes.
type OSProcess struct {
	Cmd *exec.Cmd
}

func (p *OSProcess) Wait() error {
	return p.Cmd.Wait()
}

// OSSpawner implements Spawner using os/exec.
type OSSpawner struct{}

// NewOSSpawner creates a new OSSpawner.
func NewOSSpawner() *OSSpawner {
	return &OSSpawner{}
}

// Start launches argv. Cancelling ctx kills the child.
func (s *OSSpawner) Start(ctx context.Context, argv []string, opts ProcessOptions) (Process, error) {
	if len(argv) == 0 {
		return nil, os.ErrInvalid
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = opts.Env
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &OSProcess{Cmd: cmd}, nil
}

// LookPath resolves file using exec.LookPath.
func (s *OSSpawner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// exitCode extracts the exit code from a Wait error.
// Errors that carry no exit code (e.g. killed by signal) yield -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	type exitCoder interface {
		ExitCode() int
	}
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return -1
}
