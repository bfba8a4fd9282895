package mocks

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"slices"
	"sync"

	"github.com/Cyclone1070/rig/internal/executor"
)

// ExitError mimics *exec.ExitError for scripted processes.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string { return fmt.Sprintf("exit status %d", e.Code) }
func (e *ExitError) ExitCode() int { return e.Code }

// MockProcess implements executor.Process.
type MockProcess struct {
	WaitFunc func() error
}

func (p *MockProcess) Wait() error {
	if p.WaitFunc != nil {
		return p.WaitFunc()
	}
	return nil
}

// Reply is a scripted outcome for one spawned command.
type Reply struct {
	Output   string
	ExitCode int
	StartErr error
}

// MockSpawner implements executor.Spawner with configurable behaviour.
// Elevation probes ("<elevator> -n true" and "which <elevator>") are answered
// from the Probe fields and recorded separately from real commands.
type MockSpawner struct {
	mu sync.Mutex

	// StartFunc handles every non-probe command. When nil, Replies are used
	// in order, repeating the last one.
	StartFunc    func(ctx context.Context, argv []string, opts executor.ProcessOptions) (executor.Process, error)
	Replies      []Reply
	LookPathFunc func(file string) (string, error)

	// NonInteractiveExit is the exit code of "sudo -n true".
	NonInteractiveExit int
	// LookupExit is the exit code of "which sudo".
	LookupExit int

	Calls      [][]string
	Options    []executor.ProcessOptions
	ProbeCalls [][]string
}

// NewMockSpawner creates a spawner with passwordless elevation whose
// commands succeed silently.
func NewMockSpawner() *MockSpawner {
	return &MockSpawner{}
}

func (m *MockSpawner) Start(ctx context.Context, argv []string, opts executor.ProcessOptions) (executor.Process, error) {
	m.mu.Lock()
	if isProbe(argv) {
		m.ProbeCalls = append(m.ProbeCalls, slices.Clone(argv))
		code := m.NonInteractiveExit
		if argv[0] == "which" {
			code = m.LookupExit
		}
		m.mu.Unlock()
		return exited(code), nil
	}

	m.Calls = append(m.Calls, slices.Clone(argv))
	m.Options = append(m.Options, opts)
	attempt := len(m.Calls)
	startFunc := m.StartFunc
	m.mu.Unlock()

	if startFunc != nil {
		return startFunc(ctx, argv, opts)
	}
	return m.replyFor(attempt).start(opts)
}

func (m *MockSpawner) LookPath(file string) (string, error) {
	if m.LookPathFunc != nil {
		return m.LookPathFunc(file)
	}
	return "/usr/bin/" + file, nil
}

// CallCount returns the number of non-probe commands started.
func (m *MockSpawner) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

func (m *MockSpawner) replyFor(attempt int) Reply {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Replies) == 0 {
		return Reply{}
	}
	return m.Replies[min(attempt, len(m.Replies))-1]
}

func (r Reply) start(opts executor.ProcessOptions) (executor.Process, error) {
	if r.StartErr != nil {
		return nil, r.StartErr
	}
	if r.Output != "" && opts.Stdout != nil {
		_, _ = io.WriteString(opts.Stdout, r.Output)
	}
	return exited(r.ExitCode), nil
}

func exited(code int) *MockProcess {
	return &MockProcess{WaitFunc: func() error {
		if code == 0 {
			return nil
		}
		return &ExitError{Code: code}
	}}
}

func isProbe(argv []string) bool {
	if len(argv) == 3 && argv[1] == "-n" && argv[2] == "true" {
		return true
	}
	return len(argv) == 2 && argv[0] == "which"
}

// NotFound returns the error os/exec reports for a missing program.
func NotFound(name string) error {
	return &exec.Error{Name: name, Err: exec.ErrNotFound}
}
