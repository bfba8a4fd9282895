// Package executor runs external commands with optional privilege elevation,
// picks the right I/O strategy for each invocation, retries network-bound
// commands and turns process failures into rigerr taxonomy errors.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/Cyclone1070/rig/internal/config"
)

// Executor runs CommandSpecs. One Executor may be reused sequentially; it is
// not meant to run elevated commands concurrently because password prompts
// cannot be multiplexed.
type Executor struct {
	spawner Spawner
	logger  Logger
	console Console
	config  config.RunnerConfig

	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
	sleep   func(ctx context.Context, d time.Duration) error
	environ func() []string
}

// Option customizes an Executor.
type Option func(*Executor)

// WithStdio replaces the terminal streams inherited by child processes.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(e *Executor) {
		e.stdin = stdin
		e.stdout = stdout
		e.stderr = stderr
	}
}

// WithSleep replaces the retry backoff wait.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(e *Executor) {
		e.sleep = sleep
	}
}

// WithEnviron replaces the ambient environment source.
func WithEnviron(environ func() []string) Option {
	return func(e *Executor) {
		e.environ = environ
	}
}

// New creates an Executor with injected collaborators.
func New(cfg *config.Config, spawner Spawner, logger Logger, console Console, opts ...Option) *Executor {
	if cfg == nil {
		panic("cfg is required")
	}
	if spawner == nil {
		panic("spawner is required")
	}
	if logger == nil {
		panic("logger is required")
	}
	if console == nil {
		panic("console is required")
	}

	e := &Executor{
		spawner: spawner,
		logger:  logger,
		console: console,
		config:  cfg.Runner,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		sleep:   sleepContext,
		environ: os.Environ,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// invocation is the resolved form of one Execute call.
type invocation struct {
	spec           CommandSpec
	argv           []string
	env            []string
	mode           outputMode
	network        bool
	packageManager bool
}

func (inv *invocation) String() string {
	return strings.Join(inv.argv, " ")
}

// Execute runs spec to completion.
//
// On failure it returns a *rigerr.Error describing the category of the
// failure, or a wrapped ErrElevationUnavailable / ErrEmptyCommand when the
// command could not be attempted at all.
func (e *Executor) Execute(ctx context.Context, spec CommandSpec) (*Result, error) {
	if len(spec.Argv) == 0 || strings.TrimSpace(spec.Argv[0]) == "" {
		return nil, ErrEmptyCommand
	}

	// Retry eligibility is fixed by the caller's argv before any rewriting.
	inv := &invocation{
		spec:    spec,
		argv:    slices.Clone(spec.Argv),
		network: IsNetworkCommand(spec.Argv),
	}

	if spec.Elevate {
		if err := e.requireElevation(ctx); err != nil {
			return nil, err
		}
		if _, err := e.resolveElevated(spec.Program()); err != nil {
			cmdErr := &CommandError{Cmd: spec.Program(), Stage: StageStart, ExitCode: -1, Cause: err}
			return nil, e.classify(inv, &Result{Argv: inv.argv, ExitCode: -1}, cmdErr)
		}
		inv.argv = append([]string{e.config.ElevationCommand}, inv.argv...)
	}

	inv.packageManager = IsPackageManagerCommand(inv.argv, spec.Elevate)
	if inv.packageManager {
		inv.argv = NormalizeQuiet(inv.argv, spec.Elevate)
		inv.env = withPackageManagerEnv(e.environ())
	}
	inv.mode = selectMode(spec.Elevate, inv.packageManager, spec.Capture)

	e.logger.Log("info", "CMD: "+inv.String())
	if spec.Description != "" {
		e.console.Step(spec.Description)
	}

	var (
		result *Result
		err    error
	)
	if inv.network {
		result, err = Retry(ctx, e.retryPolicy(ctx, inv), func(attempt int) (*Result, error) {
			return e.runOnce(ctx, inv, attempt)
		})
	} else {
		result, err = e.runOnce(ctx, inv, 1)
	}
	if err != nil {
		return nil, e.classify(inv, result, err)
	}
	return result, nil
}

// requireElevation fails when no elevation mechanism exists and warns the
// operator when the next command may block on a password prompt.
func (e *Executor) requireElevation(ctx context.Context) error {
	switch e.CheckElevation(ctx) {
	case ElevationPasswordless:
		return nil
	case ElevationPasswordRequired:
		e.console.Warn("sudo password required", "You may be prompted for your password.")
		e.console.Dim("If the command appears stuck, enter your sudo password in the terminal.")
		return nil
	default:
		e.logger.Log("error", ErrElevationUnavailable.Error())
		return fmt.Errorf("%w: please ensure %s is installed and you have the necessary permissions",
			ErrElevationUnavailable, e.config.ElevationCommand)
	}
}

// retryPolicy never retries an elevated command that exited 1, since the
// elevator reports denied or failed authentication that way.
func (e *Executor) retryPolicy(ctx context.Context, inv *invocation) RetryPolicy {
	return RetryPolicy{
		MaxAttempts: e.config.RetryAttempts,
		Backoff:     time.Duration(e.config.RetryBackoffMs) * time.Millisecond,
		Retryable: func(err error) bool {
			if ctx.Err() != nil || !IsTransient(err) {
				return false
			}
			var cmdErr *CommandError
			if inv.spec.Elevate && errors.As(err, &cmdErr) && cmdErr.Stage == StageExit && cmdErr.ExitCode == 1 {
				return false
			}
			return true
		},
		OnRetry: func(attempt, total int, delay time.Duration, err error) {
			e.logger.Log("warn", fmt.Sprintf("attempt %d/%d failed: %v", attempt, total, err))
			e.console.Warn("Network operation failed",
				fmt.Sprintf("retrying in %s... (%d/%d)", formatDelay(delay), attempt, total))
		},
		Sleep: e.sleep,
	}
}

// runOnce performs a single attempt. The returned Result is never nil; the
// error is a *CommandError for spawn failures, timeouts and checked
// non-zero exits.
func (e *Executor) runOnce(ctx context.Context, inv *invocation, attempt int) (*Result, error) {
	if inv.spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, inv.spec.Timeout)
		defer cancel()
	}

	result := &Result{Argv: slices.Clone(inv.argv), Attempts: attempt}

	var out run
	switch inv.mode {
	case modeCapture:
		out = e.runCaptured(ctx, inv)
	case modeStream:
		out = e.runStreaming(ctx, inv)
	default:
		out = e.runInherited(ctx, inv)
	}

	result.Output = out.output
	result.Captured = inv.mode != modeInherit
	result.Truncated = out.truncated

	if out.startErr != nil {
		result.ExitCode = -1
		return result, &CommandError{Cmd: inv.spec.Program(), Stage: StageStart, ExitCode: -1, Cause: out.startErr}
	}

	result.ExitCode = exitCode(out.waitErr)
	if ctxErr := ctx.Err(); ctxErr != nil {
		cause := ctxErr
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			cause = ErrTimeout
		}
		return result, &CommandError{Cmd: inv.String(), Stage: StageExecution, ExitCode: result.ExitCode, Cause: cause}
	}
	if out.waitErr != nil && (result.ExitCode == -1 || inv.spec.CheckExitCode()) {
		return result, &CommandError{Cmd: inv.String(), Stage: StageExit, ExitCode: result.ExitCode, Cause: out.waitErr}
	}
	return result, nil
}

// run is the raw outcome of one process under a given I/O strategy.
type run struct {
	output    string
	truncated bool
	startErr  error
	waitErr   error
}

func (e *Executor) runInherited(ctx context.Context, inv *invocation) run {
	proc, err := e.spawner.Start(ctx, inv.argv, ProcessOptions{
		Env:    inv.env,
		Stdin:  e.stdin,
		Stdout: e.stdout,
		Stderr: e.stderr,
	})
	if err != nil {
		return run{startErr: err}
	}
	return run{waitErr: proc.Wait()}
}

func (e *Executor) runCaptured(ctx context.Context, inv *invocation) run {
	output := newCollector(int(e.config.MaxCapturedOutputSize))
	proc, err := e.spawner.Start(ctx, inv.argv, ProcessOptions{
		Env:    inv.env,
		Stdin:  e.stdin,
		Stdout: output,
		Stderr: output,
	})
	if err != nil {
		return run{startErr: err}
	}
	waitErr := proc.Wait()

	for _, line := range strings.Split(output.String(), "\n") {
		if line = strings.TrimRight(line, "\r"); strings.TrimSpace(line) != "" {
			e.logger.Log("info", line)
		}
	}
	return run{output: output.String(), truncated: output.Truncated(), waitErr: waitErr}
}

// formatDelay renders whole seconds as "1s" and anything else with
// time.Duration's formatting.
func formatDelay(d time.Duration) string {
	if d%time.Second == 0 {
		return fmt.Sprintf("%ds", int(d/time.Second))
	}
	return d.String()
}
