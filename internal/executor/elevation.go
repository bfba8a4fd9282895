package executor

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ElevationStatus describes what the elevation mechanism can do on this host.
type ElevationStatus int

const (
	// ElevationUnavailable means no elevation mechanism was found.
	ElevationUnavailable ElevationStatus = iota
	// ElevationPasswordless means elevation works without a prompt.
	ElevationPasswordless
	// ElevationPasswordRequired means the mechanism exists but may prompt.
	ElevationPasswordRequired
)

func (s ElevationStatus) String() string {
	switch s {
	case ElevationPasswordless:
		return "passwordless"
	case ElevationPasswordRequired:
		return "password required"
	default:
		return "unavailable"
	}
}

// systemBinDirs are searched for elevated programs missing from the caller's
// PATH, since the elevated PATH usually includes them.
var systemBinDirs = []string{"/usr/local/sbin", "/usr/sbin", "/sbin"}

// CheckElevation probes the elevation mechanism. A non-interactive probe
// ("sudo -n true") is tried first; if it fails, a bounded existence check
// ("which sudo") decides between password-required and unavailable.
func (e *Executor) CheckElevation(ctx context.Context) ElevationStatus {
	elevator := e.config.ElevationCommand
	if e.probe(ctx, []string{elevator, "-n", "true"}, e.probeTimeout()) {
		return ElevationPasswordless
	}
	if e.probe(ctx, []string{"which", elevator}, e.lookupTimeout()) {
		return ElevationPasswordRequired
	}
	return ElevationUnavailable
}

// probe runs argv with no stdin and discarded output, reporting whether it
// exited zero within timeout.
func (e *Executor) probe(ctx context.Context, argv []string, timeout time.Duration) bool {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	proc, err := e.spawner.Start(probeCtx, argv, ProcessOptions{})
	if err != nil {
		e.logger.Log("debug", "probe "+strings.Join(argv, " ")+" failed to start: "+err.Error())
		return false
	}
	if err := proc.Wait(); err != nil {
		e.logger.Log("debug", "probe "+strings.Join(argv, " ")+" failed: "+err.Error())
		return false
	}
	return probeCtx.Err() == nil
}

func (e *Executor) probeTimeout() time.Duration {
	return time.Duration(e.config.ElevationProbeTimeoutMs) * time.Millisecond
}

func (e *Executor) lookupTimeout() time.Duration {
	return time.Duration(e.config.ElevationLookupTimeoutMs) * time.Millisecond
}

// resolveElevated checks that program exists for an elevated run, looking in
// the system sbin directories when it is not on PATH.
func (e *Executor) resolveElevated(program string) (string, error) {
	path, err := e.spawner.LookPath(program)
	if err == nil || strings.ContainsRune(program, filepath.Separator) {
		return path, err
	}
	for _, dir := range systemBinDirs {
		if p, dirErr := e.spawner.LookPath(filepath.Join(dir, program)); dirErr == nil {
			return p, nil
		}
	}
	return "", &exec.Error{Name: program, Err: exec.ErrNotFound}
}

// Which resolves name on PATH without spawning anything.
func (e *Executor) Which(name string) (string, bool) {
	path, err := e.spawner.LookPath(name)
	return path, err == nil
}
