package executor

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"time"
)

const maxLineSize = 1024 * 1024

// runStreaming runs an elevated package-manager command with stdin on the
// terminal and stdout/stderr merged into a pipe. The pipe is drained on a
// separate goroutine so the child never blocks on a full buffer. Every line
// is logged; benign warnings are dropped from the collected output and lines
// that look like errors are echoed to the console as they arrive.
//
// After the process exits the reader gets a bounded grace period. Output
// still unread after that (for example because a daemonized grandchild holds
// the pipe open) is discarded.
func (e *Executor) runStreaming(ctx context.Context, inv *invocation) run {
	pr, pw, err := os.Pipe()
	if err != nil {
		return run{startErr: err}
	}
	defer pr.Close()

	proc, err := e.spawner.Start(ctx, inv.argv, ProcessOptions{
		Env:    inv.env,
		Stdin:  e.stdin,
		Stdout: pw,
		Stderr: pw,
	})
	// The child holds its own copy of the write end.
	_ = pw.Close()
	if err != nil {
		return run{startErr: err}
	}

	output := newCollector(int(e.config.MaxCapturedOutputSize))
	done := make(chan struct{})
	go func() {
		defer close(done)
		e.drain(pr, output)
	}()

	waitErr := proc.Wait()

	select {
	case <-done:
	case <-time.After(e.drainTimeout()):
		e.logger.Log("warn", "output reader did not finish after exit; discarding remaining output of "+inv.String())
		// Closing the read end unblocks the scanner.
		_ = pr.Close()
		<-done
	}

	return run{
		output:    strings.TrimSuffix(output.String(), "\n"),
		truncated: output.Truncated(),
		waitErr:   waitErr,
	}
}

// drain consumes r line by line until EOF or a read error.
func (e *Executor) drain(r io.Reader, output io.Writer) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		e.logger.Log("info", line)
		if IsBenignWarning(line) {
			continue
		}
		_, _ = io.WriteString(output, line+"\n")
		if IsErrorLine(line) {
			e.console.DimError(line)
		}
	}
	if scanner.Err() != nil {
		// An oversized line stops the scanner; keep the pipe empty so the
		// child can still exit.
		_, _ = io.Copy(io.Discard, r)
	}
}

func (e *Executor) drainTimeout() time.Duration {
	return time.Duration(e.config.DrainTimeoutMs) * time.Millisecond
}
