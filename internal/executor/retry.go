package executor

import (
	"context"
	"errors"
	"io/fs"
	"os/exec"
	"time"
)

// RetryPolicy retries a failing operation with exponential backoff.
// The delay after attempt n (1-based) is Backoff * 2^(n-1).
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
	// Retryable decides whether a failure is transient. Nil retries everything.
	Retryable func(error) bool
	// OnRetry is called before each wait with the failed attempt number.
	OnRetry func(attempt, total int, delay time.Duration, err error)
	// Sleep waits for d or until ctx is done. Nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// Delay returns the wait after the given failed attempt (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	return p.Backoff * time.Duration(1<<(attempt-1))
}

// Retry runs fn until it succeeds, fails with a non-retryable error, or
// MaxAttempts is reached. The last attempt's result and error are returned.
// Attempts are strictly sequential.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(attempt int) (T, error)) (T, error) {
	total := max(p.MaxAttempts, 1)
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var (
		result T
		err    error
	)
	for attempt := 1; attempt <= total; attempt++ {
		result, err = fn(attempt)
		if err == nil {
			return result, nil
		}
		if attempt == total || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}

		delay := p.Delay(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, total, delay, err)
		}
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			break
		}
	}
	return result, err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsTransient reports whether a raw process failure may succeed on retry.
// Missing programs and permission failures never do.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, exec.ErrNotFound) &&
		!errors.Is(err, fs.ErrNotExist) &&
		!errors.Is(err, fs.ErrPermission)
}
