package cache

import (
	"context"
	"errors"
	"time"

	serrors "github.com/matzehuels/stacksize/pkg/errors"
)

// Sentinel errors shared by the HTTP clients that sit on top of the cache.
var (
	ErrNotFound = errors.New("not found")
	ErrNetwork  = errors.New("network error") // timeouts, resets, 5xx
)

// RetryableError marks a failure worth another attempt.
type RetryableError struct{ Err error }

// Retryable wraps err as a RetryableError. Retryable(nil) is nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with Retryable.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// maxRetryAfter caps how long a Retry-After header can stall a run.
const maxRetryAfter = 30 * time.Second

// RetryWithBackoff calls fn up to 3 times, doubling a one second delay
// between attempts. Only Retryable errors are retried. When the error
// carries a Retry-After (HTTP 429), that wait replaces the backoff delay,
// capped at 30 seconds.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return retryWithBackoff(ctx, 3, time.Second, maxRetryAfter, fn)
}

func retryWithBackoff(ctx context.Context, attempts int, delay, maxWait time.Duration, fn func() error) error {
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}

		wait := delay
		var rl *serrors.RateLimitedError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			wait = min(time.Duration(rl.RetryAfter)*time.Second, maxWait)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		delay *= 2
	}
	return err
}
