package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryableError wraps an error to indicate the operation should be
// attempted again. Wrap transient failures (network timeouts, 5xx
// responses) with this type so [Retry] distinguishes them from permanent
// ones.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry executes fn up to attempts times with exponential backoff. Only
// errors wrapped in [RetryableError] trigger a retry; the delay doubles
// after each failed attempt. Returns the last error when all attempts
// fail, or ctx.Err() if cancelled while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !isRetryable(err) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// RetryWithBackoff runs [Retry] with the delay used by the chemistry
// clients, starting at 1 second. Attempts below 1 fall back to 3.
func RetryWithBackoff(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 3
	}
	return Retry(ctx, attempts, time.Second, fn)
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}
