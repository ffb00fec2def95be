package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks a frame backend (Redis) that could not be reached.
var ErrNetwork = errors.New("network error")

// RetryableError marks a backend failure worth another attempt, such as
// a refused connection while Redis is still starting.
type RetryableError struct{ Err error }

// Retryable marks err for RetryWithBackoff. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err carries a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

const connectAttempts = 3

// retryDelay is the wait after the first failed attempt; tests shorten it.
var retryDelay = time.Second

// RetryWithBackoff runs fn until it succeeds, fails without the Retryable
// mark, or has run connectAttempts times. The wait doubles after each
// failure and is cut short when ctx ends.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	wait := retryDelay
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) || attempt == connectAttempts {
			return err
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
}
