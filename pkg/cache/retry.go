package cache

import (
	"context"
	"errors"
	"time"
)

// ErrNetwork marks failures to reach a backend or upstream service.
var ErrNetwork = errors.New("network error")

// transientError marks an error worth another attempt.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Retryable marks err as transient so [Backoff.Do] retries it. A nil err
// stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var t *transientError
	return errors.As(err, &t)
}

// Backoff is an exponential retry policy for transient failures.
type Backoff struct {
	Attempts int           // total calls, at least 1
	Initial  time.Duration // wait before the second call
	Max      time.Duration // cap on a single wait; 0 means no cap
}

// DefaultBackoff makes three calls, waiting one and then two seconds.
var DefaultBackoff = Backoff{Attempts: 3, Initial: time.Second, Max: 30 * time.Second}

// Do calls fn until it succeeds, returns an error not marked [Retryable], or
// runs out of attempts. The last error is returned unwrapped of its
// retryable mark; a cancelled ctx returns ctx.Err().
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	wait := b.Initial
	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= b.Attempts {
			return unmark(err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		wait *= 2
		if b.Max > 0 && wait > b.Max {
			wait = b.Max
		}
	}
}

// RetryWithBackoff runs fn under [DefaultBackoff].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return DefaultBackoff.Do(ctx, fn)
}

func unmark(err error) error {
	if t, ok := err.(*transientError); ok {
		return t.err
	}
	return err
}
