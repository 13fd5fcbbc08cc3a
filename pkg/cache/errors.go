package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNetwork is returned when a remote backend (Redis) cannot be reached.
	ErrNetwork = errors.New("network error")

	// ErrCacheMiss is returned by Redis clients for missing keys. Cache
	// implementations turn it into a (nil, false, nil) Get.
	ErrCacheMiss = errors.New("cache miss")
)

// transientError marks a failure that a [Backoff] will retry.
type transientError struct{ err error }

func (e *transientError) Error() string { return e.err.Error() }
func (e *transientError) Unwrap() error { return e.err }

// Transient marks err as worth retrying. Transient(nil) is nil.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &transientError{err: err}
}

// IsTransient reports whether err was marked with [Transient].
func IsTransient(err error) bool {
	var te *transientError
	return errors.As(err, &te)
}

// Backoff retries transient failures with a doubling delay.
type Backoff struct {
	Attempts int
	Delay    time.Duration
}

// DefaultBackoff is used for Redis round trips. Cache lookups sit in front
// of a layout search, so it gives up quickly.
var DefaultBackoff = Backoff{Attempts: 3, Delay: 50 * time.Millisecond}

// Do calls fn until it succeeds, returns a non-transient error, or the
// attempts run out. The last error is returned unwrapped from its transient
// marker.
func (b Backoff) Do(ctx context.Context, fn func() error) error {
	delay := b.Delay
	attempts := max(b.Attempts, 1)
	var err error
	for i := range attempts {
		if err = fn(); err == nil || !IsTransient(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return errors.Unwrap(err)
}
