package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/klingon-exchange/multiwallet/pkg/logging"
)

const (
	attemptsPerEndpoint = 2
	initialBackoff      = 500 * time.Millisecond
	attemptTimeout      = 12 * time.Second
)

// endpoints walks an ordered URL list, primary first. Each URL gets
// attemptsPerEndpoint tries with a doubling backoff between attempts; each
// attempt runs under its own timeout so one hung endpoint cannot stall the
// whole chain of fallbacks.
type endpoints struct {
	urls []string
	log  *logging.Logger

	// backoff overrides initialBackoff when set (tests).
	backoff time.Duration
}

// terminalError stops the retry walk immediately. Used for failures that
// no other endpoint can fix (insufficient funds, invalid inputs).
type terminalError struct {
	err error
}

func (t terminalError) Error() string { return t.err.Error() }
func (t terminalError) Unwrap() error { return t.err }

// terminal marks an error as not worth retrying on another endpoint.
func terminal(err error) error {
	return terminalError{err: err}
}

// do runs fn against each endpoint until one succeeds. The terminal error
// of a fully exhausted walk wraps ErrEndpointsExhausted.
func (e endpoints) do(ctx context.Context, op string, fn func(ctx context.Context, url string) error) error {
	if len(e.urls) == 0 {
		return fmt.Errorf("%w: no endpoints configured for %s", ErrEndpointsExhausted, op)
	}

	totalAttempts := len(e.urls) * attemptsPerEndpoint
	attempt := 0
	backoff := e.backoff
	if backoff == 0 {
		backoff = initialBackoff
	}
	var lastErr error

	for _, url := range e.urls {
		for i := 0; i < attemptsPerEndpoint; i++ {
			attempt++

			attemptCtx, cancel := context.WithTimeout(ctx, attemptTimeout)
			err := fn(attemptCtx, url)
			cancel()

			if err == nil {
				return nil
			}

			var term terminalError
			if errors.As(err, &term) {
				return term.err
			}

			lastErr = err
			e.log.Warn("endpoint attempt failed",
				"op", op, "url", url, "attempt", attempt, "err", err)

			if ctx.Err() != nil {
				return ctx.Err()
			}

			if attempt < totalAttempts {
				select {
				case <-time.After(backoff):
				case <-ctx.Done():
					return ctx.Err()
				}
				backoff *= 2
			}
		}
	}

	return fmt.Errorf("%w: %s: %v", ErrEndpointsExhausted, op, lastErr)
}
