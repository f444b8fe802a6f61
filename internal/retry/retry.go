// Package retry runs an operation a bounded number of times with exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/desertthunder/spdl/internal/shared"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	Attempts   int           // total tries, including the first
	Backoff    time.Duration // delay after the first failure
	MaxBackoff time.Duration // cap for any single delay
	Multiplier float64       // growth factor between delays
	Jitter     float64       // fraction of the delay randomized, 0 disables
}

// DefaultPolicy mirrors the [retry] defaults of config.toml.
func DefaultPolicy() Policy {
	return Policy{
		Attempts:   3,
		Backoff:    500 * time.Millisecond,
		MaxBackoff: 5 * time.Second,
		Multiplier: 2.0,
		Jitter:     0.2,
	}
}

// FromConfig builds a Policy from the [retry] section of the config file.
func FromConfig(c shared.RetryConfig) Policy {
	p := DefaultPolicy()
	p.Attempts = c.Attempts
	p.Backoff = c.Backoff()
	p.MaxBackoff = c.MaxBackoff()
	p.Multiplier = c.Multiplier
	return p
}

// Classifier reports whether err is worth another attempt.
type Classifier func(error) bool

// IsRetryable retries everything except context errors and errors marked with [Permanent].
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var p *permanentError
	return !errors.As(err, &p)
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not retryable under [IsRetryable].
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a non-retryable error, or the policy runs out of attempts.
//
// fn receives the 1-based attempt number. Waiting between attempts stops as soon as ctx is done.
func Do(ctx context.Context, p Policy, classify Classifier, fn func(ctx context.Context, attempt int) error) error {
	if classify == nil {
		classify = IsRetryable
	}
	attempts := max(p.Attempts, 1)
	backoff := p.Backoff

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err
		if !classify(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		sleep := backoff + jitter(backoff, p.Jitter)
		if p.MaxBackoff > 0 && sleep > p.MaxBackoff {
			sleep = p.MaxBackoff
		}

		timer := time.NewTimer(sleep)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}

		backoff = time.Duration(float64(backoff) * max(p.Multiplier, 1))
		if p.MaxBackoff > 0 && backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

func jitter(d time.Duration, fraction float64) time.Duration {
	if fraction <= 0 || d <= 0 {
		return 0
	}
	span := float64(d) * fraction
	return time.Duration((rand.Float64() - 0.5) * 2 * span)
}
