// Package retry implements the connect/attach backoff used by the control
// socket layer. It mirrors the shape of the teacher's tools/lib/retry
// package as seen from its call sites (Retry, Backoff, ZeroBackoff,
// NewConstantBackoff, WithMaxDuration, WithMaxAttempts) since that package's
// own source was not available to copy from.
package retry

import (
	"context"
	"time"
)

// Backoff computes successive retry delays. A zero return value means retry
// immediately. Attempt and duration budgets (WithMaxAttempts,
// WithMaxDuration) are enforced by the Retry loop itself, not by Backoff.
type Backoff interface {
	Next() time.Duration
}

// ZeroBackoff retries immediately, forever.
type ZeroBackoff struct{}

func (*ZeroBackoff) Next() time.Duration { return 0 }

// ConstantBackoff retries after a fixed interval, forever.
type ConstantBackoff struct {
	interval time.Duration
}

// NewConstantBackoff returns a Backoff that waits interval between attempts.
func NewConstantBackoff(interval time.Duration) *ConstantBackoff {
	return &ConstantBackoff{interval: interval}
}

func (b *ConstantBackoff) Next() time.Duration { return b.interval }

// maxDurationBackoff wraps a Backoff with a wall-clock deadline, fixed at
// construction, after which Retry returns the last error from fn.
type maxDurationBackoff struct {
	Backoff
	deadline time.Time
}

// WithMaxDuration wraps a Backoff so that Retry gives up once max has
// elapsed since WithMaxDuration was called.
func WithMaxDuration(b Backoff, max time.Duration) Backoff {
	return &maxDurationBackoff{Backoff: b, deadline: time.Now().Add(max)}
}

type maxAttemptsBackoff struct {
	Backoff
	remaining int
}

// WithMaxAttempts wraps a Backoff so that Retry gives up after n total
// attempts (including the first).
func WithMaxAttempts(b Backoff, n int) Backoff {
	return &maxAttemptsBackoff{Backoff: b, remaining: n}
}

// Retry calls fn until it succeeds, ctx is cancelled, or the backoff
// reports its budget is exhausted. notify, if non-nil, is invoked with each
// failing error and the delay about to be waited before the next attempt.
func Retry(ctx context.Context, backoff Backoff, fn func() error, notify func(error, time.Duration)) error {
	attempt := 0
	for {
		err := fn()
		if err == nil {
			return nil
		}
		attempt++

		if mb, ok := backoff.(*maxAttemptsBackoff); ok {
			if attempt >= mb.remaining {
				return err
			}
		}
		if mb, ok := backoff.(*maxDurationBackoff); ok {
			if !time.Now().Before(mb.deadline) {
				return err
			}
		}

		delay := backoff.Next()
		if notify != nil {
			notify(err, delay)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
