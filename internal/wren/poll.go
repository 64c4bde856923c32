package wren

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// Polling parameters for job status checks. The deadline is wall-clock,
// enforced independently of whatever state the server reports.
const (
	DefaultPollInterval = time.Second
	DefaultPollDeadline = 180 * time.Second
)

// Outcome tags the result of a poll loop.
type Outcome int

const (
	// OutcomeFinished: the job reached the finished state.
	OutcomeFinished Outcome = iota
	// OutcomeFailed: the job reached failed/stopped, or a status check
	// itself failed.
	OutcomeFailed
	// OutcomeTimedOut: the deadline expired without a terminal state.
	OutcomeTimedOut
	// OutcomeCancelled: the caller's context was canceled.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFinished:
		return "finished"
	case OutcomeFailed:
		return "failed"
	case OutcomeTimedOut:
		return "timed out"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// fetchFunc performs one status check. done reports whether the job reached
// the finished state; a non-nil err is terminal and ends the loop with
// OutcomeFailed.
type fetchFunc[T any] func(ctx context.Context) (value T, done bool, err error)

// pollUntil runs fetch at a fixed interval until it reports done, fails,
// the deadline expires, or ctx is canceled. The first fetch happens
// immediately; subsequent fetches are paced by a rate limiter so that a
// slow status check does not stack extra requests.
//
// The error is nil only for OutcomeFinished. For OutcomeCancelled it is
// ctx.Err(), for OutcomeTimedOut it wraps ErrTimeout.
func pollUntil[T any](ctx context.Context, interval, deadline time.Duration, fetch fetchFunc[T]) (T, Outcome, error) {
	var zero T

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	deadlineCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	for {
		if err := limiter.Wait(deadlineCtx); err != nil {
			outcome, oerr := expiredOutcome(ctx, deadline)
			return zero, outcome, oerr
		}

		value, done, err := fetch(deadlineCtx)
		if err != nil {
			// A slow cancellation can race a fetch failure; the contexts
			// decide which one it actually was.
			if ctx.Err() != nil || deadlineCtx.Err() != nil {
				outcome, oerr := expiredOutcome(ctx, deadline)
				return zero, outcome, oerr
			}
			return zero, OutcomeFailed, err
		}
		if done {
			return value, OutcomeFinished, nil
		}
	}
}

// expiredOutcome distinguishes caller cancellation from deadline expiry
// once the poll context is done.
func expiredOutcome(ctx context.Context, deadline time.Duration) (Outcome, error) {
	if ctx.Err() != nil {
		return OutcomeCancelled, ctx.Err()
	}
	return OutcomeTimedOut, fmt.Errorf("%w after %s without a terminal status", ErrTimeout, deadline)
}
