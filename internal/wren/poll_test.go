package wren

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPollUntilFinished(t *testing.T) {
	calls := 0
	value, outcome, err := pollUntil(context.Background(), time.Millisecond, time.Second,
		func(ctx context.Context) (string, bool, error) {
			calls++
			if calls < 3 {
				return "", false, nil
			}
			return "done", true, nil
		})
	if err != nil {
		t.Fatalf("pollUntil: %v", err)
	}
	if outcome != OutcomeFinished {
		t.Errorf("outcome = %v, want finished", outcome)
	}
	if value != "done" {
		t.Errorf("value = %q", value)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestPollUntilFailed(t *testing.T) {
	wantErr := &JobError{Job: "ask", Status: StatusFailed, Message: "model timeout"}
	_, outcome, err := pollUntil(context.Background(), time.Millisecond, time.Second,
		func(ctx context.Context) (string, bool, error) {
			return "", false, wantErr
		})
	if outcome != OutcomeFailed {
		t.Errorf("outcome = %v, want failed", outcome)
	}
	var jobErr *JobError
	if !errors.As(err, &jobErr) || jobErr.Message != "model timeout" {
		t.Errorf("err = %v, want job error with message", err)
	}
}

func TestPollUntilTimedOut(t *testing.T) {
	_, outcome, err := pollUntil(context.Background(), 5*time.Millisecond, 20*time.Millisecond,
		func(ctx context.Context) (string, bool, error) {
			return "", false, nil // never terminal
		})
	if outcome != OutcomeTimedOut {
		t.Errorf("outcome = %v, want timed out", outcome)
	}
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("err = %v, want ErrTimeout", err)
	}
}

func TestPollUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	_, outcome, err := pollUntil(ctx, time.Millisecond, time.Second,
		func(ctx context.Context) (string, bool, error) {
			calls++
			if calls == 2 {
				cancel()
			}
			return "", false, nil
		})
	if outcome != OutcomeCancelled {
		t.Errorf("outcome = %v, want cancelled", outcome)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	// No further polls once canceled.
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPollUntilFirstFetchImmediate(t *testing.T) {
	start := time.Now()
	_, _, err := pollUntil(context.Background(), 500*time.Millisecond, time.Second,
		func(ctx context.Context) (int, bool, error) {
			return 42, true, nil
		})
	if err != nil {
		t.Fatalf("pollUntil: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("first fetch delayed by %s; should run immediately", elapsed)
	}
}

func TestOutcomeString(t *testing.T) {
	cases := map[Outcome]string{
		OutcomeFinished:  "finished",
		OutcomeFailed:    "failed",
		OutcomeTimedOut:  "timed out",
		OutcomeCancelled: "cancelled",
		Outcome(99):      "unknown",
	}
	for o, want := range cases {
		if got := o.String(); got != want {
			t.Errorf("Outcome(%d).String() = %q, want %q", int(o), got, want)
		}
	}
}
