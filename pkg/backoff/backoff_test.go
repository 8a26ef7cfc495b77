package backoff

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestExponentialJitter_Bounds(t *testing.T) {
	base, max := 100*time.Millisecond, time.Second
	for attempt := 1; attempt <= 8; attempt++ {
		want := min(base<<(attempt-1), max)
		lo, hi := want-want/5, want+want/5
		for i := 0; i < 50; i++ {
			d := ExponentialJitter(base, max, attempt)
			if d < lo || d > hi {
				t.Fatalf("attempt %d: %v outside [%v, %v]", attempt, d, lo, hi)
			}
		}
	}
}

func TestExponentialJitter_TinyBase(t *testing.T) {
	if d := ExponentialJitter(time.Nanosecond, time.Nanosecond, 1); d != time.Nanosecond {
		t.Fatalf("expected 1ns, got %v", d)
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, 5*time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return errors.New("boom")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
}

func TestRetry_ReturnsLastError(t *testing.T) {
	want := errors.New("still failing")
	calls := 0
	err := Retry(context.Background(), 2, time.Millisecond, time.Millisecond, func() error {
		calls++
		return want
	})
	if !errors.Is(err, want) || calls != 2 {
		t.Fatalf("expected last error after 2 calls, got %v after %d", err, calls)
	}
}

func TestRetry_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 5, time.Second, time.Second, func() error { return errors.New("x") })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
