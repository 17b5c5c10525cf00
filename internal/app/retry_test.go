package app

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryPolicy_StopsAfterFirstSuccess(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 3, Delay: time.Second, Sleep: func(time.Duration) {
		t.Fatal("sleep must not be called when the first attempt succeeds")
	}}

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Do error: %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPolicy_ReturnsLastFailure(t *testing.T) {
	first := errors.New("first")
	last := errors.New("last")
	calls := 0
	var slept []time.Duration
	policy := RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second, Sleep: func(d time.Duration) {
		slept = append(slept, d)
	}}

	err := policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		if calls == 1 {
			return first
		}
		return last
	})
	if !errors.Is(err, last) {
		t.Fatalf("err = %v, want the last failure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
	if len(slept) != 2 || slept[0] != 2*time.Second {
		t.Errorf("slept = %v, want two fixed 2s delays", slept)
	}
}

func TestRetryPolicy_ZeroAttemptsStillRunsOnce(t *testing.T) {
	calls := 0
	policy := RetryPolicy{MaxAttempts: 0, Delay: 0}

	_ = policy.Do(context.Background(), func(ctx context.Context) error {
		calls++
		return errors.New("boom")
	})
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}
