package http

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestInFlightTracker_Count(t *testing.T) {
	var tr InFlightTracker
	tr.Increment()
	tr.Increment()
	tr.Decrement()
	if got := tr.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestInFlightTracker_WaitForZero_AlreadyZero(t *testing.T) {
	var tr InFlightTracker
	if err := tr.WaitForZero(context.Background(), time.Millisecond); err != nil {
		t.Errorf("WaitForZero() error = %v", err)
	}
}

func TestInFlightTracker_WaitForZero_Drains(t *testing.T) {
	var tr InFlightTracker
	tr.Increment()
	go func() {
		time.Sleep(20 * time.Millisecond)
		tr.Decrement()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := tr.WaitForZero(ctx, 5*time.Millisecond); err != nil {
		t.Errorf("WaitForZero() error = %v", err)
	}
}

func TestInFlightTracker_WaitForZero_Timeout(t *testing.T) {
	var tr InFlightTracker
	tr.Increment()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := tr.WaitForZero(ctx, 5*time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForZero() error = %v, want context.DeadlineExceeded", err)
	}
}
