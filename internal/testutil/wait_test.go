package testutil

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestContextAcceptsTB(t *testing.T) {
	var tb testing.TB = t
	ctx := Context(tb, time.Minute)
	deadline, ok := ctx.Deadline()
	if !ok {
		t.Fatalf("expected a deadline")
	}
	if time.Until(deadline) > time.Minute {
		t.Fatalf("deadline exceeds the requested timeout: %s", time.Until(deadline))
	}
}

func TestContextDefaultTimeout(t *testing.T) {
	ctx := Context(t, 0)
	deadline, ok := ctx.Deadline()
	if !ok || time.Until(deadline) > DefaultTimeout {
		t.Fatalf("expected default timeout, got %v %v", deadline, ok)
	}
}

func TestEventuallyWaitsForCondition(t *testing.T) {
	var calls atomic.Int32
	Eventually(t, time.Second, time.Millisecond, func() bool {
		return calls.Add(1) >= 3
	}, "condition never held")
	if calls.Load() < 3 {
		t.Fatalf("expected at least three polls, got %d", calls.Load())
	}
}
