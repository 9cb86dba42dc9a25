package testutil

import (
	"context"
	"testing"
	"time"
)

// deadliner is implemented by *testing.T but not by testing.TB.
type deadliner interface {
	Deadline() (time.Time, bool)
}

// DefaultTimeout bounds test contexts when no timeout is given.
const DefaultTimeout = 5 * time.Second

// Context returns a context cancelled at test cleanup. The timeout is cut
// short so it expires a second before the test binary's own deadline.
func Context(t testing.TB, timeout time.Duration) context.Context {
	t.Helper()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := t.(deadliner); ok {
		if deadline, ok := d.Deadline(); ok {
			if left := time.Until(deadline) - time.Second; left > 0 && left < timeout {
				timeout = left
			}
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// Eventually polls cond every interval and fails the test with msg when it
// has not held within timeout.
func Eventually(t testing.TB, timeout, interval time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out after %s: %s", timeout, msg)
		}
		time.Sleep(interval)
	}
}
