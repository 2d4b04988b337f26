package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/BaSui01/dispatchd/types"
)

// TestContext returns a context with a 30s timeout, cancelled on test
// cleanup.
func TestContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// TestContextWithTimeout returns a context with a custom timeout,
// cancelled on test cleanup.
func TestContextWithTimeout(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}

// CancelledContext returns an already cancelled context.
func CancelledContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	return ctx
}

// AssertEventuallyTrue polls condition until it returns true or the
// timeout elapses.
func AssertEventuallyTrue(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("condition not met within %v", timeout)
}

// MustHandlerRef parses a handler reference or fails the test.
func MustHandlerRef(t *testing.T, s string) types.HandlerRef {
	t.Helper()
	h, err := types.ParseHandlerRef(s)
	if err != nil {
		t.Fatalf("invalid handler ref %q: %v", s, err)
	}
	return h
}

// MustOperationID parses an operation identifier or fails the test.
func MustOperationID(t *testing.T, s string) types.OperationID {
	t.Helper()
	id, err := types.ParseOperationID(s)
	if err != nil {
		t.Fatalf("invalid operation id %q: %v", s, err)
	}
	return id
}

// Extension builds an extension advertising the given signatures, with
// identifiers derived from them.
func Extension(t *testing.T, name, handler string, signatures ...string) types.Extension {
	t.Helper()

	ops := make([]types.Operation, 0, len(signatures))
	for _, sig := range signatures {
		ops = append(ops, types.Operation{
			ID:        types.DeriveOperationID(sig),
			Signature: sig,
		})
	}
	return types.Extension{
		Name:       name,
		Handler:    MustHandlerRef(t, handler),
		Operations: ops,
	}
}
