// Package testutil provides testing utilities shared by the pprofd packages.
package testutil

import (
	"context"
	"testing"
	"time"
)

// Context returns a context that is canceled when the test finishes or
// after timeout, whichever comes first.
func Context(t *testing.T, timeout time.Duration) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	t.Cleanup(cancel)
	return ctx
}
