// SPDX-License-Identifier: MPL-2.0

package testutil

import "testing"

// Stopper is an interface for types that have a Stop method returning an error.
// This is commonly used for server types.
type Stopper interface {
	Stop() error
}

// MustStop stops the given Stopper (typically a server).
// This logs errors but doesn't fail the test, as shutdown errors during
// cleanup are typically non-fatal.
func MustStop(t testing.TB, s Stopper) {
	t.Helper()
	if err := s.Stop(); err != nil {
		t.Logf("warning: stop returned error: %v", err)
	}
}
