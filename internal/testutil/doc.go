// SPDX-License-Identifier: MPL-2.0

// Package testutil holds the clock abstraction shared by time-dependent code
// and small helpers for test cleanup.
//
// Production code takes a Clock and defaults to RealClock; tests inject a
// FakeClock and move time with Advance.
package testutil
