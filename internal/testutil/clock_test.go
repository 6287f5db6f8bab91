// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"testing"
	"time"
)

var reference = time.Date(2023, 6, 15, 12, 0, 0, 0, time.UTC)

func TestRealClock_Now(t *testing.T) {
	t.Parallel()

	before := time.Now()
	result := RealClock{}.Now()
	after := time.Now()

	if result.Before(before) || result.After(after) {
		t.Errorf("RealClock.Now() returned %v, expected between %v and %v", result, before, after)
	}
}

func TestRealClock_NewTicker(t *testing.T) {
	t.Parallel()

	ticker := RealClock{}.NewTicker(time.Millisecond)
	defer ticker.Stop()

	select {
	case <-ticker.C():
	case <-time.After(time.Second):
		t.Error("RealClock ticker did not fire within 1s")
	}
}

func TestFakeClock_DefaultTime(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(time.Time{})
	expected := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

	if got := clock.Now(); !got.Equal(expected) {
		t.Errorf("FakeClock.Now() with zero time = %v, want %v", got, expected)
	}
}

func TestFakeClock_AdvanceAndSet(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(reference)
	clock.Advance(90 * time.Minute)
	if got, want := clock.Now(), reference.Add(90*time.Minute); !got.Equal(want) {
		t.Errorf("after Advance, Now() = %v, want %v", got, want)
	}

	clock.Set(reference)
	if got := clock.Now(); !got.Equal(reference) {
		t.Errorf("after Set, Now() = %v, want %v", got, reference)
	}
}

func TestFakeTicker(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(reference)
	ticker := clock.NewTicker(time.Minute)

	clock.Advance(59 * time.Second)
	select {
	case <-ticker.C():
		t.Fatal("ticker fired before its period")
	default:
	}

	clock.Advance(time.Second)
	select {
	case got := <-ticker.C():
		if want := reference.Add(time.Minute); !got.Equal(want) {
			t.Errorf("tick = %v, want %v", got, want)
		}
	default:
		t.Fatal("ticker did not fire after its period")
	}

	// A long jump delivers one tick and realigns to the next period.
	clock.Advance(5*time.Minute + 30*time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire after a long advance")
	}
	select {
	case <-ticker.C():
		t.Fatal("missed ticks must be dropped")
	default:
	}
	clock.Advance(30 * time.Second)
	select {
	case <-ticker.C():
	default:
		t.Fatal("ticker did not fire on the realigned period")
	}
}

func TestFakeTicker_Stop(t *testing.T) {
	t.Parallel()

	clock := NewFakeClock(reference)
	first := clock.NewTicker(time.Second)
	second := clock.NewTicker(time.Second)
	if n := clock.Tickers(); n != 2 {
		t.Fatalf("Tickers() = %d, want 2", n)
	}

	first.Stop()
	if n := clock.Tickers(); n != 1 {
		t.Fatalf("Tickers() after Stop = %d, want 1", n)
	}

	clock.Advance(time.Second)
	select {
	case <-first.C():
		t.Error("stopped ticker fired")
	default:
	}
	select {
	case <-second.C():
	default:
		t.Error("live ticker did not fire")
	}
}
