// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"sync"
	"time"
)

type (
	// Clock is the time source of prompts and token lifetimes.
	// Production code uses RealClock; tests use FakeClock.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// NewTicker returns a Ticker firing every d.
		NewTicker(d time.Duration) Ticker
	}

	// Ticker delivers periodic ticks until stopped.
	Ticker interface {
		C() <-chan time.Time
		Stop()
	}

	// RealClock implements Clock using actual system time.
	RealClock struct{}

	realTicker struct {
		t *time.Ticker
	}

	// FakeClock implements Clock with manually controlled time. Time only
	// moves when Advance or Set is called, and tickers fire from there.
	FakeClock struct {
		mu      sync.Mutex
		current time.Time
		tickers []*fakeTicker
	}

	fakeTicker struct {
		clock  *FakeClock
		period time.Duration
		next   time.Time
		ch     chan time.Time
	}
)

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// NewTicker wraps time.NewTicker.
func (RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewFakeClock creates a FakeClock initialized to the given time.
// A zero time starts the clock at 2020-01-01 00:00 UTC.
func NewFakeClock(initial time.Time) *FakeClock {
	if initial.IsZero() {
		initial = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &FakeClock{current: initial}
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker returns a ticker that fires when the fake time passes each
// multiple of d. Like time.Ticker, ticks are dropped for a slow reader.
func (c *FakeClock) NewTicker(d time.Duration) Ticker {
	if d <= 0 {
		panic("testutil: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	tk := &fakeTicker{clock: c, period: d, next: c.current.Add(d), ch: make(chan time.Time, 1)}
	c.tickers = append(c.tickers, tk)
	return tk
}

// Advance moves the fake time forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
	c.fire()
}

// Set moves the fake time to t.
func (c *FakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = t
	c.fire()
}

// Tickers returns the number of live tickers, so tests can wait until the
// code under test has started one before advancing time.
func (c *FakeClock) Tickers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// fire delivers due ticks. Must be called with mu held.
func (c *FakeClock) fire() {
	for _, tk := range c.tickers {
		if c.current.Before(tk.next) {
			continue
		}
		select {
		case tk.ch <- c.current:
		default:
		}
		for !c.current.Before(tk.next) {
			tk.next = tk.next.Add(tk.period)
		}
	}
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, tk := range c.tickers {
		if tk == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}
