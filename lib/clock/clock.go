// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time for testability. Production code
// injects [Real]; tests inject [NewFake] and advance it explicitly.
//
// The client core is full of wall-clock comparisons — project status
// staleness, statistics day/hour bucketing, cache age checks,
// unconfirmed runtime estimation — and all of them go through an
// injected Clock so tests control time deterministically instead of
// sleeping.
package clock

import "time"

// Clock provides the time operations the core needs. Production
// functions that would call time.Now, time.After, or time.NewTicker
// accept a Clock (or live on a struct with a Clock field) instead.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. Equivalent to time.After.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on C at the given
	// interval. Panics if d <= 0, matching time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop when
// done. C is buffered with capacity 1: if the consumer falls behind,
// ticks are dropped rather than queued, matching time.Ticker.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No ticks are sent after Stop returns.
// Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }

// Real returns a Clock backed by the standard time package.
func Real() Clock { return realClock{} }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) After(d time.Duration) <-chan time.Time { return time.After(d) }

func (realClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stopFunc: ticker.Stop}
}
