// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake is a Clock under explicit test control. Time only moves when
// the test calls Advance or Set; timers and tickers fire synchronously
// inside those calls, before they return.
//
// Fake is safe for concurrent use.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	ch       chan time.Time
	interval time.Duration // non-zero for tickers
	stopped  bool
}

// NewFake returns a Fake whose current time is the given instant. A
// fixed, readable epoch keeps failure output stable across runs.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

// Now returns the fake current time.
func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// After returns a channel that receives once Advance moves the clock
// past the deadline. If d <= 0 the channel receives immediately.
func (f *Fake) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- f.now
		return ch
	}
	f.waiters = append(f.waiters, &fakeWaiter{deadline: f.now.Add(d), ch: ch})
	return ch
}

// NewTicker returns a Ticker that fires each time Advance crosses a
// multiple of d. Panics if d <= 0, matching time.NewTicker.
func (f *Fake) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan time.Time, 1)
	w := &fakeWaiter{deadline: f.now.Add(d), ch: ch, interval: d}
	f.waiters = append(f.waiters, w)
	return &Ticker{
		C: ch,
		stopFunc: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			w.stopped = true
		},
	}
}

// Advance moves the clock forward by d, firing every timer and ticker
// whose deadline is reached, in deadline order.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advanceTo(f.now.Add(d))
}

// Set jumps the clock to the given instant. Moving backwards does not
// re-arm anything.
func (f *Fake) Set(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if now.After(f.now) {
		f.advanceTo(now)
		return
	}
	f.now = now
}

// advanceTo fires due waiters in deadline order until target is
// reached. Caller holds f.mu.
func (f *Fake) advanceTo(target time.Time) {
	for {
		sort.SliceStable(f.waiters, func(i, j int) bool {
			return f.waiters[i].deadline.Before(f.waiters[j].deadline)
		})

		fired := false
		for _, w := range f.waiters {
			if w.stopped || w.deadline.After(target) {
				continue
			}
			f.now = w.deadline
			select {
			case w.ch <- w.deadline:
			default: // consumer behind; drop the tick
			}
			if w.interval > 0 {
				w.deadline = w.deadline.Add(w.interval)
			} else {
				w.stopped = true
			}
			fired = true
			break
		}
		if !fired {
			break
		}
	}

	live := f.waiters[:0]
	for _, w := range f.waiters {
		if !w.stopped {
			live = append(live, w)
		}
	}
	f.waiters = live
	f.now = target
}
