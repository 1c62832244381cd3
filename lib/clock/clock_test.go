// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

func TestFakeNowAndAdvance(t *testing.T) {
	fc := NewFake(epoch)
	if got := fc.Now(); !got.Equal(epoch) {
		t.Fatalf("Now() = %v, want %v", got, epoch)
	}
	fc.Advance(90 * time.Second)
	if got := fc.Now(); !got.Equal(epoch.Add(90 * time.Second)) {
		t.Fatalf("Now() after Advance = %v, want %v", got, epoch.Add(90*time.Second))
	}
}

func TestFakeAfterFiresOnAdvance(t *testing.T) {
	fc := NewFake(epoch)
	ch := fc.After(time.Minute)

	select {
	case v := <-ch:
		t.Fatalf("timer fired before Advance: %v", v)
	default:
	}

	fc.Advance(time.Minute)
	select {
	case v := <-ch:
		if !v.Equal(epoch.Add(time.Minute)) {
			t.Fatalf("timer fired at %v, want %v", v, epoch.Add(time.Minute))
		}
	default:
		t.Fatal("timer did not fire after Advance")
	}
}

func TestFakeAfterNonPositive(t *testing.T) {
	fc := NewFake(epoch)
	select {
	case <-fc.After(0):
	default:
		t.Fatal("After(0) did not fire immediately")
	}
}

func TestFakeTicker(t *testing.T) {
	fc := NewFake(epoch)
	tick := fc.NewTicker(time.Second)
	defer tick.Stop()

	fc.Advance(time.Second)
	select {
	case v := <-tick.C:
		if !v.Equal(epoch.Add(time.Second)) {
			t.Fatalf("tick at %v, want %v", v, epoch.Add(time.Second))
		}
	default:
		t.Fatal("no tick after one interval")
	}

	// Consumer keeping up sees each subsequent tick.
	fc.Advance(time.Second)
	select {
	case <-tick.C:
	default:
		t.Fatal("no tick after second interval")
	}
}

func TestFakeTickerStopped(t *testing.T) {
	fc := NewFake(epoch)
	tick := fc.NewTicker(time.Second)
	tick.Stop()

	fc.Advance(5 * time.Second)
	select {
	case v := <-tick.C:
		t.Fatalf("stopped ticker fired: %v", v)
	default:
	}
}

func TestFakeSetBackwards(t *testing.T) {
	fc := NewFake(epoch)
	earlier := epoch.Add(-time.Hour)
	fc.Set(earlier)
	if got := fc.Now(); !got.Equal(earlier) {
		t.Fatalf("Now() = %v, want %v", got, earlier)
	}
}

func TestRealNow(t *testing.T) {
	before := time.Now()
	got := Real().Now()
	after := time.Now()
	if got.Before(before) || got.After(after) {
		t.Fatalf("Real().Now() = %v outside [%v, %v]", got, before, after)
	}
}
