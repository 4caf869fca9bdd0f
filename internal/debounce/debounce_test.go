// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package debounce

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduleSynchronousWhenDelayNonPositive(t *testing.T) {
	d := New(0)

	var calls int32
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })
	d.Schedule(func() { atomic.AddInt32(&calls, 1) })

	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("expected 2 synchronous calls, got %d", got)
	}
}

func TestScheduleSupersedesPending(t *testing.T) {
	d := New(20 * time.Millisecond)
	defer d.Stop()

	fired := make(chan int, 2)
	d.Schedule(func() { fired <- 1 })
	d.Schedule(func() { fired <- 2 })

	select {
	case got := <-fired:
		if got != 2 {
			t.Errorf("expected only the newest callback to fire, got %d", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for debounced callback")
	}

	// The superseded callback must never fire.
	select {
	case got := <-fired:
		t.Errorf("unexpected extra callback %d", got)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestStopCancelsPending(t *testing.T) {
	d := New(20 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Schedule(func() { fired <- struct{}{} })
	d.Stop()

	select {
	case <-fired:
		t.Error("callback fired after Stop")
	case <-time.After(150 * time.Millisecond):
	}
}

func TestScheduleAfterStop(t *testing.T) {
	d := New(10 * time.Millisecond)
	defer d.Stop()

	d.Schedule(func() {})
	d.Stop()

	fired := make(chan struct{}, 1)
	d.Schedule(func() { fired <- struct{}{} })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("callback scheduled after Stop never fired")
	}
}
