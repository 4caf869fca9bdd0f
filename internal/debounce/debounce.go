// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package debounce provides a cancellable timer that coalesces bursts of
// triggers: only the most recently scheduled function within the window
// fires. Scheduling again before the window elapses discards the pending
// callback and restarts the window.
package debounce

import (
	"sync"
	"time"
)

// Debouncer coalesces scheduled calls. Safe for concurrent use.
// The zero value is not usable; construct with New.
type Debouncer struct {
	delay time.Duration

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

// New creates a debouncer with the given window. A non-positive delay
// means callbacks run synchronously on Schedule, which keeps call sites
// simple in tests.
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Schedule arranges for fn to run after the window elapses, superseding
// any previously scheduled function that has not yet fired.
func (d *Debouncer) Schedule(fn func()) {
	if d.delay <= 0 {
		fn()
		return
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		// A Stop that loses the race with the timer firing is caught
		// here: a stale generation means a newer Schedule superseded us.
		d.mu.Lock()
		stale := gen != d.gen
		d.mu.Unlock()
		if !stale {
			fn()
		}
	})
}

// Stop cancels any pending callback.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}
