// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package search

import (
	"sync"
	"time"

	"github.com/dukalabs/shoprank/internal/debounce"
)

// DefaultSettleDelay is the window after which a query is considered
// settled rather than an in-flight keystroke.
const DefaultSettleDelay = 500 * time.Millisecond

// Observation is a settled search passed to the Tracker's commit function.
type Observation struct {
	Identity    string
	Query       Query
	ResultCount int
}

// Tracker debounces per-identity search observations so that a burst of
// keystroke searches ("e", "ea", "ear") commits only the final settled
// query. A newer observation within the window supersedes the pending
// one; there is no in-flight work to cancel, only the stale callback to
// discard. Commit typically records the query in the signal store and
// appends a search analytics event.
type Tracker struct {
	delay  time.Duration
	commit func(Observation)

	// debounces holds one window per identity with a commit pending;
	// entries are removed when their commit fires, so the map stays
	// bounded by in-flight identities rather than every identity seen.
	mu        sync.Mutex
	debounces map[string]*debounce.Debouncer
}

// NewTracker creates a tracker with the given settle window. A
// non-positive delay commits synchronously.
func NewTracker(delay time.Duration, commit func(Observation)) *Tracker {
	return &Tracker{
		delay:     delay,
		commit:    commit,
		debounces: make(map[string]*debounce.Debouncer),
	}
}

// Observe schedules the observation for commit once the identity's input
// activity pauses, superseding any pending observation.
func (t *Tracker) Observe(obs Observation) {
	t.mu.Lock()
	d, ok := t.debounces[obs.Identity]
	if !ok {
		d = debounce.New(t.delay)
		t.debounces[obs.Identity] = d
	}
	t.mu.Unlock()

	d.Schedule(func() {
		t.mu.Lock()
		if t.debounces[obs.Identity] == d {
			delete(t.debounces, obs.Identity)
		}
		t.mu.Unlock()
		t.commit(obs)
	})
}

// Stop cancels all pending commits.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for identity, d := range t.debounces {
		d.Stop()
		delete(t.debounces, identity)
	}
}
