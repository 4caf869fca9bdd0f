// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package analytics

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/dukalabs/shoprank/internal/logging"
	"github.com/dukalabs/shoprank/internal/search"
)

func newTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("close badger: %v", err)
		}
	})

	r := NewRecorder(db, logging.NewTestLogger(io.Discard))
	r.now = func() time.Time { return time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC) }
	return r
}

func TestTrackSearchNewestFirst(t *testing.T) {
	r := newTestRecorder(t)

	r.TrackSearch("anonymous", "earbuds", 2, search.Query{Text: "earbuds"})
	r.TrackSearch("anonymous", "espresso", 1, search.Query{Text: "espresso"})

	log := r.SearchLog("anonymous")
	if len(log) != 2 {
		t.Fatalf("log length = %d, want 2", len(log))
	}
	if log[0].Query != "espresso" || log[1].Query != "earbuds" {
		t.Errorf("log order = [%s %s], want newest first", log[0].Query, log[1].Query)
	}
	if log[0].ResultsCount != 1 {
		t.Errorf("ResultsCount = %d, want 1", log[0].ResultsCount)
	}
}

func TestTrackSearchEvictsOldestBeyondCap(t *testing.T) {
	r := newTestRecorder(t)

	for i := 1; i <= MaxSearchEvents+5; i++ {
		r.TrackSearch("anonymous", fmt.Sprintf("query-%d", i), i, search.Query{})
	}

	log := r.SearchLog("anonymous")
	if len(log) != MaxSearchEvents {
		t.Fatalf("log length = %d, want %d", len(log), MaxSearchEvents)
	}
	if log[0].Query != "query-25" {
		t.Errorf("newest = %s, want query-25", log[0].Query)
	}
	if log[len(log)-1].Query != "query-6" {
		t.Errorf("oldest kept = %s, want query-6", log[len(log)-1].Query)
	}
}

func TestSearchLogsAreIsolatedByIdentity(t *testing.T) {
	r := newTestRecorder(t)

	r.TrackSearch("alice", "knife", 1, search.Query{})
	r.TrackSearch("bob", "mat", 1, search.Query{})

	if log := r.SearchLog("alice"); len(log) != 1 || log[0].Query != "knife" {
		t.Errorf("alice log = %+v, want only her search", log)
	}
	if log := r.SearchLog("carol"); len(log) != 0 {
		t.Errorf("carol log = %+v, want empty", log)
	}
}

func TestTrackEngagementAppendOrder(t *testing.T) {
	r := newTestRecorder(t)

	r.TrackView("anonymous", 1, "Wireless Earbuds", "trending", 0.5)
	r.TrackClick("anonymous", 1, "Wireless Earbuds", "trending", 0.5)
	r.TrackView("anonymous", 3, "Espresso Maker", "viewed", 0.9)

	log := r.EngagementLog("anonymous")
	if len(log) != 3 {
		t.Fatalf("log length = %d, want 3", len(log))
	}

	wantEvents := []string{"view", "click", "view"}
	for i, want := range wantEvents {
		if log[i].Event != want {
			t.Errorf("event[%d] = %s, want %s", i, log[i].Event, want)
		}
	}
	if log[1].ProductID != 1 || log[1].RecommendationType != "trending" {
		t.Errorf("click entry = %+v", log[1])
	}
}

func TestRecorderDegradesWithoutDatabase(t *testing.T) {
	r := NewRecorder(nil, logging.NewTestLogger(io.Discard))

	// Tracking must not panic; reads just come back empty.
	r.TrackSearch("anonymous", "earbuds", 2, search.Query{})
	if log := r.SearchLog("anonymous"); len(log) != 0 {
		t.Errorf("log = %+v, want empty without storage", log)
	}
}
