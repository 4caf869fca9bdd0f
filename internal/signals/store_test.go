// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package signals

import (
	"io"
	"reflect"
	"sync"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dgraph-io/badger/v4"

	"github.com/dukalabs/shoprank/internal/logging"
)

// mockPublisher captures published change events.
type mockPublisher struct {
	mu     sync.Mutex
	topics []string
	events []ChangeEvent
}

func (m *mockPublisher) Publish(topic string, messages ...*message.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, msg := range messages {
		ev, err := DecodeChangeEvent(msg)
		if err != nil {
			return err
		}
		m.topics = append(m.topics, topic)
		m.events = append(m.events, ev)
	}
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []ChangeEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ChangeEvent, len(m.events))
	copy(out, m.events)
	return out
}

func newTestDB(t *testing.T) *badger.DB {
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
	return db
}

func newTestStore(t *testing.T) (*Store, *mockPublisher) {
	t.Helper()
	pub := &mockPublisher{}
	store := NewStore(newTestDB(t), pub, logging.NewTestLogger(io.Discard))
	return store, pub
}

func TestRecordViewMovesDuplicateToFront(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordView(AnonymousIdentity, 1)
	store.RecordView(AnonymousIdentity, 2)
	store.RecordView(AnonymousIdentity, 1)

	want := []int{1, 2}
	if got := store.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, want) {
		t.Errorf("history = %v, want %v", got, want)
	}
}

func TestRecordViewIdempotentForRepeatedProduct(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordView(AnonymousIdentity, 7)
	store.RecordView(AnonymousIdentity, 7)
	store.RecordView(AnonymousIdentity, 7)

	if got := store.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, []int{7}) {
		t.Errorf("history = %v, want [7]", got)
	}
}

func TestRecordViewCapsHistory(t *testing.T) {
	store, _ := newTestStore(t)

	for id := 1; id <= 25; id++ {
		store.RecordView(AnonymousIdentity, id)
	}

	got := store.ViewedHistory(AnonymousIdentity)
	if len(got) != MaxViewedHistory {
		t.Fatalf("history length = %d, want %d", len(got), MaxViewedHistory)
	}
	// Most recent first; the oldest five views fell off the end.
	if got[0] != 25 || got[len(got)-1] != 6 {
		t.Errorf("history = %v, want 25 down to 6", got)
	}
}

func TestRecordViewPublishesChangeEvent(t *testing.T) {
	store, pub := newTestStore(t)

	store.RecordView(AnonymousIdentity, 3)

	events := pub.published()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	want := ChangeEvent{Identity: AnonymousIdentity, Kind: ChangeView, ProductID: 3}
	if events[0] != want {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}
}

func TestEmptyIdentityIsAnonymous(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordView("", 5)

	if got := store.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, []int{5}) {
		t.Errorf("anonymous history = %v, want [5]", got)
	}
}

func TestViewsAreIsolatedPerIdentity(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordView(AnonymousIdentity, 1)
	store.RecordView(AnonymousIdentity, 2)
	store.RecordView("user-42", 9)

	if got := store.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Errorf("anonymous history = %v, want [2 1]", got)
	}
	if got := store.ViewedHistory("user-42"); !reflect.DeepEqual(got, []int{9}) {
		t.Errorf("user-42 history = %v, want [9]", got)
	}
	if got := store.ViewedHistory("user-7"); len(got) != 0 {
		t.Errorf("fresh identity history = %v, want empty (no migration)", got)
	}
}

func TestConcurrentViewsStayWithTheirIdentity(t *testing.T) {
	store, _ := newTestStore(t)

	// Interleaved writers for two identities must never cross streams.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.RecordView("alice", 1)
		}()
		go func() {
			defer wg.Done()
			store.RecordView("bob", 2)
		}()
	}
	wg.Wait()

	if got := store.ViewedHistory("alice"); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("alice history = %v, want [1]", got)
	}
	if got := store.ViewedHistory("bob"); !reflect.DeepEqual(got, []int{2}) {
		t.Errorf("bob history = %v, want [2]", got)
	}
}

func TestStateReloadsFromStorage(t *testing.T) {
	db := newTestDB(t)
	logger := logging.NewTestLogger(io.Discard)

	first := NewStore(db, nil, logger)
	first.RecordView(AnonymousIdentity, 1)
	first.RecordView(AnonymousIdentity, 2)
	first.RecordView("user-42", 9)

	// A fresh store over the same database lazily loads each identity's
	// persisted state under its own keys.
	second := NewStore(db, nil, logger)
	if got := second.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, []int{2, 1}) {
		t.Errorf("anonymous history = %v, want [2 1]", got)
	}
	if got := second.ViewedHistory("user-42"); !reflect.DeepEqual(got, []int{9}) {
		t.Errorf("user-42 history = %v, want [9]", got)
	}
}

func TestRecordQueryDedupesAndCaps(t *testing.T) {
	store, _ := newTestStore(t)

	for _, q := range []string{"a", "b", "c", "a", "d", "e", "f"} {
		store.RecordQuery(AnonymousIdentity, q)
	}

	want := []string{"f", "e", "d", "a", "c"}
	if got := store.RecentQueries(AnonymousIdentity); !reflect.DeepEqual(got, want) {
		t.Errorf("queries = %v, want %v", got, want)
	}
}

func TestRecordQueryIgnoresEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	store.RecordQuery(AnonymousIdentity, "")
	if got := store.RecentQueries(AnonymousIdentity); len(got) != 0 {
		t.Errorf("queries = %v, want empty", got)
	}
}

func TestUpdatePreferencesClampsAndPersists(t *testing.T) {
	store, pub := newTestStore(t)

	reversed := [2]float64{800, 100}
	count := 99
	updated := store.UpdatePreferences(AnonymousIdentity, PreferencesPatch{
		PreferredPriceRange: &reversed,
		RecommendationCount: &count,
	})

	if updated.PreferredPriceRange != [2]float64{100, 800} {
		t.Errorf("price range = %v, want [100 800]", updated.PreferredPriceRange)
	}
	if updated.RecommendationCount != MaxRecommendationCount {
		t.Errorf("count = %d, want %d", updated.RecommendationCount, MaxRecommendationCount)
	}

	events := pub.published()
	if len(events) != 1 || events[0].Kind != ChangePreferences {
		t.Errorf("events = %+v, want one preferences change", events)
	}
}

func TestPreferencesReturnsIndependentCopy(t *testing.T) {
	store, _ := newTestStore(t)

	favorites := []string{"Kitchen"}
	store.UpdatePreferences(AnonymousIdentity, PreferencesPatch{FavoriteCategories: &favorites})

	got := store.Preferences(AnonymousIdentity)
	got.FavoriteCategories[0] = "mutated"

	if store.Preferences(AnonymousIdentity).FavoriteCategories[0] != "Kitchen" {
		t.Error("mutating a returned Preferences leaked into the store")
	}
}

func TestNotifyCartChangePublishesEvent(t *testing.T) {
	store, pub := newTestStore(t)

	store.NotifyCartChange("alice")

	events := pub.published()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	want := ChangeEvent{Identity: "alice", Kind: ChangeCart}
	if events[0] != want {
		t.Errorf("event = %+v, want %+v", events[0], want)
	}
}

func TestStoreDegradesWithoutDatabase(t *testing.T) {
	store := NewStore(nil, nil, logging.NewTestLogger(io.Discard))

	store.RecordView(AnonymousIdentity, 1)
	store.RecordQuery(AnonymousIdentity, "ear")

	if got := store.ViewedHistory(AnonymousIdentity); !reflect.DeepEqual(got, []int{1}) {
		t.Errorf("history = %v, want [1]", got)
	}
	if got := store.Preferences(AnonymousIdentity); got.RecommendationCount != 8 {
		t.Errorf("default count = %d, want 8", got.RecommendationCount)
	}
}
