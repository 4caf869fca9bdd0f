// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package signals owns per-identity interaction signals: the viewed-product
// history, recommendation preferences, and recent search queries.
//
// Every operation is scoped by the caller's identity. State is persisted in
// BadgerDB under identity-derived keys and mirrored in memory, loaded
// lazily on an identity's first access. The in-memory copy is authoritative
// for the session: a storage failure on read or write is logged once at
// this boundary and otherwise swallowed, so callers never see an error from
// the exported mutators. Recommendations are an enhancement, not critical
// functionality, and a broken store must degrade to defaults rather than
// break the storefront.
//
// Every mutation publishes a ChangeEvent on the event bus, which drives
// the recommendation engine's debounced recompute.
package signals

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/metrics"
)

// Badger key prefixes. Keys are "<prefix><identity>".
const (
	viewedKeyPrefix  = "viewed:"
	prefsKeyPrefix   = "prefs:"
	queriesKeyPrefix = "queries:"
)

// identityState is one identity's session signals.
type identityState struct {
	viewed  []int
	prefs   Preferences
	queries []string
}

// Store is the per-identity signal store. Safe for concurrent use; each
// identity's signals live under their own keys, so concurrent requests for
// different identities never observe each other's state.
type Store struct {
	db        *badger.DB
	publisher message.Publisher
	logger    zerolog.Logger

	mu    sync.Mutex
	state map[string]*identityState
}

// NewStore creates a signal store over the given database. The publisher
// may be nil, in which case change events are not emitted.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewStore(db *badger.DB, publisher message.Publisher, logger zerolog.Logger) *Store {
	return &Store{
		db:        db,
		publisher: publisher,
		logger:    logger.With().Str("component", "signals").Logger(),
		state:     make(map[string]*identityState),
	}
}

// RecordView moves productID to the front of the identity's viewed history,
// evicting any duplicate and truncating to MaxViewedHistory. Never fails
// visibly.
func (s *Store) RecordView(identity string, productID int) {
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	st := s.stateLocked(identity)
	history := make([]int, 0, len(st.viewed)+1)
	history = append(history, productID)
	for _, id := range st.viewed {
		if id != productID {
			history = append(history, id)
		}
	}
	if len(history) > MaxViewedHistory {
		history = history[:MaxViewedHistory]
	}
	st.viewed = history
	s.persistLocked(viewedKeyPrefix, identity, st.viewed)
	s.mu.Unlock()

	s.publish(ChangeEvent{Identity: identity, Kind: ChangeView, ProductID: productID})
}

// ViewedHistory returns the identity's viewed product IDs, most recent
// first.
func (s *Store) ViewedHistory(identity string) []int {
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(identity)
	out := make([]int, len(st.viewed))
	copy(out, st.viewed)
	return out
}

// Preferences returns the identity's current preferences.
func (s *Store) Preferences(identity string) Preferences {
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked(identity).prefs.clone()
}

// UpdatePreferences shallow-merges the patch into the identity's stored
// preferences and persists the result. Invariants (ordered price range,
// bounded recommendation count) are re-established by clamping, not
// rejection.
func (s *Store) UpdatePreferences(identity string, patch PreferencesPatch) Preferences {
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	st := s.stateLocked(identity)
	patch.apply(&st.prefs)
	s.persistLocked(prefsKeyPrefix, identity, st.prefs)
	updated := st.prefs.clone()
	s.mu.Unlock()

	s.publish(ChangeEvent{Identity: identity, Kind: ChangePreferences})
	return updated
}

// RecordQuery moves the query to the front of the identity's recent-search
// list, deduplicated by exact string match and truncated to
// MaxRecentQueries. Empty queries are ignored.
func (s *Store) RecordQuery(identity, query string) {
	if query == "" {
		return
	}
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.stateLocked(identity)
	queries := make([]string, 0, len(st.queries)+1)
	queries = append(queries, query)
	for _, q := range st.queries {
		if q != query {
			queries = append(queries, q)
		}
	}
	if len(queries) > MaxRecentQueries {
		queries = queries[:MaxRecentQueries]
	}
	st.queries = queries
	s.persistLocked(queriesKeyPrefix, identity, st.queries)
}

// RecentQueries returns the identity's recent search queries, most recent
// first.
func (s *Store) RecentQueries(identity string) []string {
	identity = normalizeIdentity(identity)

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.stateLocked(identity)
	out := make([]string, len(st.queries))
	copy(out, st.queries)
	return out
}

// NotifyCartChange publishes a cart change event for the identity. The cart
// snapshot itself lives outside this store, but its changes drive the same
// recompute path as every other signal.
func (s *Store) NotifyCartChange(identity string) {
	s.publish(ChangeEvent{Identity: normalizeIdentity(identity), Kind: ChangeCart})
}

// normalizeIdentity maps the empty identity to the anonymous key.
func normalizeIdentity(identity string) string {
	if identity == "" {
		return AnonymousIdentity
	}
	return identity
}

// stateLocked returns the identity's cached state, loading it from storage
// on first access. Missing or unreadable data degrades to defaults.
// Must be called with mu held.
func (s *Store) stateLocked(identity string) *identityState {
	if st, ok := s.state[identity]; ok {
		return st
	}

	st := &identityState{prefs: DefaultPreferences()}
	if err := s.read(viewedKeyPrefix, identity, &st.viewed); err != nil {
		s.logReadError(viewedKeyPrefix, identity, err)
	}
	if err := s.read(prefsKeyPrefix, identity, &st.prefs); err != nil {
		s.logReadError(prefsKeyPrefix, identity, err)
		st.prefs = DefaultPreferences()
	}
	st.prefs.normalize()
	if len(st.viewed) > MaxViewedHistory {
		st.viewed = st.viewed[:MaxViewedHistory]
	}
	if err := s.read(queriesKeyPrefix, identity, &st.queries); err != nil {
		s.logReadError(queriesKeyPrefix, identity, err)
	}

	s.state[identity] = st
	return st
}

// read unmarshals the value stored under "<prefix><identity>" into target.
// A missing key is not an error; target keeps its value.
func (s *Store) read(prefix, identity string, target interface{}) error {
	if s.db == nil {
		return nil
	}

	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(prefix + identity))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get %s%s: %w", prefix, identity, err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, target)
		})
	})
}

// persistLocked writes the value under "<prefix><identity>". Failures are
// logged and swallowed; the in-memory state stays authoritative.
// Must be called with mu held.
func (s *Store) persistLocked(prefix, identity string, value interface{}) {
	if s.db == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", prefix+identity).Msg("marshal signal state failed")
		metrics.SignalStoreErrors.WithLabelValues("marshal").Inc()
		return
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(prefix+identity), data)
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("key", prefix+identity).Msg("persist signal state failed")
		metrics.SignalStoreErrors.WithLabelValues("write").Inc()
	}
}

func (s *Store) logReadError(prefix, identity string, err error) {
	s.logger.Warn().Err(err).Str("key", prefix+identity).Msg("load signal state failed, using defaults")
	metrics.SignalStoreErrors.WithLabelValues("read").Inc()
}

// publish emits a change event on the bus. Best effort; a publish failure
// only costs a recompute trigger, never data.
func (s *Store) publish(ev ChangeEvent) {
	if s.publisher == nil {
		return
	}

	msg, err := ev.MarshalMessage()
	if err != nil {
		s.logger.Warn().Err(err).Msg("marshal change event failed")
		return
	}
	if err := s.publisher.Publish(TopicChanged, msg); err != nil {
		s.logger.Warn().Err(err).Str("kind", ev.Kind).Msg("publish change event failed")
	}
}

// clone deep-copies the slice-valued fields so callers cannot mutate
// store state through a returned Preferences.
func (p Preferences) clone() Preferences {
	out := p
	out.FavoriteCategories = append([]string(nil), p.FavoriteCategories...)
	out.DislikedProductIDs = append([]int(nil), p.DislikedProductIDs...)
	return out
}
