// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package analytics records search and recommendation interaction events
// to capped, FIFO-truncated per-identity logs in BadgerDB.
//
// The recorder is write-mostly: other components only append. Storage
// failures (quota, serialization) are logged and swallowed; analytics are
// an inspection aid, never worth failing a request over.
package analytics

import (
	"errors"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/metrics"
	"github.com/dukalabs/shoprank/internal/search"
)

// MaxSearchEvents caps the per-identity search log; the oldest entries
// are evicted first.
const MaxSearchEvents = 20

// Badger key prefixes. Keys are "<prefix><identity>".
const (
	searchLogKeyPrefix     = "analytics:search:"
	engagementLogKeyPrefix = "analytics:clicks:"
)

// SearchEvent is one recorded search.
type SearchEvent struct {
	Query        string       `json:"query"`
	Timestamp    time.Time    `json:"timestamp"`
	ResultsCount int          `json:"resultsCount"`
	Filters      search.Query `json:"filters"`
}

// EngagementEvent is one recorded recommendation view or click.
type EngagementEvent struct {
	ProductID          int       `json:"productId"`
	ProductName        string    `json:"productName"`
	RecommendationType string    `json:"recommendationType"`
	Confidence         float64   `json:"confidence"`
	Event              string    `json:"event"` // "view" or "click"
	Timestamp          time.Time `json:"timestamp"`
}

// Recorder appends analytics events to per-identity logs.
// Safe for concurrent use.
type Recorder struct {
	db     *badger.DB
	logger zerolog.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewRecorder creates a recorder over the given store.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewRecorder(db *badger.DB, logger zerolog.Logger) *Recorder {
	return &Recorder{
		db:     db,
		logger: logger.With().Str("component", "analytics").Logger(),
		now:    time.Now,
	}
}

// TrackSearch appends a search event, evicting the oldest entry beyond
// MaxSearchEvents.
func (r *Recorder) TrackSearch(identity, query string, resultsCount int, filters search.Query) {
	event := SearchEvent{
		Query:        query,
		Timestamp:    r.now(),
		ResultsCount: resultsCount,
		Filters:      filters,
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var log []SearchEvent
	r.load(searchLogKeyPrefix+identity, &log)
	log = append([]SearchEvent{event}, log...)
	if len(log) > MaxSearchEvents {
		log = log[:MaxSearchEvents]
	}
	r.store(searchLogKeyPrefix+identity, log)
	metrics.AnalyticsEvents.WithLabelValues("search").Inc()
}

// TrackView appends a recommendation impression to the engagement log.
func (r *Recorder) TrackView(identity string, productID int, productName, recommendationType string, confidence float64) {
	r.trackEngagement(identity, "view", productID, productName, recommendationType, confidence)
}

// TrackClick appends a recommendation click to the engagement log.
func (r *Recorder) TrackClick(identity string, productID int, productName, recommendationType string, confidence float64) {
	r.trackEngagement(identity, "click", productID, productName, recommendationType, confidence)
}

func (r *Recorder) trackEngagement(identity, event string, productID int, productName, recommendationType string, confidence float64) {
	entry := EngagementEvent{
		ProductID:          productID,
		ProductName:        productName,
		RecommendationType: recommendationType,
		Confidence:         confidence,
		Event:              event,
		Timestamp:          r.now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	var log []EngagementEvent
	r.load(engagementLogKeyPrefix+identity, &log)
	log = append(log, entry)
	r.store(engagementLogKeyPrefix+identity, log)
	metrics.AnalyticsEvents.WithLabelValues(event).Inc()
}

// SearchLog returns the recorded searches for an identity, newest first.
func (r *Recorder) SearchLog(identity string) []SearchEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var log []SearchEvent
	r.load(searchLogKeyPrefix+identity, &log)
	return log
}

// EngagementLog returns the recorded views and clicks for an identity in
// append order.
func (r *Recorder) EngagementLog(identity string) []EngagementEvent {
	r.mu.Lock()
	defer r.mu.Unlock()

	var log []EngagementEvent
	r.load(engagementLogKeyPrefix+identity, &log)
	return log
}

// load reads a log; missing keys and parse failures leave target empty.
func (r *Recorder) load(key string, target interface{}) {
	if r.db == nil {
		return
	}

	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, target)
		})
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("load analytics log failed, starting empty")
	}
}

// store writes a log; failures are logged and swallowed.
func (r *Recorder) store(key string, value interface{}) {
	if r.db == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("marshal analytics log failed")
		return
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("persist analytics log failed")
	}
}
