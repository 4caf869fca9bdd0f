// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package recommend composes heuristic recommendation strategies over the
// catalog index and the per-identity signal store.
//
// Strategies run in a fixed order — viewed-based, collaborative, trending
// fallback, random fallback — and are exclusively additive: no strategy
// removes another's candidates. A global de-duplication by product ID
// applies across strategies, first occurrence wins. The merged list is
// truncated to Config.MaxCandidates before the filter layer runs.
//
// Recomputation is total, reactive, and per identity: every signal-store
// mutation publishes a change event carrying the identity it belongs to,
// the consumer debounces bursts per identity, and the recompute rebuilds
// that identity's derived list from current inputs rather than patching
// incrementally. Nothing in this package returns an error to the
// presentation layer; missing inputs simply mean a strategy contributes
// zero candidates.
package recommend

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/catalog"
	"github.com/dukalabs/shoprank/internal/debounce"
	"github.com/dukalabs/shoprank/internal/metrics"
)

// Engine produces ranked recommendation candidates. Safe for concurrent
// use; derived lists and debounce windows are keyed by identity.
type Engine struct {
	config  Config
	catalog *catalog.Index
	signals SignalSource
	cart    CartProvider
	logger  zerolog.Logger

	rng   *rand.Rand
	rngMu sync.Mutex

	// debounces holds one window per identity with a recompute pending;
	// entries are removed when their recompute fires.
	debounceMu sync.Mutex
	debounces  map[string]*debounce.Debouncer

	// current holds the continuously updated derived list per identity.
	mu      sync.RWMutex
	current map[string][]Candidate
}

// NewEngine creates a recommendation engine over the given collaborators.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewEngine(cfg Config, idx *catalog.Index, src SignalSource, cart CartProvider, logger zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		config:    cfg,
		catalog:   idx,
		signals:   src,
		cart:      cart,
		logger:    logger.With().Str("component", "recommend").Logger(),
		rng:       rand.New(rand.NewSource(seed)), //nolint:gosec // math/rand is fine for fallback shuffling
		debounces: make(map[string]*debounce.Debouncer),
		current:   make(map[string][]Candidate),
	}, nil
}

// Personalized computes a fresh ranked candidate list from the identity's
// current signals, optionally restricted by the filter. The result is
// already passed through the preference layer: disliked products are
// removed and favorite categories are boosted.
func (e *Engine) Personalized(identity string, filter *Filter) []Candidate {
	prefs := e.signals.Preferences(identity)
	viewed := e.signals.ViewedHistory(identity)
	cartIDs := e.cartProductIDs(identity)

	merged := e.compose(viewed, cartIDs, prefs.RecommendationCount, prefs.StrategyEnabled)

	if filter != nil {
		merged = ApplyFilters(merged, *filter)
	}
	merged = ApplyUserPreferences(merged, prefs.FavoriteCategories, prefs.DislikedProductIDs)

	if len(merged) > prefs.RecommendationCount {
		merged = merged[:prefs.RecommendationCount]
	}
	return merged
}

// ForProduct returns products sharing a category with the given product,
// independent of viewed history. Used for "more like this" sections.
func (e *Engine) ForProduct(productID, limit int) []catalog.Product {
	related := e.catalog.Related(productID)
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related
}

// RecordProductView records the view in the signal store and schedules a
// recomputation of the identity's derived list.
func (e *Engine) RecordProductView(identity string, productID int) {
	e.signals.RecordView(identity, productID)
	e.ScheduleRecompute(identity)
}

// Recommended returns the identity's derived list as of its last recompute.
func (e *Engine) Recommended(identity string) []Candidate {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Candidate, len(e.current[identity]))
	copy(out, e.current[identity])
	return out
}

// ScheduleRecompute arranges a debounced total recomputation for the
// identity. Triggers within the window coalesce; only the newest fires.
// Identities never share a window.
func (e *Engine) ScheduleRecompute(identity string) {
	e.debounceMu.Lock()
	d, ok := e.debounces[identity]
	if !ok {
		d = debounce.New(e.config.DebounceDelay)
		e.debounces[identity] = d
	}
	e.debounceMu.Unlock()

	d.Schedule(func() {
		e.debounceMu.Lock()
		if e.debounces[identity] == d {
			delete(e.debounces, identity)
		}
		e.debounceMu.Unlock()
		e.Recompute(identity)
	})
}

// Recompute fully rebuilds the identity's derived list from current
// inputs. Idempotent and total: no incremental patching, so there is no
// partial-update hazard.
func (e *Engine) Recompute(identity string) {
	start := time.Now()
	result := e.Personalized(identity, nil)

	e.mu.Lock()
	e.current[identity] = result
	e.mu.Unlock()

	metrics.RecomputeTotal.Inc()
	metrics.RecomputeDuration.Observe(time.Since(start).Seconds())
	e.logger.Debug().
		Str("identity", identity).
		Int("candidates", len(result)).
		Dur("elapsed", time.Since(start)).
		Msg("recompute complete")
}

// Stop cancels every pending debounced recompute.
func (e *Engine) Stop() {
	e.debounceMu.Lock()
	defer e.debounceMu.Unlock()
	for identity, d := range e.debounces {
		d.Stop()
		delete(e.debounces, identity)
	}
}

// compose runs the strategies in fixed order and merges their output with
// first-wins de-duplication by product ID, truncated to MaxCandidates.
func (e *Engine) compose(viewed, cartIDs []int, requested int, enabled func(string) bool) []Candidate {
	seen := make(map[int]struct{})
	inCart := toSet(cartIDs)
	inHistory := toSet(viewed)

	var merged []Candidate
	add := func(cands []Candidate) {
		for _, c := range cands {
			if _, dup := seen[c.Product.ID]; dup {
				continue
			}
			seen[c.Product.ID] = struct{}{}
			merged = append(merged, c)
			metrics.StrategyCandidates.WithLabelValues(string(c.Strategy)).Inc()
		}
	}

	if enabled(string(StrategyViewed)) {
		add(e.viewedCandidates(viewed, inCart))
	}

	// Collaborative only runs when the cart holds items and the viewed
	// strategy did not already fill the requested count.
	if enabled(string(StrategyCollaborative)) && len(cartIDs) > 0 && len(merged) < requested {
		add(e.collaborativeCandidates(cartIDs, inCart, inHistory))
	}

	if enabled(string(StrategyTrending)) && len(merged) < e.config.FillFloor {
		add(e.trendingCandidates(seen, inCart))
	}

	if enabled(string(StrategyRandom)) && len(merged) < e.config.FillFloor {
		add(e.randomCandidates(seen, inCart, requested-len(merged)))
	}

	if len(merged) > e.config.MaxCandidates {
		merged = merged[:e.config.MaxCandidates]
	}
	return merged
}

func (e *Engine) cartProductIDs(identity string) []int {
	if e.cart == nil {
		return nil
	}
	return e.cart.ProductIDs(identity)
}

func toSet(ids []int) map[int]struct{} {
	set := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
