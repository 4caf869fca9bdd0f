// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package recommend

import "github.com/dukalabs/shoprank/internal/catalog"

// viewedCandidates expands each viewed product (most recent first) into
// its same-category relatives, excluding the viewed product itself and
// anything in the cart. Confidence is proportional to recency rank: the
// most recent view yields the highest confidence.
func (e *Engine) viewedCandidates(viewed []int, inCart map[int]struct{}) []Candidate {
	if len(viewed) == 0 {
		return nil
	}

	n := float64(len(viewed))
	var out []Candidate
	for rank, id := range viewed {
		confidence := 1.0 - 0.5*float64(rank)/n
		for _, p := range e.catalog.Related(id) {
			if _, skip := inCart[p.ID]; skip {
				continue
			}
			out = append(out, Candidate{Product: p, Strategy: StrategyViewed, Confidence: confidence})
		}
	}
	return out
}

// collaborativeCandidates pairs each cart item with products frequently
// bought alongside it — approximated by category co-membership — excluding
// items already in the cart or already viewed.
func (e *Engine) collaborativeCandidates(cartIDs []int, inCart, inHistory map[int]struct{}) []Candidate {
	var out []Candidate
	for _, id := range cartIDs {
		for _, p := range e.catalog.Related(id) {
			if _, skip := inCart[p.ID]; skip {
				continue
			}
			if _, skip := inHistory[p.ID]; skip {
				continue
			}
			out = append(out, Candidate{Product: p, Strategy: StrategyCollaborative, Confidence: 0.6})
		}
	}
	return out
}

// trendingCandidates tops the list off with catalog entries carrying the
// precomputed trending signal, in catalog declaration order, excluding
// anything already present or in the cart.
func (e *Engine) trendingCandidates(seen, inCart map[int]struct{}) []Candidate {
	var out []Candidate
	for _, p := range e.catalog.Trending() {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if _, skip := inCart[p.ID]; skip {
			continue
		}
		out = append(out, Candidate{Product: p, Strategy: StrategyTrending, Confidence: 0.5})
	}
	return out
}

// randomCandidates fills remaining slots with pseudo-random catalog
// entries, excluding every previously excluded set. The engine's seeded
// source keeps output deterministic for a given seed.
func (e *Engine) randomCandidates(seen, inCart map[int]struct{}, slots int) []Candidate {
	if slots <= 0 {
		return nil
	}

	var pool []catalog.Product
	for _, p := range e.catalog.Products() {
		if _, dup := seen[p.ID]; dup {
			continue
		}
		if _, skip := inCart[p.ID]; skip {
			continue
		}
		pool = append(pool, p)
	}

	e.rngMu.Lock()
	e.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	e.rngMu.Unlock()

	if len(pool) > slots {
		pool = pool[:slots]
	}

	out := make([]Candidate, 0, len(pool))
	for _, p := range pool {
		out = append(out, Candidate{Product: p, Strategy: StrategyRandom, Confidence: 0.3})
	}
	return out
}
