// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package recommend

import (
	"github.com/dukalabs/shoprank/internal/catalog"
	"github.com/dukalabs/shoprank/internal/signals"
)

// Strategy identifies the heuristic that produced a candidate.
type Strategy string

// Known strategies. Viewed, collaborative, trending, and random are
// produced by the composition pipeline; purchased, similar, and seasonal
// appear on narrower lookups and are accepted by the filter layer.
const (
	StrategyViewed        Strategy = "viewed"
	StrategyPurchased     Strategy = "purchased"
	StrategySimilar       Strategy = "similar"
	StrategyTrending      Strategy = "trending"
	StrategyCollaborative Strategy = "collaborative"
	StrategySeasonal      Strategy = "seasonal"
	StrategyRandom        Strategy = "random"
)

// Valid reports whether the strategy is one of the known names.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyViewed, StrategyPurchased, StrategySimilar, StrategyTrending,
		StrategyCollaborative, StrategySeasonal, StrategyRandom:
		return true
	default:
		return false
	}
}

// Candidate is a product paired with its provenance. Candidates are
// ephemeral: constructed fresh on every recomputation, never persisted.
type Candidate struct {
	// Product is the underlying catalog entry.
	Product catalog.Product `json:"product"`

	// Strategy names the heuristic that produced this candidate.
	Strategy Strategy `json:"strategy"`

	// Confidence is the strategy's confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Filter restricts a candidate list. Zero-valued fields impose no
// restriction.
type Filter struct {
	// Types keeps only candidates from the listed strategies.
	Types []Strategy `json:"types,omitempty"`

	// Categories keeps only candidates in the listed categories.
	Categories []string `json:"categories,omitempty"`

	// MinConfidence keeps only candidates with confidence >= this value.
	MinConfidence float64 `json:"min_confidence,omitempty"`
}

// SignalSource is the slice of the signal store the engine consumes.
// Every read and write is scoped by identity.
type SignalSource interface {
	ViewedHistory(identity string) []int
	Preferences(identity string) signals.Preferences
	RecordView(identity string, productID int)
}

// CartProvider exposes an identity's current cart line items' product IDs.
// The cart itself belongs to the external storefront.
type CartProvider interface {
	ProductIDs(identity string) []int
}
