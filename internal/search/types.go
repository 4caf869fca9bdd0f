// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package search

import "github.com/dukalabs/shoprank/internal/catalog"

// SortOrder selects the result ordering.
type SortOrder string

// Supported sort orders. Relevance applies no reordering beyond the
// pipeline's natural filter order.
const (
	SortRelevance  SortOrder = "relevance"
	SortPriceAsc   SortOrder = "price_asc"
	SortPriceDesc  SortOrder = "price_desc"
	SortRatingDesc SortOrder = "rating_desc"
)

// Valid reports whether the sort order is supported.
func (s SortOrder) Valid() bool {
	switch s {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortRatingDesc:
		return true
	default:
		return false
	}
}

// CategoryAll disables category filtering.
const CategoryAll = "all"

// Query is the full search query state: free text plus structured filters.
type Query struct {
	// Text is the free-text query. Empty matches everything.
	Text string `json:"text"`

	// PriceRange is [min, max], both bounds inclusive. A zero bound is
	// absent: [50, 0] keeps everything priced 50 and up.
	PriceRange [2]float64 `json:"price_range"`

	// Category restricts to one category; CategoryAll or empty disables.
	Category string `json:"category"`

	// MinRating keeps products rated at or above this value (0-5).
	MinRating float64 `json:"min_rating"`

	// Sort selects the result ordering. Empty means relevance.
	Sort SortOrder `json:"sort"`
}

// Page selects a result window.
type Page struct {
	// Number is the 1-based page number.
	Number int `json:"number"`

	// Size is the fixed page size for the view.
	Size int `json:"size"`
}

// Result is one paginated search response.
type Result struct {
	// Items is the current page of products.
	Items []catalog.Product `json:"items"`

	// TotalCount is the size of the filtered result set.
	TotalCount int `json:"total_count"`

	// TotalPages is ceil(TotalCount / page size).
	TotalPages int `json:"total_pages"`

	// Page is the page actually served. When the requested page exceeds
	// TotalPages the pipeline resets to page 1, and this reports that.
	Page int `json:"page"`
}
