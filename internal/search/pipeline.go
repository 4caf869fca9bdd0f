// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package search implements the catalog search pipeline: free-text match,
// structured filters, stable sort, and pagination, plus autocomplete over
// category labels and recent queries.
//
// The pipeline stages run in fixed order — text match, structured
// criteria, sort, paginate — and every sort is stable with respect to
// ties, so equal-keyed products keep their filter order.
package search

import (
	"math"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/catalog"
	"github.com/dukalabs/shoprank/internal/metrics"
)

// DefaultPageSize is used when a request does not specify a page size.
const DefaultPageSize = 12

// Pipeline runs searches over a catalog index. Stateless and safe for
// concurrent use.
type Pipeline struct {
	catalog *catalog.Index
	logger  zerolog.Logger
}

// NewPipeline creates a search pipeline over the given index.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewPipeline(idx *catalog.Index, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		catalog: idx,
		logger:  logger.With().Str("component", "search").Logger(),
	}
}

// Search runs the full pipeline and returns one page of results.
func (p *Pipeline) Search(query Query, page Page) Result {
	start := time.Now()

	filtered := p.filter(query)
	p.sortProducts(filtered, query.Sort)
	result := paginate(filtered, page)

	metrics.SearchDuration.Observe(time.Since(start).Seconds())
	metrics.SearchResults.Observe(float64(result.TotalCount))
	p.logger.Debug().
		Str("text", query.Text).
		Int("total", result.TotalCount).
		Int("page", result.Page).
		Msg("search complete")

	return result
}

// filter applies the text match and the structured criteria in order.
func (p *Pipeline) filter(query Query) []catalog.Product {
	priceMin, priceMax := query.PriceRange[0], query.PriceRange[1]
	filterCategory := query.Category != "" && query.Category != CategoryAll

	var out []catalog.Product
	for _, product := range p.catalog.Products() {
		if !product.MatchText(query.Text) {
			continue
		}
		if filterCategory && product.Category != query.Category {
			continue
		}
		// Both price bounds are inclusive; a zero bound is absent, so
		// min-only and max-only queries leave the other side unbounded.
		if priceMin > 0 && product.Price < priceMin {
			continue
		}
		if priceMax > 0 && product.Price > priceMax {
			continue
		}
		if product.Rating < query.MinRating {
			continue
		}
		out = append(out, product)
	}
	return out
}

// sortProducts orders the filtered set in place. Relevance keeps the
// natural filter order.
func (p *Pipeline) sortProducts(products []catalog.Product, order SortOrder) {
	switch order {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price < products[j].Price
		})
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Price > products[j].Price
		})
	case SortRatingDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].Rating > products[j].Rating
		})
	case SortRelevance:
		// Natural order.
	}
}

// paginate slices the filtered set into the requested window. A page
// beyond the last silently resets to page 1.
func paginate(products []catalog.Product, page Page) Result {
	if page.Size <= 0 {
		page.Size = DefaultPageSize
	}
	if page.Number < 1 {
		page.Number = 1
	}

	totalPages := int(math.Ceil(float64(len(products)) / float64(page.Size)))
	if page.Number > totalPages {
		page.Number = 1
	}

	startIdx := (page.Number - 1) * page.Size
	endIdx := startIdx + page.Size
	if startIdx > len(products) {
		startIdx = len(products)
	}
	if endIdx > len(products) {
		endIdx = len(products)
	}

	items := make([]catalog.Product, endIdx-startIdx)
	copy(items, products[startIdx:endIdx])

	return Result{
		Items:      items,
		TotalCount: len(products),
		TotalPages: totalPages,
		Page:       page.Number,
	}
}
