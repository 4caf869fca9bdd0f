// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package catalog provides the read-only in-memory product index.
//
// The index is built once from the catalog of record (a JSON snapshot) and
// serves lookups by ID, category groupings, and the precomputed trending
// set. All accessor results follow catalog declaration order, which the
// recommendation strategies rely on for deterministic iteration.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// Index is the in-memory product collection. Immutable after construction
// and safe for concurrent use.
type Index struct {
	products   []Product
	byID       map[int]int // product ID -> index into products
	byCategory map[string][]int
	categories []string
	trending   []int
}

// NewIndex builds an index from the given products. Entries are validated;
// a validation failure on any entry fails the whole build since a partial
// catalog would silently skew recommendations.
func NewIndex(products []Product) (*Index, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	idx := &Index{
		products:   make([]Product, 0, len(products)),
		byID:       make(map[int]int, len(products)),
		byCategory: make(map[string][]int),
	}

	for i, p := range products {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("invalid product at position %d (id=%d): %w", i, p.ID, err)
		}
		if _, exists := idx.byID[p.ID]; exists {
			return nil, fmt.Errorf("duplicate product id %d", p.ID)
		}

		pos := len(idx.products)
		idx.products = append(idx.products, p)
		idx.byID[p.ID] = pos

		if p.Category != "" {
			if _, seen := idx.byCategory[p.Category]; !seen {
				idx.categories = append(idx.categories, p.Category)
			}
			idx.byCategory[p.Category] = append(idx.byCategory[p.Category], pos)
		}
		if p.Trending {
			idx.trending = append(idx.trending, pos)
		}
	}

	return idx, nil
}

// LoadFile reads a JSON catalog snapshot and builds an index from it.
// The file holds a flat array of products.
func LoadFile(path string) (*Index, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from validated config
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var products []Product
	if err := json.Unmarshal(data, &products); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}

	return NewIndex(products)
}

// Len returns the number of products in the index.
func (idx *Index) Len() int {
	return len(idx.products)
}

// Products returns all products in catalog declaration order.
// The returned slice is a copy.
func (idx *Index) Products() []Product {
	out := make([]Product, len(idx.products))
	copy(out, idx.products)
	return out
}

// Get returns the product with the given ID.
func (idx *Index) Get(id int) (Product, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return Product{}, false
	}
	return idx.products[pos], true
}

// Categories returns all category labels in first-seen order.
func (idx *Index) Categories() []string {
	out := make([]string, len(idx.categories))
	copy(out, idx.categories)
	return out
}

// ByCategory returns all products in the given category in declaration order.
func (idx *Index) ByCategory(category string) []Product {
	positions := idx.byCategory[category]
	out := make([]Product, 0, len(positions))
	for _, pos := range positions {
		out = append(out, idx.products[pos])
	}
	return out
}

// Trending returns products carrying the trending signal in declaration order.
func (idx *Index) Trending() []Product {
	out := make([]Product, 0, len(idx.trending))
	for _, pos := range idx.trending {
		out = append(out, idx.products[pos])
	}
	return out
}

// Related returns products sharing a category with the given product,
// excluding the product itself. Returns nil when the product is unknown or
// has no category.
func (idx *Index) Related(id int) []Product {
	p, ok := idx.Get(id)
	if !ok || p.Category == "" {
		return nil
	}

	var out []Product
	for _, pos := range idx.byCategory[p.Category] {
		if idx.products[pos].ID == id {
			continue
		}
		out = append(out, idx.products[pos])
	}
	return out
}

// MatchText reports whether the product matches a case-insensitive
// free-text query against name, description, or category. An empty query
// matches everything.
func (p Product) MatchText(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(p.Name), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Category), q)
}
