// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package cart holds client-reported cart snapshots, one per identity.
//
// The cart itself is owned by the external storefront; this service only
// consumes its line items as a recommendation signal. Clients push their
// current cart via the API and the snapshot replaces that identity's
// previous one wholesale.
package cart

import "sync"

// Item is a single cart line item.
type Item struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
	Quantity  int `json:"quantity" validate:"required,gt=0"`
}

// Snapshot is a thread-safe holder for per-identity cart contents.
type Snapshot struct {
	mu    sync.RWMutex
	items map[string][]Item
}

// NewSnapshot creates an empty cart snapshot.
func NewSnapshot() *Snapshot {
	return &Snapshot{items: make(map[string][]Item)}
}

// Replace swaps the identity's snapshot for the given line items. An empty
// replacement drops the identity's entry entirely.
func (s *Snapshot) Replace(identity string, items []Item) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(items) == 0 {
		delete(s.items, identity)
		return
	}
	copied := make([]Item, len(items))
	copy(copied, items)
	s.items[identity] = copied
}

// Items returns a copy of the identity's current line items.
func (s *Snapshot) Items(identity string) []Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Item, len(s.items[identity]))
	copy(out, s.items[identity])
	return out
}

// ProductIDs returns the product IDs currently in the identity's cart.
func (s *Snapshot) ProductIDs(identity string) []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.items[identity]
	out := make([]int, 0, len(items))
	for _, item := range items {
		out = append(out, item.ProductID)
	}
	return out
}
