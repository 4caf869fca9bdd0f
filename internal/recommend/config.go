// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package recommend

import (
	"fmt"
	"time"
)

// Config holds recommendation engine tuning.
type Config struct {
	// MaxCandidates caps the merged, deduplicated candidate list before
	// the filter layer runs. Default: 8
	MaxCandidates int

	// FillFloor is the candidate count below which the trending and then
	// random fallback strategies engage. Default: 4
	FillFloor int

	// DebounceDelay is the window within which recompute triggers are
	// coalesced; only the newest pending recompute fires. Default: 500ms
	DebounceDelay time.Duration

	// Seed seeds the random fallback strategy for deterministic output.
	// Zero selects the fixed default seed.
	Seed int64
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		MaxCandidates: 8,
		FillFloor:     4,
		DebounceDelay: 500 * time.Millisecond,
	}
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max candidates must be at least 1, got %d", c.MaxCandidates)
	}
	if c.FillFloor < 0 || c.FillFloor > c.MaxCandidates {
		return fmt.Errorf("fill floor must be in [0, %d], got %d", c.MaxCandidates, c.FillFloor)
	}
	if c.DebounceDelay < 0 {
		return fmt.Errorf("debounce delay must not be negative, got %s", c.DebounceDelay)
	}
	return nil
}
