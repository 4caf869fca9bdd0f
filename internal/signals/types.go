// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package signals

// AnonymousIdentity is the identity key used before sign-in.
const AnonymousIdentity = "anonymous"

const (
	// MaxViewedHistory caps the viewed-product history per identity.
	MaxViewedHistory = 20

	// MaxRecentQueries caps the recent search query list per identity.
	MaxRecentQueries = 5

	// MinRecommendationCount and MaxRecommendationCount bound the
	// per-identity recommendation count preference.
	MinRecommendationCount = 1
	MaxRecommendationCount = 12
)

// Preferences holds per-identity recommendation preferences.
//
// The JSON shape is the storage contract: favoriteCategories,
// dislikedProductIds, one show* toggle per strategy, preferredPriceRange
// and recommendationCount.
type Preferences struct {
	FavoriteCategories []string `json:"favoriteCategories"`
	DislikedProductIDs []int    `json:"dislikedProductIds"`

	ShowViewed        bool `json:"showViewed"`
	ShowPurchased     bool `json:"showPurchased"`
	ShowSimilar       bool `json:"showSimilar"`
	ShowTrending      bool `json:"showTrending"`
	ShowCollaborative bool `json:"showCollaborative"`
	ShowSeasonal      bool `json:"showSeasonal"`
	ShowRandom        bool `json:"showRandom"`

	// PreferredPriceRange is [min, max]. min <= max always holds after a
	// write; out-of-order bounds are swapped, not rejected.
	PreferredPriceRange [2]float64 `json:"preferredPriceRange"`

	// RecommendationCount is how many recommendations to surface, in
	// [MinRecommendationCount, MaxRecommendationCount].
	RecommendationCount int `json:"recommendationCount"`
}

// DefaultPreferences returns the preferences created on first access.
func DefaultPreferences() Preferences {
	return Preferences{
		FavoriteCategories:  []string{},
		DislikedProductIDs:  []int{},
		ShowViewed:          true,
		ShowPurchased:       true,
		ShowSimilar:         true,
		ShowTrending:        true,
		ShowCollaborative:   true,
		ShowSeasonal:        true,
		ShowRandom:          true,
		PreferredPriceRange: [2]float64{0, 10000},
		RecommendationCount: 8,
	}
}

// normalize enforces the preference invariants: ordered price range and a
// bounded recommendation count.
func (p *Preferences) normalize() {
	if p.PreferredPriceRange[0] > p.PreferredPriceRange[1] {
		p.PreferredPriceRange[0], p.PreferredPriceRange[1] = p.PreferredPriceRange[1], p.PreferredPriceRange[0]
	}
	if p.RecommendationCount < MinRecommendationCount {
		p.RecommendationCount = MinRecommendationCount
	}
	if p.RecommendationCount > MaxRecommendationCount {
		p.RecommendationCount = MaxRecommendationCount
	}
}

// StrategyEnabled reports whether the named strategy is toggled on.
// Unknown strategy names are treated as enabled.
func (p Preferences) StrategyEnabled(strategy string) bool {
	switch strategy {
	case "viewed":
		return p.ShowViewed
	case "purchased":
		return p.ShowPurchased
	case "similar":
		return p.ShowSimilar
	case "trending":
		return p.ShowTrending
	case "collaborative":
		return p.ShowCollaborative
	case "seasonal":
		return p.ShowSeasonal
	case "random":
		return p.ShowRandom
	default:
		return true
	}
}

// PreferencesPatch is a partial preferences update. Nil fields are left
// unchanged; set fields replace the stored value wholesale.
type PreferencesPatch struct {
	FavoriteCategories *[]string `json:"favoriteCategories,omitempty"`
	DislikedProductIDs *[]int    `json:"dislikedProductIds,omitempty"`

	ShowViewed        *bool `json:"showViewed,omitempty"`
	ShowPurchased     *bool `json:"showPurchased,omitempty"`
	ShowSimilar       *bool `json:"showSimilar,omitempty"`
	ShowTrending      *bool `json:"showTrending,omitempty"`
	ShowCollaborative *bool `json:"showCollaborative,omitempty"`
	ShowSeasonal      *bool `json:"showSeasonal,omitempty"`
	ShowRandom        *bool `json:"showRandom,omitempty"`

	PreferredPriceRange *[2]float64 `json:"preferredPriceRange,omitempty"`
	RecommendationCount *int        `json:"recommendationCount,omitempty"`
}

// apply merges the patch into prefs and re-establishes the invariants.
func (patch PreferencesPatch) apply(prefs *Preferences) {
	if patch.FavoriteCategories != nil {
		prefs.FavoriteCategories = append([]string(nil), (*patch.FavoriteCategories)...)
	}
	if patch.DislikedProductIDs != nil {
		prefs.DislikedProductIDs = append([]int(nil), (*patch.DislikedProductIDs)...)
	}
	if patch.ShowViewed != nil {
		prefs.ShowViewed = *patch.ShowViewed
	}
	if patch.ShowPurchased != nil {
		prefs.ShowPurchased = *patch.ShowPurchased
	}
	if patch.ShowSimilar != nil {
		prefs.ShowSimilar = *patch.ShowSimilar
	}
	if patch.ShowTrending != nil {
		prefs.ShowTrending = *patch.ShowTrending
	}
	if patch.ShowCollaborative != nil {
		prefs.ShowCollaborative = *patch.ShowCollaborative
	}
	if patch.ShowSeasonal != nil {
		prefs.ShowSeasonal = *patch.ShowSeasonal
	}
	if patch.ShowRandom != nil {
		prefs.ShowRandom = *patch.ShowRandom
	}
	if patch.PreferredPriceRange != nil {
		prefs.PreferredPriceRange = *patch.PreferredPriceRange
	}
	if patch.RecommendationCount != nil {
		prefs.RecommendationCount = *patch.RecommendationCount
	}
	prefs.normalize()
}
