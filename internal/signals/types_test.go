// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package signals

import (
	"reflect"
	"testing"
)

func TestNormalizeSwapsReversedPriceRange(t *testing.T) {
	p := DefaultPreferences()
	p.PreferredPriceRange = [2]float64{500, 100}
	p.normalize()

	if p.PreferredPriceRange != [2]float64{100, 500} {
		t.Errorf("price range = %v, want [100 500]", p.PreferredPriceRange)
	}
}

func TestNormalizeClampsRecommendationCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  int
	}{
		{"below minimum", 0, MinRecommendationCount},
		{"negative", -3, MinRecommendationCount},
		{"within bounds", 6, 6},
		{"above maximum", 50, MaxRecommendationCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPreferences()
			p.RecommendationCount = tt.count
			p.normalize()
			if p.RecommendationCount != tt.want {
				t.Errorf("count = %d, want %d", p.RecommendationCount, tt.want)
			}
		})
	}
}

func TestStrategyEnabled(t *testing.T) {
	p := DefaultPreferences()
	p.ShowTrending = false

	if p.StrategyEnabled("trending") {
		t.Error("trending should be disabled")
	}
	if !p.StrategyEnabled("viewed") {
		t.Error("viewed should be enabled")
	}
	// Unknown strategies default to enabled so new strategies are not
	// silently suppressed by stale stored preferences.
	if !p.StrategyEnabled("mystery") {
		t.Error("unknown strategy should default to enabled")
	}
}

func TestPatchApplyMergesOnlySetFields(t *testing.T) {
	prefs := DefaultPreferences()
	favorites := []string{"Kitchen"}
	count := 3
	off := false

	patch := PreferencesPatch{
		FavoriteCategories:  &favorites,
		RecommendationCount: &count,
		ShowRandom:          &off,
	}
	patch.apply(&prefs)

	if !reflect.DeepEqual(prefs.FavoriteCategories, favorites) {
		t.Errorf("favorites = %v, want %v", prefs.FavoriteCategories, favorites)
	}
	if prefs.RecommendationCount != 3 {
		t.Errorf("count = %d, want 3", prefs.RecommendationCount)
	}
	if prefs.ShowRandom {
		t.Error("random toggle should be off")
	}
	// Untouched fields keep their defaults.
	if !prefs.ShowViewed || !prefs.ShowTrending {
		t.Error("unpatched toggles must stay at defaults")
	}
}

func TestPatchApplyReestablishesInvariants(t *testing.T) {
	prefs := DefaultPreferences()
	reversed := [2]float64{900, 50}
	count := 99

	patch := PreferencesPatch{
		PreferredPriceRange: &reversed,
		RecommendationCount: &count,
	}
	patch.apply(&prefs)

	if prefs.PreferredPriceRange != [2]float64{50, 900} {
		t.Errorf("price range = %v, want [50 900]", prefs.PreferredPriceRange)
	}
	if prefs.RecommendationCount != MaxRecommendationCount {
		t.Errorf("count = %d, want %d", prefs.RecommendationCount, MaxRecommendationCount)
	}
}
