// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package search

import (
	"reflect"
	"testing"
)

func TestSuggest(t *testing.T) {
	categories := []string{"Electronics", "Kitchen", "Fitness"}
	recent := []string{"earbuds", "espresso", "kit"}

	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{
			name: "prefix ranks before substring",
			text: "kit",
			// "Kitchen" is a prefix match; "kit" itself is skipped as an
			// exact match.
			want: []string{"Kitchen"},
		},
		{
			name: "recent queries before categories within a group",
			text: "e",
			want: []string{"earbuds", "espresso", "Electronics", "Kitchen", "Fitness"},
		},
		{
			name: "substring only",
			text: "tch",
			want: []string{"Kitchen"},
		},
		{
			name: "empty text returns recent queries",
			text: "",
			want: []string{"earbuds", "espresso", "kit"},
		},
		{
			name: "no matches",
			text: "zzz",
			want: []string{},
		},
		{
			name:  "limit truncates",
			text:  "e",
			limit: 2,
			want:  []string{"earbuds", "espresso"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Suggest(tt.text, categories, recent, tt.limit)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Suggest(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSuggestDedupesCaseInsensitively(t *testing.T) {
	got := Suggest("kit", []string{"Kitchen"}, []string{"kitchen", "kitchen knives"}, 0)

	// "kitchen" (recent) and "Kitchen" (category) collapse to the first.
	want := []string{"kitchen", "kitchen knives"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Suggest = %v, want %v", got, want)
	}
}
