// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package recommend

// ApplyFilters restricts candidates by strategy type, category, and
// minimum confidence. Empty filter fields impose no restriction.
func ApplyFilters(candidates []Candidate, filter Filter) []Candidate {
	types := make(map[Strategy]struct{}, len(filter.Types))
	for _, t := range filter.Types {
		types[t] = struct{}{}
	}
	categories := make(map[string]struct{}, len(filter.Categories))
	for _, c := range filter.Categories {
		categories[c] = struct{}{}
	}

	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if len(types) > 0 {
			if _, ok := types[c.Strategy]; !ok {
				continue
			}
		}
		if len(categories) > 0 {
			if _, ok := categories[c.Product.Category]; !ok {
				continue
			}
		}
		if c.Confidence < filter.MinConfidence {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ApplyUserPreferences unconditionally drops disliked products, then moves
// favorite-category candidates ahead of the rest. The boost is a stable
// partition, not a re-sort: relative order is preserved within both the
// favorite and non-favorite groups.
func ApplyUserPreferences(candidates []Candidate, favoriteCategories []string, dislikedIDs []int) []Candidate {
	disliked := toSet(dislikedIDs)
	favorites := make(map[string]struct{}, len(favoriteCategories))
	for _, c := range favoriteCategories {
		favorites[c] = struct{}{}
	}

	boosted := make([]Candidate, 0, len(candidates))
	rest := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, drop := disliked[c.Product.ID]; drop {
			continue
		}
		if _, fav := favorites[c.Product.Category]; fav {
			boosted = append(boosted, c)
		} else {
			rest = append(rest, c)
		}
	}
	return append(boosted, rest...)
}
