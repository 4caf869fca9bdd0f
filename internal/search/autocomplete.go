// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package search

import "strings"

// DefaultSuggestionLimit caps autocomplete suggestions per request.
const DefaultSuggestionLimit = 8

// Suggest produces up to limit completions for the given text from a
// small fixed pool: category labels plus recent search queries. Prefix
// matches rank ahead of substring matches; within each group the pool
// order is preserved. Matching is case-insensitive and duplicates are
// collapsed. An empty text returns the recent queries as-is.
func Suggest(text string, categories, recentQueries []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	pool := make([]string, 0, len(recentQueries)+len(categories))
	pool = append(pool, recentQueries...)
	pool = append(pool, categories...)

	q := strings.ToLower(strings.TrimSpace(text))
	if q == "" {
		out := dedupe(recentQueries)
		if len(out) > limit {
			out = out[:limit]
		}
		return out
	}

	var prefix, substring []string
	for _, candidate := range pool {
		lower := strings.ToLower(candidate)
		switch {
		case lower == q:
			// Completing to the exact input adds nothing.
		case strings.HasPrefix(lower, q):
			prefix = append(prefix, candidate)
		case strings.Contains(lower, q):
			substring = append(substring, candidate)
		}
	}

	out := dedupe(append(prefix, substring...))
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// dedupe collapses case-insensitive duplicates, keeping first occurrence.
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		key := strings.ToLower(v)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
	}
	return out
}
