// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package metrics provides Prometheus instrumentation for ShopRank:
// API latency, recommendation recompute duration and strategy mix,
// search pipeline latency, and signal-store error counts.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shoprank_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "shoprank_api_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Recommendation engine metrics
	RecomputeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoprank_recommend_recompute_duration_seconds",
			Help:    "Duration of full recommendation recomputation in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		},
	)

	RecomputeTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "shoprank_recommend_recomputes_total",
			Help: "Total number of recommendation recomputations",
		},
	)

	StrategyCandidates = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprank_recommend_strategy_candidates_total",
			Help: "Total candidates contributed per strategy before filtering",
		},
		[]string{"strategy"},
	)

	// Search pipeline metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoprank_search_duration_seconds",
			Help:    "Duration of search pipeline runs in seconds",
			Buckets: []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		},
	)

	SearchResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "shoprank_search_results",
			Help:    "Filtered result-set sizes per search",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
		},
	)

	// Signal store metrics
	SignalStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprank_signal_store_errors_total",
			Help: "Total swallowed signal-store storage errors",
		},
		[]string{"operation"}, // "read", "write", "marshal"
	)

	// Analytics recorder metrics
	AnalyticsEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shoprank_analytics_events_total",
			Help: "Total analytics events recorded",
		},
		[]string{"type"}, // "search", "view", "click"
	)
)

// RecordAPIRequest records a completed API request.
func RecordAPIRequest(method, path string, status int, duration time.Duration) {
	APIRequestDuration.WithLabelValues(method, path, strconv.Itoa(status)).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the active request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
