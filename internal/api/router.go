// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions holds the HTTP-surface settings the router applies.
type RouterOptions struct {
	CORSOrigins     []string
	RateLimit       int
	RateLimitWindow time.Duration
	Timeout         time.Duration
}

// NewRouter builds the chi router with the full middleware stack and all
// routes mounted under /api/v1.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(middleware.Recoverer)
	r.Use(PrometheusMetrics)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID", IdentityHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if opts.RateLimit > 0 {
		window := opts.RateLimitWindow
		if window <= 0 {
			window = time.Minute
		}
		r.Use(httprate.LimitByIP(opts.RateLimit, window))
	}

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.ListProducts)
		r.Get("/products/{productID}", h.GetProduct)
		r.Get("/products/{productID}/similar", h.GetSimilarProducts)
		r.Get("/categories", h.ListCategories)

		r.Post("/views", h.RecordView)
		r.Get("/history", h.GetHistory)

		r.Get("/recommendations", h.GetRecommendations)
		r.Get("/recommendations/current", h.GetCurrentRecommendations)
		r.Post("/recommendations/impressions", h.TrackImpression)
		r.Post("/recommendations/clicks", h.TrackClick)

		r.Get("/search", h.Search)
		r.Get("/search/suggestions", h.Suggest)
		r.Get("/search/recent", h.GetRecentQueries)

		r.Get("/preferences", h.GetPreferences)
		r.Patch("/preferences", h.UpdatePreferences)

		r.Put("/cart", h.ReplaceCart)

		r.Get("/analytics/searches", h.GetSearchLog)
		r.Get("/analytics/engagement", h.GetEngagementLog)
	})

	return r
}
