// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Package api exposes the recommendation and search subsystem over HTTP.
//
// All endpoints return the standardized APIResponse envelope. The caller's
// identity arrives in the X-User-ID header, absent meaning anonymous, and
// scopes every signal read and write on the request path, so concurrent
// requests for different identities never touch each other's state.
package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/dukalabs/shoprank/internal/analytics"
	"github.com/dukalabs/shoprank/internal/cart"
	"github.com/dukalabs/shoprank/internal/catalog"
	"github.com/dukalabs/shoprank/internal/recommend"
	"github.com/dukalabs/shoprank/internal/search"
	"github.com/dukalabs/shoprank/internal/signals"
)

// Handler holds the HTTP handlers and their collaborators.
type Handler struct {
	catalog  *catalog.Index
	signals  *signals.Store
	engine   *recommend.Engine
	pipeline *search.Pipeline
	tracker  *search.Tracker
	recorder *analytics.Recorder
	cart     *cart.Snapshot
	validate *validator.Validate
	logger   zerolog.Logger

	pageSize        int
	suggestionLimit int
}

// HandlerOptions bundles the per-view limits the handlers apply.
type HandlerOptions struct {
	PageSize        int
	SuggestionLimit int
}

// NewHandler creates the API handler set.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(
	idx *catalog.Index,
	store *signals.Store,
	engine *recommend.Engine,
	pipeline *search.Pipeline,
	tracker *search.Tracker,
	recorder *analytics.Recorder,
	cartSnapshot *cart.Snapshot,
	opts HandlerOptions,
	logger zerolog.Logger,
) *Handler {
	if opts.PageSize <= 0 {
		opts.PageSize = search.DefaultPageSize
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = search.DefaultSuggestionLimit
	}
	return &Handler{
		catalog:         idx,
		signals:         store,
		engine:          engine,
		pipeline:        pipeline,
		tracker:         tracker,
		recorder:        recorder,
		cart:            cartSnapshot,
		validate:        validator.New(validator.WithRequiredStructEnabled()),
		logger:          logger.With().Str("component", "api").Logger(),
		pageSize:        opts.PageSize,
		suggestionLimit: opts.SuggestionLimit,
	}
}

// HealthCheck reports service liveness and catalog size.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, map[string]interface{}{
		"status":   "healthy",
		"products": h.catalog.Len(),
	})
}

// ListProducts returns the catalog, optionally restricted to one category.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" || category == search.CategoryAll {
		respondSuccess(w, r, h.catalog.Products())
		return
	}
	respondSuccess(w, r, h.catalog.ByCategory(category))
}

// GetProduct returns one catalog entry by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productIDParam(w, r)
	if !ok {
		return
	}
	product, found := h.catalog.Get(id)
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}
	respondSuccess(w, r, product)
}

// ListCategories returns the category labels in catalog order.
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.catalog.Categories())
}

// viewRequest is the body of POST /views.
type viewRequest struct {
	ProductID int `json:"product_id" validate:"required,gt=0"`
}

// RecordView registers a product view for the caller and schedules a
// recompute of their recommendations.
func (h *Handler) RecordView(w http.ResponseWriter, r *http.Request) {
	var req viewRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if _, found := h.catalog.Get(req.ProductID); !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}

	id := identity(r)
	h.engine.RecordProductView(id, req.ProductID)
	respondSuccess(w, r, map[string]interface{}{
		"recorded": req.ProductID,
		"history":  h.signals.ViewedHistory(id),
	})
}

// GetHistory returns the viewed-product history, most recent first.
func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.signals.ViewedHistory(identity(r)))
}

// GetRecommendations computes a fresh personalized list. Optional query
// parameters restrict the result: types (comma-separated strategy names),
// categories (comma-separated), and min_confidence.
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseFilter(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, h.engine.Personalized(identity(r), filter))
}

// GetCurrentRecommendations returns the derived list as of the last
// debounced recompute, without forcing a fresh computation.
func (h *Handler) GetCurrentRecommendations(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.engine.Recommended(identity(r)))
}

// GetSimilarProducts returns products related to the given product.
func (h *Handler) GetSimilarProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.productIDParam(w, r)
	if !ok {
		return
	}
	if _, found := h.catalog.Get(id); !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}

	limit := h.pageSize
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}
	respondSuccess(w, r, h.engine.ForProduct(id, limit))
}

// engagementRequest is the body of the impression and click endpoints.
type engagementRequest struct {
	ProductID  int     `json:"product_id" validate:"required,gt=0"`
	Strategy   string  `json:"strategy" validate:"required"`
	Confidence float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// TrackImpression records that a recommendation was shown.
func (h *Handler) TrackImpression(w http.ResponseWriter, r *http.Request) {
	h.trackEngagement(w, r, false)
}

// TrackClick records that a recommendation was clicked. A click is also a
// view signal, so the viewed history and derived list update too.
func (h *Handler) TrackClick(w http.ResponseWriter, r *http.Request) {
	h.trackEngagement(w, r, true)
}

func (h *Handler) trackEngagement(w http.ResponseWriter, r *http.Request, click bool) {
	var req engagementRequest
	if !h.decodeBody(w, r, &req) {
		return
	}
	if !recommend.Strategy(req.Strategy).Valid() {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unknown strategy")
		return
	}
	product, found := h.catalog.Get(req.ProductID)
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "product not found")
		return
	}

	id := identity(r)
	if click {
		h.recorder.TrackClick(id, product.ID, product.Name, req.Strategy, req.Confidence)
		h.engine.RecordProductView(id, product.ID)
	} else {
		h.recorder.TrackView(id, product.ID, product.Name, req.Strategy, req.Confidence)
	}
	respondSuccess(w, r, map[string]bool{"tracked": true})
}

// Search runs the search pipeline and returns one page of results. The
// query is also handed to the settle tracker, so only the final query of a
// keystroke burst lands in the recent-query list and search analytics.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	query, page, ok := h.parseSearch(w, r)
	if !ok {
		return
	}

	result := h.pipeline.Search(query, page)

	if h.tracker != nil && query.Text != "" {
		h.tracker.Observe(search.Observation{
			Identity:    identity(r),
			Query:       query,
			ResultCount: result.TotalCount,
		})
	}
	respondSuccess(w, r, result)
}

// Suggest returns autocomplete completions for a partial query, drawn from
// category labels and the identity's recent searches.
func (h *Handler) Suggest(w http.ResponseWriter, r *http.Request) {
	limit := h.suggestionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	suggestions := search.Suggest(
		r.URL.Query().Get("q"),
		h.catalog.Categories(),
		h.signals.RecentQueries(identity(r)),
		limit,
	)
	respondSuccess(w, r, suggestions)
}

// GetRecentQueries returns the identity's recent searches, newest first.
func (h *Handler) GetRecentQueries(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.signals.RecentQueries(identity(r)))
}

// GetPreferences returns the caller's preferences.
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.signals.Preferences(identity(r)))
}

// UpdatePreferences applies a partial preferences update and returns the
// normalized result. Out-of-range values are clamped, not rejected.
func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	var patch signals.PreferencesPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	respondSuccess(w, r, h.signals.UpdatePreferences(identity(r), patch))
}

// cartRequest is the body of PUT /cart.
type cartRequest struct {
	Items []cart.Item `json:"items" validate:"dive"`
}

// ReplaceCart swaps the caller's cart snapshot for their current line
// items and schedules a recompute, since the collaborative strategy keys
// off it. The change also goes out on the event bus like every other
// recompute trigger.
func (h *Handler) ReplaceCart(w http.ResponseWriter, r *http.Request) {
	var req cartRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	id := identity(r)
	h.cart.Replace(id, req.Items)
	h.signals.NotifyCartChange(id)
	h.engine.ScheduleRecompute(id)
	respondSuccess(w, r, map[string]int{"items": len(req.Items)})
}

// GetSearchLog returns the identity's recorded searches, newest first.
func (h *Handler) GetSearchLog(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.recorder.SearchLog(identity(r)))
}

// GetEngagementLog returns the identity's recommendation views and clicks.
func (h *Handler) GetEngagementLog(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, h.recorder.EngagementLog(identity(r)))
}

// decodeBody decodes and validates a JSON request body, writing the error
// response itself on failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, target interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return false
	}
	if err := h.validate.Struct(target); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		return false
	}
	return true
}

// productIDParam parses the {productID} URL parameter.
func (h *Handler) productIDParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "productID"))
	if err != nil || id < 1 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid product id")
		return 0, false
	}
	return id, true
}

// parseFilter builds a candidate filter from query parameters. Returns nil
// when no filter parameters are present.
func (h *Handler) parseFilter(w http.ResponseWriter, r *http.Request) (*recommend.Filter, bool) {
	q := r.URL.Query()
	filter := &recommend.Filter{}
	present := false

	if raw := q.Get("types"); raw != "" {
		present = true
		for _, name := range strings.Split(raw, ",") {
			strategy := recommend.Strategy(strings.TrimSpace(name))
			if !strategy.Valid() {
				respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unknown strategy: "+string(strategy))
				return nil, false
			}
			filter.Types = append(filter.Types, strategy)
		}
	}
	if raw := q.Get("categories"); raw != "" {
		present = true
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				filter.Categories = append(filter.Categories, c)
			}
		}
	}
	if raw := q.Get("min_confidence"); raw != "" {
		present = true
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid min_confidence")
			return nil, false
		}
		filter.MinConfidence = parsed
	}

	if !present {
		return nil, true
	}
	return filter, true
}

// parseSearch builds the search query and page window from query
// parameters.
func (h *Handler) parseSearch(w http.ResponseWriter, r *http.Request) (search.Query, search.Page, bool) {
	q := r.URL.Query()

	query := search.Query{
		Text:     strings.TrimSpace(q.Get("q")),
		Category: q.Get("category"),
		Sort:     search.SortRelevance,
	}

	if raw := q.Get("sort"); raw != "" {
		order := search.SortOrder(raw)
		if !order.Valid() {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid sort order")
			return search.Query{}, search.Page{}, false
		}
		query.Sort = order
	}
	if ok := h.parseFloatParam(w, r, "price_min", &query.PriceRange[0]); !ok {
		return search.Query{}, search.Page{}, false
	}
	if ok := h.parseFloatParam(w, r, "price_max", &query.PriceRange[1]); !ok {
		return search.Query{}, search.Page{}, false
	}
	if ok := h.parseFloatParam(w, r, "min_rating", &query.MinRating); !ok {
		return search.Query{}, search.Page{}, false
	}
	if query.PriceRange[0] > query.PriceRange[1] && query.PriceRange[1] != 0 {
		query.PriceRange[0], query.PriceRange[1] = query.PriceRange[1], query.PriceRange[0]
	}

	page := search.Page{Number: 1, Size: h.pageSize}
	if raw := q.Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid page")
			return search.Query{}, search.Page{}, false
		}
		page.Number = parsed
	}
	if raw := q.Get("page_size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid page_size")
			return search.Query{}, search.Page{}, false
		}
		page.Size = parsed
	}

	return query, page, true
}

func (h *Handler) parseFloatParam(w http.ResponseWriter, r *http.Request, name string, target *float64) bool {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return true
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil || parsed < 0 {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "invalid "+name)
		return false
	}
	*target = parsed
	return true
}
