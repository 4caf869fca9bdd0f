// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dukalabs/shoprank/internal/metrics"
	"github.com/dukalabs/shoprank/internal/signals"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// IdentityHeader carries the caller's identity; absent means anonymous.
// Authentication itself is an upstream concern: this service trusts the
// header as resolved by the gateway in front of it.
const IdentityHeader = "X-User-ID"

// RequestID assigns each request a unique ID, reusing one provided by an
// upstream proxy.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestID extracts the request ID from the context.
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// PrometheusMetrics records request duration and active-request counts.
func PrometheusMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		metrics.TrackActiveRequest(true)
		defer metrics.TrackActiveRequest(false)

		start := time.Now()
		wrapper := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)
		metrics.RecordAPIRequest(r.Method, r.URL.Path, wrapper.statusCode, time.Since(start))
	})
}

// statusResponseWriter wraps http.ResponseWriter to capture the status code.
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// identity resolves the caller's identity from the request.
func identity(r *http.Request) string {
	if id := r.Header.Get(IdentityHeader); id != "" {
		return id
	}
	return signals.AnonymousIdentity
}
