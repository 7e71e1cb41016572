// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router assembles the HTTP surface from a handler set and the
// middleware factories.
type Router struct {
	handler    *Handler
	middleware *Middleware
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, mw *Middleware) *Router {
	if mw == nil {
		mw = NewMiddleware(nil)
	}
	return &Router{handler: handler, middleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to all routes in order.
	r.Use(CorrelationID())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.middleware.CORS())
	r.Use(RequestLogging())

	// Health endpoints get permissive rate limiting so monitoring
	// probes are never rejected.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitHealth())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Conversational and catalog endpoints.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.middleware.RateLimit())
		r.Use(PrometheusMetrics())

		r.Post("/messages", router.handler.PostMessage)
		r.Post("/choices", router.handler.PostChoice)
		r.Get("/recommendations", router.handler.Recommendations)
		r.Get("/catalog/movies/{id}", router.handler.CatalogMovie)
		r.Get("/catalog/stats", router.handler.CatalogStats)
	})

	// WebSocket upgrade. Limits the upgrade rate, not the connection.
	r.With(router.middleware.RateLimitWebSocket()).
		Get("/api/v1/ws", router.handler.WebSocket)

	// Observability.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
