// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	gorillaws "github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/events"
	"github.com/filmwise/filmwise/internal/metrics"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/validation"
	"github.com/filmwise/filmwise/internal/websocket"
)

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	publisher *events.Publisher
	catalog   *catalog.Catalog
	matcher   *recommend.Matcher
	extractor catalog.TagExtractor
	hub       *websocket.Hub
	logger    zerolog.Logger
	upgrader  gorillaws.Upgrader
	startedAt time.Time
}

// NewHandler creates a Handler.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewHandler(
	publisher *events.Publisher,
	cat *catalog.Catalog,
	matcher *recommend.Matcher,
	extractor catalog.TagExtractor,
	hub *websocket.Hub,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		publisher: publisher,
		catalog:   cat,
		matcher:   matcher,
		extractor: extractor,
		hub:       hub,
		logger:    logger.With().Str("component", "api").Logger(),
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// CORS is enforced at the middleware layer; the upgrade
			// endpoint accepts any origin the CORS policy let through.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		startedAt: time.Now(),
	}
}

// queuedResponse acknowledges an accepted conversational event.
type queuedResponse struct {
	Queued bool   `json:"queued"`
	UserID string `json:"user_id"`
}

// PostMessage accepts a free-text conversational message and queues it
// for the session pipeline. The reply, if any, arrives over the user's
// WebSocket connection.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req MessageRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if err := h.publisher.PublishText(r.Context(), req.UserID, req.Text); err != nil {
		h.logger.Error().Err(err).Msg("failed to publish text event")
		rw.InternalError("Failed to queue message")
		return
	}

	rw.Accepted(queuedResponse{Queued: true, UserID: req.UserID})
}

// PostChoice accepts a choice-button tap and queues it for the session
// pipeline.
func (h *Handler) PostChoice(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var req ChoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		apiErr := verr.ToAPIError()
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	if err := h.publisher.PublishChoice(r.Context(), req.UserID, req.Token); err != nil {
		h.logger.Error().Err(err).Msg("failed to publish choice event")
		rw.InternalError("Failed to queue choice")
		return
	}

	rw.Accepted(queuedResponse{Queued: true, UserID: req.UserID})
}

// recommendationItem is one ranked movie in a stateless recommendation
// response.
type recommendationItem struct {
	catalog.MovieRecord
	TagSimilarity float64 `json:"tag_similarity"`
	GeneralScore  float64 `json:"general_score"`
	Rendered      string  `json:"rendered"`
}

// recommendationsResponse is the body of GET /api/v1/recommendations.
type recommendationsResponse struct {
	Query   string               `json:"query"`
	Tags    []string             `json:"tags"`
	Results []recommendationItem `json:"results"`
}

// Recommendations serves stateless one-shot recommendations from a
// description query, bypassing the conversational session entirely.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		rw.BadRequest("Missing required parameter: query")
		return
	}

	k := h.matcher.TopK()
	if rawK := r.URL.Query().Get("k"); rawK != "" {
		parsed, err := strconv.Atoi(rawK)
		if err != nil || parsed < 1 {
			rw.BadRequest("Parameter k must be a positive integer")
			return
		}
		k = parsed
	}
	if k > h.matcher.MaxK() {
		k = h.matcher.MaxK()
	}

	start := time.Now()
	queryTags := h.extractor.Extract(query)
	metrics.RecordTagExtraction(time.Since(start))

	ranked := h.matcher.Rank(h.catalog, queryTags, k)
	metrics.RecordRecommendation("api", len(ranked))

	items := make([]recommendationItem, len(ranked))
	for i := range ranked {
		items[i] = recommendationItem{
			MovieRecord:   ranked[i].MovieRecord,
			TagSimilarity: ranked[i].TagSimilarity,
			GeneralScore:  ranked[i].GeneralScore,
			Rendered:      ranked[i].Render(),
		}
	}

	rw.Success(recommendationsResponse{
		Query:   query,
		Tags:    queryTags.Items(),
		Results: items,
	})
}

// CatalogMovie returns a single catalog record by its identifier.
func (h *Handler) CatalogMovie(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	id := chi.URLParam(r, "id")
	matched := h.catalog.ByID(id)
	if matched.Size() == 0 {
		rw.NotFound("No movie with id '" + id + "'")
		return
	}

	rw.Success(matched.Records()[0])
}

// catalogStatsResponse summarizes the loaded catalog.
type catalogStatsResponse struct {
	Movies       int `json:"movies"`
	DistinctTags int `json:"distinct_tags"`
}

// CatalogStats reports the size of the loaded catalog.
func (h *Handler) CatalogStats(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	rw.Success(catalogStatsResponse{
		Movies:       h.catalog.Size(),
		DistinctTags: len(h.catalog.UnionTags()),
	})
}

// healthResponse is the body of the health endpoints.
type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	CatalogMovies int    `json:"catalog_movies,omitempty"`
	WSClients     int    `json:"ws_clients,omitempty"`
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
	})
}

// HealthReady reports readiness to serve recommendations. An empty
// catalog means startup loading failed and the instance must not
// receive traffic.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	resp := healthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		CatalogMovies: h.catalog.Size(),
		WSClients:     h.hub.ClientCount(),
	}

	if h.catalog.Size() == 0 {
		resp.Status = "unavailable"
		rw.Error(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Catalog is empty")
		return
	}

	rw.Success(resp)
}

// WebSocket upgrades the connection and registers the client with the
// hub. Outbound conversational replies for the user flow through this
// connection.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userID == "" {
		NewResponseWriter(w, r).BadRequest("Missing required parameter: user_id")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		h.logger.Warn().Err(err).Str("user_id", userID).Msg("websocket upgrade failed")
		return
	}

	client := websocket.NewClient(h.hub, conn, userID)
	h.hub.Register <- client
	client.Start()

	h.logger.Debug().
		Str("user_id", userID).
		Uint64("client_id", client.ID()).
		Msg("websocket client connected")
}
