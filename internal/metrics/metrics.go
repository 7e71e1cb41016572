// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Conversation Metrics
	InboundEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inbound_events_total",
			Help: "Total number of inbound conversation events",
		},
		[]string{"event_type", "outcome"}, // event_type: "text", "choice"; outcome: "ok", "unexpected", "error"
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sessions_active",
			Help: "Current number of live conversation sessions",
		},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_created_total",
			Help: "Total number of conversation sessions created",
		},
	)

	SessionsEvictedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_evicted_total",
			Help: "Total number of sessions evicted after inactivity",
		},
	)

	RecommendationsServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation answers served",
		},
		[]string{"source", "result"}, // source: "description", "favorites", "api"; result: "hit", "empty"
	)

	TagExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tag_extraction_duration_seconds",
			Help:    "Duration of tag extraction from free text",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
	)

	CatalogSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_movies",
			Help: "Number of movie records in the loaded catalog",
		},
	)

	// Outbound Delivery Metrics
	WSConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections_active",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
		[]string{"message_type"}, // "send_text", "present_choices"
	)

	OutboundSendFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "outbound_send_failures_total",
			Help: "Total number of failed outbound action deliveries",
		},
		[]string{"reason"}, // "no_client", "breaker_open", "rate_limited", "write_error"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)

// RecordAPIRequest records one completed HTTP request.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordInboundEvent records one dispatched conversation event.
func RecordInboundEvent(eventType, outcome string) {
	InboundEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

// RecordRecommendation records one served answer.
func RecordRecommendation(source string, matched int) {
	result := "hit"
	if matched == 0 {
		result = "empty"
	}
	RecommendationsServedTotal.WithLabelValues(source, result).Inc()
}

// RecordTagExtraction records the duration of one extraction call.
func RecordTagExtraction(duration time.Duration) {
	TagExtractionDuration.Observe(duration.Seconds())
}

// RecordSendFailure records one failed outbound delivery.
func RecordSendFailure(reason string) {
	OutboundSendFailuresTotal.WithLabelValues(reason).Inc()
}
