// Filmwise - Conversational Movie Recommendations
// Copyright 2026 Filmwise contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/filmwise/filmwise

// Package main is the entry point for the Filmwise server.
//
// Filmwise is a conversational movie recommendation service. Users
// describe what they want to watch, or name a few favorite films, and
// the engine ranks the catalog by tag similarity and vote average.
// Conversations arrive over HTTP, flow through an in-process event
// pipeline for per-user ordering, and replies are pushed back over
// WebSocket.
//
// Startup order:
//
//  1. Configuration (Koanf v2: defaults, YAML file, environment)
//  2. Logging (zerolog)
//  3. Catalog load from CSV with tag extraction
//  4. Matcher, WebSocket hub, messenger, session router, pipeline
//  5. HTTP router (Chi)
//  6. Supervisor tree (suture v4), then signal-driven shutdown
//
// The server handles graceful shutdown on SIGINT and SIGTERM: stop
// accepting connections, drain in-flight requests, close the pipeline.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/filmwise/filmwise/internal/api"
	"github.com/filmwise/filmwise/internal/catalog"
	"github.com/filmwise/filmwise/internal/config"
	"github.com/filmwise/filmwise/internal/events"
	"github.com/filmwise/filmwise/internal/logging"
	"github.com/filmwise/filmwise/internal/messenger"
	"github.com/filmwise/filmwise/internal/metrics"
	"github.com/filmwise/filmwise/internal/recommend"
	"github.com/filmwise/filmwise/internal/session"
	"github.com/filmwise/filmwise/internal/supervisor"
	"github.com/filmwise/filmwise/internal/supervisor/services"
	"github.com/filmwise/filmwise/internal/tags"
	ws "github.com/filmwise/filmwise/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(cfg.Logging)
	logger := logging.Logger()

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("catalog_path", cfg.Catalog.Path).
		Msg("Starting Filmwise")

	// Catalog ingestion is startup-blocking: without movies there is
	// nothing to recommend.
	extractor := tags.NewExtractor(tags.NewEnglishAnnotator(), cfg.Extractor)
	cat, err := catalog.LoadFile(cfg.Catalog.Path, extractor, catalog.LoadOptions{
		MaxRows: cfg.Catalog.MaxRows,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Catalog.Path).Msg("Failed to load catalog")
	}
	metrics.CatalogSize.Set(float64(cat.Size()))
	logging.Info().
		Int("movies", cat.Size()).
		Int("distinct_tags", len(cat.UnionTags())).
		Msg("Catalog loaded")

	matcher, err := recommend.NewMatcher(cfg.Recommend, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create matcher")
	}

	hub := ws.NewHub()
	outbound := messenger.New(cfg.Messenger, hub, logger)

	sessions, err := session.NewRouter(cfg.Session, session.Deps{
		Catalog:   cat,
		Matcher:   matcher,
		Extractor: extractor,
		Messenger: outbound,
	}, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create session router")
	}

	pipeline, err := events.NewPipeline(cfg.Events, sessions, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event pipeline")
	}

	handler := api.NewHandler(pipeline.Publisher(), cat, matcher, extractor, hub, logger)
	httpHandler := api.NewRouter(handler, api.NewMiddleware(&api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Security.CORSOrigins,
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "X-Correlation-ID"},
		CORSMaxAge:         86400,
		RateLimitRequests:  cfg.Security.RateLimitReqs,
		RateLimitWindow:    cfg.Security.RateLimitWindow,
		RateLimitDisabled:  cfg.Security.RateLimitDisabled,
	})).Setup()

	httpServer := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// The supervisor tree logs through the zerolog-backed slog bridge.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddConversationService(services.NewRunnerService("websocket-hub", hub.RunWithContext))
	tree.AddConversationService(services.NewRunnerService("event-pipeline", pipeline.Run))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Filmwise is up")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		cancel()

		select {
		case err := <-errCh:
			if err != nil && !isShutdownError(err) {
				logging.Error().Err(err).Msg("Supervisor exited with error")
			}
		case <-time.After(cfg.Server.ShutdownTimeout + 5*time.Second):
			logging.Error().Msg("Supervisor did not stop in time")
			if report, rerr := tree.UnstoppedServiceReport(); rerr == nil {
				for _, svc := range report {
					logging.Error().Str("service", svc.Name).Msg("Service failed to stop")
				}
			}
		}

	case err := <-errCh:
		if err != nil && !isShutdownError(err) {
			logging.Fatal().Err(err).Msg("Supervisor exited unexpectedly")
		}
	}

	if err := pipeline.Close(); err != nil {
		logging.Error().Err(err).Msg("Failed to close event pipeline")
	}

	logging.Info().Msg("Filmwise stopped")
}

// isShutdownError reports whether err is the expected terminal error
// of a canceled supervisor.
func isShutdownError(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
