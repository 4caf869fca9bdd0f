// ShopRank - Storefront Signals, Recommendations, and Search
// Copyright 2026 Duka Labs
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dukalabs/shoprank

// Command server runs the ShopRank service: the signal store, the
// recommendation engine, the search pipeline, and the HTTP API, all under
// one suture supervision tree.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/dgraph-io/badger/v4"

	"github.com/dukalabs/shoprank/internal/analytics"
	"github.com/dukalabs/shoprank/internal/api"
	"github.com/dukalabs/shoprank/internal/cart"
	"github.com/dukalabs/shoprank/internal/catalog"
	"github.com/dukalabs/shoprank/internal/config"
	"github.com/dukalabs/shoprank/internal/logging"
	"github.com/dukalabs/shoprank/internal/recommend"
	"github.com/dukalabs/shoprank/internal/search"
	"github.com/dukalabs/shoprank/internal/signals"
	"github.com/dukalabs/shoprank/internal/supervisor"
)

// version is set via -ldflags at build time.
var version = "dev"

func main() {
	if err := run(); err != nil {
		logging.Fatal().Err(err).Msg("server exited with error")
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()
	logger.Info().Str("version", version).Msg("starting shoprank")

	db, err := openStorage(cfg.Storage)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn().Err(err).Msg("close storage failed")
		}
	}()

	idx, err := catalog.LoadFile(cfg.Catalog.Path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	logger.Info().Int("products", idx.Len()).Msg("catalog indexed")

	// In-process pub/sub carries signal-change events from the store to
	// the recommendation consumer.
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{OutputChannelBuffer: 64},
		logging.NewWatermillAdapter(logger),
	)
	defer func() {
		if err := pubsub.Close(); err != nil {
			logger.Warn().Err(err).Msg("close pubsub failed")
		}
	}()

	store := signals.NewStore(db, pubsub, logger)
	cartSnapshot := cart.NewSnapshot()

	engine, err := recommend.NewEngine(recommend.Config{
		MaxCandidates: cfg.Recommend.MaxCandidates,
		FillFloor:     cfg.Recommend.FillFloor,
		DebounceDelay: cfg.Recommend.DebounceDelay,
		Seed:          cfg.Recommend.Seed,
	}, idx, store, cartSnapshot, logger)
	if err != nil {
		return fmt.Errorf("build recommendation engine: %w", err)
	}
	engine.Recompute(signals.AnonymousIdentity)

	pipeline := search.NewPipeline(idx, logger)
	recorder := analytics.NewRecorder(db, logger)

	// Settled searches land in the recent-query list and the analytics log.
	tracker := search.NewTracker(cfg.Search.SettleDelay, func(obs search.Observation) {
		store.RecordQuery(obs.Identity, obs.Query.Text)
		recorder.TrackSearch(obs.Identity, obs.Query.Text, obs.ResultCount, obs.Query)
	})
	defer tracker.Stop()

	handler := api.NewHandler(idx, store, engine, pipeline, tracker, recorder, cartSnapshot,
		api.HandlerOptions{
			PageSize:        cfg.Search.PageSize,
			SuggestionLimit: cfg.Search.SuggestionLimit,
		}, logger)

	router := api.NewRouter(handler, api.RouterOptions{
		CORSOrigins:     cfg.Server.CORSOrigins,
		RateLimit:       cfg.Server.RateLimit,
		RateLimitWindow: cfg.Server.RateLimitWindow,
		Timeout:         cfg.Server.Timeout,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: cfg.Server.Timeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree := supervisor.NewTree(logging.Slog(), treeCfg)
	tree.Add(supervisor.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.Add(recommend.NewConsumer(pubsub, engine, logger))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("addr", server.Addr).Msg("serving")
	if err := tree.Serve(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("supervisor: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}

// openStorage opens the BadgerDB store used for signals and analytics.
// Badger's own logger is silenced; store failures surface through the
// signal-store and recorder error paths instead.
func openStorage(cfg config.StorageConfig) (*badger.DB, error) {
	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithLogger(nil)
	return badger.Open(opts)
}
