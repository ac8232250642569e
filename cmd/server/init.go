// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/api"
	"github.com/tomtom215/venuerec/internal/cache"
	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/config"
	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/recommend"
	"github.com/tomtom215/venuerec/internal/recommend/storage"
	"github.com/tomtom215/venuerec/internal/service"
	"github.com/tomtom215/venuerec/internal/supervisor"
	"github.com/tomtom215/venuerec/internal/supervisor/services"
)

// Components holds everything the supervised services share.
type Components struct {
	Catalog  catalog.Catalog
	Cache    cache.Store
	Store    *storage.Store
	Service  *service.Service
	Reloader *service.Reloader
	Training *service.TrainingRunner
}

// Close releases the catalog and cache.
func (c *Components) Close() {
	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing result cache")
		}
		c.Cache = nil
	}
	if c.Catalog != nil {
		if err := c.Catalog.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
		c.Catalog = nil
	}
}

func initComponents(ctx context.Context, cfg *config.Config) (*Components, error) {
	logger := logging.Logger()
	c := &Components{}

	cat, err := catalog.Open(catalogOptions(cfg))
	if err != nil {
		return nil, err
	}
	c.Catalog = cat
	logging.Info().Str("backend", cat.Name()).Msg("Catalog opened")

	store, err := cache.Open(ctx, cache.Options{
		Backend:       cfg.Cache.Backend,
		TTL:           cfg.Cache.TTL,
		MaxEntries:    cfg.Cache.MaxEntries,
		RedisAddr:     cfg.Cache.RedisAddr,
		RedisDB:       cfg.Cache.RedisDB,
		RedisPassword: cfg.Cache.RedisPassword,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	c.Cache = store
	if store == nil {
		logging.Info().Msg("Result cache disabled")
	}

	c.Store, err = storage.NewStore(cfg.Recommend.ModelPath)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("open model store: %w", err)
	}

	engine, err := recommend.NewEngine(engineConfig(cfg), logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Service, err = service.New(serviceConfig(cfg), engine, cat, store, logger)
	if err != nil {
		c.Close()
		return nil, err
	}

	c.Reloader = service.NewReloader(c.Store, c.Service, logger)

	sink := &pruningSink{store: c.Store, keep: cfg.Recommend.KeepVersions, logger: logger}
	trainer, err := recommend.NewTrainer(cat, sink, recommend.ModelConfig{
		LocationWeight: cfg.Recommend.LocationWeight,
	}, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Training = service.NewTrainingRunner(trainer, c.Reloader, logger)

	return c, nil
}

func catalogOptions(cfg *config.Config) catalog.Options {
	return catalog.Options{
		Backend:    cfg.Catalog.Backend,
		DuckDBPath: cfg.Catalog.DuckDBPath,
		BadgerPath: cfg.Catalog.BadgerPath,
		Resilient: &catalog.ResilientSettings{
			Name:             "catalog",
			Timeout:          cfg.Catalog.Timeout,
			MaxRequests:      cfg.Catalog.BreakerMaxRequests,
			Interval:         cfg.Catalog.BreakerInterval,
			OpenTimeout:      cfg.Catalog.BreakerOpenTimeout,
			FailureThreshold: cfg.Catalog.BreakerThreshold,
		},
	}
}

func engineConfig(cfg *config.Config) *recommend.Config {
	ec := recommend.DefaultConfig()
	ec.SimilarMultiplier = cfg.Recommend.SimilarMultiplier
	ec.SameLocationMultiplier = cfg.Recommend.SameLocationMultiplier
	ec.PriceMatchMultiplier = cfg.Recommend.PriceMatchMultiplier
	ec.PriceMatchCeilingFactor = cfg.Recommend.PriceMatchCeilingFactor
	ec.MaxCandidates = cfg.Recommend.MaxCandidates
	ec.DefaultN = cfg.Recommend.DefaultN
	ec.DefaultMaxDistanceKm = cfg.Recommend.DefaultMaxDistanceKm
	return ec
}

func serviceConfig(cfg *config.Config) service.Config {
	return service.Config{
		PriceTolerance:    cfg.Recommend.PriceTolerance,
		FallbackScanLimit: cfg.Recommend.FallbackScanLimit,
		CacheTTL:          cfg.Cache.TTL,
		WarmLimit:         cfg.Recommend.WarmLimit,
		WarmConcurrency:   cfg.Recommend.WarmConcurrency,
		ComputeTimeout:    cfg.Server.RequestTimeout,
	}
}

func initHTTPServer(cfg *config.Config, svc *service.Service) (*http.Server, error) {
	handler, err := api.NewHandler(svc, api.HandlerConfig{
		DefaultN:             cfg.Recommend.DefaultN,
		DefaultMaxDistanceKm: cfg.Recommend.DefaultMaxDistanceKm,
		RequestTimeout:       cfg.Server.RequestTimeout,
	})
	if err != nil {
		return nil, err
	}

	mwCfg := api.DefaultMiddlewareConfig()
	if len(cfg.Security.CORSOrigins) > 0 {
		mwCfg.CORSAllowedOrigins = cfg.Security.CORSOrigins
	}
	mwCfg.RateLimitRequests = cfg.Security.RateLimitReqs
	mwCfg.RateLimitWindow = cfg.Security.RateLimitWindow
	mwCfg.RateLimitDisabled = cfg.Security.RateLimitDisabled

	router := api.NewRouter(handler, mwCfg)

	return &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, nil
}

func addServices(tree *supervisor.SupervisorTree, cfg *config.Config, c *Components, server *http.Server) {
	logger := logging.Logger()

	tree.AddModelService(services.NewReloaderService(c.Reloader, cfg.Recommend.ReloadInterval, logger))
	tree.AddModelService(services.NewTrainerService(c.Training, services.TrainerServiceConfig{
		TrainOnStartup: cfg.Recommend.TrainOnStartup,
		TrainInterval:  cfg.Recommend.TrainInterval,
	}, logger))
	logging.Info().
		Dur("train_interval", cfg.Recommend.TrainInterval).
		Dur("reload_interval", cfg.Recommend.ReloadInterval).
		Msg("Model services added to supervisor tree")

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")
}

// pruningSink saves through the store and then drops versions beyond
// keep. A failed prune is logged; the new version is still served.
type pruningSink struct {
	store  *storage.Store
	keep   int
	logger zerolog.Logger
}

func (p *pruningSink) Save(ctx context.Context, set *recommend.ArtifactSet) (int, error) {
	version, err := p.store.Save(ctx, set)
	if err != nil {
		return 0, err
	}
	removed, err := p.store.Prune(ctx, p.keep)
	if err != nil {
		p.logger.Warn().Err(err).Int("keep", p.keep).Msg("failed to prune old model versions")
	} else if removed > 0 {
		p.logger.Info().Int("removed", removed).Int("keep", p.keep).Msg("pruned old model versions")
	}
	return version, nil
}
