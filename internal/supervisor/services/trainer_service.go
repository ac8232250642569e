// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/recommend"
)

// Trainer trains and publishes a new artifact set.
type Trainer interface {
	Train(ctx context.Context) error
}

// TrainerServiceConfig controls when training runs.
type TrainerServiceConfig struct {
	// TrainOnStartup trains once as soon as the service starts.
	TrainOnStartup bool

	// TrainInterval is the period between scheduled runs. Zero disables
	// scheduled training.
	TrainInterval time.Duration

	// TrainTimeout bounds a single run. Zero means 30 minutes.
	TrainTimeout time.Duration
}

// TrainerService retrains the model on a schedule. Training failures are
// logged and retried at the next tick; they never stop the service.
type TrainerService struct {
	trainer Trainer
	config  TrainerServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewTrainerService creates a scheduled trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainerService(trainer Trainer, cfg TrainerServiceConfig, logger zerolog.Logger) *TrainerService {
	if cfg.TrainTimeout <= 0 {
		cfg.TrainTimeout = 30 * time.Minute
	}
	return &TrainerService{
		trainer: trainer,
		config:  cfg,
		logger:  logger.With().Str("service", "trainer").Logger(),
		name:    "trainer-service",
	}
}

// Serve implements suture.Service.
func (s *TrainerService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("train_on_startup", s.config.TrainOnStartup).
		Dur("train_interval", s.config.TrainInterval).
		Msg("trainer service starting")

	if s.config.TrainOnStartup {
		s.train(ctx, "startup")
	}

	if s.config.TrainInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.config.TrainInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("trainer service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.train(ctx, "scheduled")
		}
	}
}

func (s *TrainerService) train(ctx context.Context, trigger string) {
	trainCtx, cancel := context.WithTimeout(ctx, s.config.TrainTimeout)
	defer cancel()

	start := time.Now()
	err := s.trainer.Train(trainCtx)
	switch {
	case err == nil:
		s.logger.Info().Str("trigger", trigger).Dur("duration", time.Since(start)).Msg("model training complete")
	case errors.Is(err, recommend.ErrEmptyCatalog):
		s.logger.Info().Str("trigger", trigger).Msg("catalog is empty, training skipped")
	case ctx.Err() != nil:
		// Shutdown interrupted the run.
	default:
		s.logger.Warn().Err(err).Str("trigger", trigger).Msg("model training failed (will retry on schedule)")
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *TrainerService) String() string {
	return s.name
}
