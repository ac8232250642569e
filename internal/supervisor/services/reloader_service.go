// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Reloader swaps in the newest activated artifact set.
type Reloader interface {
	Reload(ctx context.Context) (string, error)
}

// ReloaderService loads the current artifacts at startup and then polls
// for newly activated versions, such as those published by the trainer
// command or rolled back with `activate`.
type ReloaderService struct {
	reloader Reloader
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewReloaderService creates the service. A zero interval loads once at
// startup and never polls.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloaderService(reloader Reloader, interval time.Duration, logger zerolog.Logger) *ReloaderService {
	return &ReloaderService{
		reloader: reloader,
		interval: interval,
		logger:   logger.With().Str("service", "reloader").Logger(),
		name:     "artifact-reloader",
	}
}

// Serve implements suture.Service.
func (s *ReloaderService) Serve(ctx context.Context) error {
	s.reload(ctx)

	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *ReloaderService) reload(ctx context.Context) {
	status, err := s.reloader.Reload(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("artifact reload failed, keeping current model")
		}
		return
	}
	s.logger.Debug().Str("status", status).Msg("artifact reload checked")
}

// String implements fmt.Stringer for supervisor logs.
func (s *ReloaderService) String() string {
	return s.name
}
