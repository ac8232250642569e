// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/metrics"
	"github.com/tomtom215/venuerec/internal/recommend"
	"github.com/tomtom215/venuerec/internal/recommend/storage"
)

// Reload status labels.
const (
	ReloadSuccess   = "success"
	ReloadUnchanged = "unchanged"
	ReloadEmpty     = "empty"
	ReloadError     = "error"
)

// ArtifactSource is the read side of the artifact store.
type ArtifactSource interface {
	// Refresh re-reads the active version pointer and returns it
	// (0 when nothing has been trained).
	Refresh() (int, error)

	// Load reads and validates a specific version.
	Load(ctx context.Context, version int) (*recommend.ArtifactSet, *storage.ArtifactMetadata, error)
}

// Reloader swaps the service's model when the store's active version
// changes. A failed load keeps the previous model in place.
type Reloader struct {
	source  ArtifactSource
	service *Service
	logger  zerolog.Logger

	mu sync.Mutex
}

// NewReloader creates a reloader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloader(source ArtifactSource, svc *Service, logger zerolog.Logger) *Reloader {
	return &Reloader{
		source:  source,
		service: svc,
		logger:  logger.With().Str("component", "reloader").Logger(),
	}
}

// Reload checks the store and installs a new version if there is one.
// It returns the status label recorded in metrics.
func (r *Reloader) Reload(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, err := r.reload(ctx)
	metrics.RecordModelReload(status)
	return status, err
}

func (r *Reloader) reload(ctx context.Context) (string, error) {
	version, err := r.source.Refresh()
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to read active artifact version")
		return ReloadError, fmt.Errorf("refresh artifact store: %w", err)
	}

	if version == 0 {
		r.logger.Debug().Msg("no trained artifacts available yet")
		return ReloadEmpty, nil
	}
	if version == r.service.ModelVersion() {
		return ReloadUnchanged, nil
	}

	set, meta, err := r.source.Load(ctx, version)
	if err != nil {
		r.logger.Error().
			Err(err).
			Int("version", version).
			Int("serving_version", r.service.ModelVersion()).
			Msg("failed to load artifacts, keeping current model")
		return ReloadError, err
	}

	previous := r.service.ModelVersion()
	r.service.SetArtifacts(set, meta)
	r.logger.Info().
		Int("version", version).
		Int("previous_version", previous).
		Int("venues", set.Snapshot.Len()).
		Msg("model artifacts loaded")

	if warmed, err := r.service.WarmFromModel(ctx); err != nil {
		r.logger.Warn().Err(err).Int("warmed", warmed).Msg("cache warm-up stopped early")
	} else if warmed > 0 {
		r.logger.Info().Int("warmed", warmed).Msg("cache warm-up complete")
	}

	return ReloadSuccess, nil
}

// TrainingRunner runs the trainer with metrics and reloads the service
// when a new version is saved.
type TrainingRunner struct {
	trainer  *recommend.Trainer
	reloader *Reloader
	logger   zerolog.Logger
}

// NewTrainingRunner creates a runner. reloader may be nil when the
// caller does not serve requests, as in cmd/trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingRunner(trainer *recommend.Trainer, reloader *Reloader, logger zerolog.Logger) *TrainingRunner {
	return &TrainingRunner{
		trainer:  trainer,
		reloader: reloader,
		logger:   logger.With().Str("component", "training").Logger(),
	}
}

// Train runs one training pass. An empty catalog is reported with
// recommend.ErrEmptyCatalog and leaves the stored artifacts untouched.
func (t *TrainingRunner) Train(ctx context.Context) error {
	_, err := t.Run(ctx)
	return err
}

// Run is Train returning the training report.
func (t *TrainingRunner) Run(ctx context.Context) (*recommend.TrainingReport, error) {
	report, err := t.trainer.Run(ctx)

	status := t.trainer.Status()
	metrics.RecordTraining(
		msDuration(status.LastTrainingDurationMS),
		status.VenueCount,
		err,
		errors.Is(err, recommend.ErrEmptyCatalog),
	)
	if err != nil {
		return nil, err
	}

	if t.reloader != nil {
		if _, err := t.reloader.Reload(ctx); err != nil {
			t.logger.Warn().Err(err).Int("version", report.Version).Msg("trained model saved but not loaded")
		}
	}
	return report, nil
}

// Status returns the trainer status.
func (t *TrainingRunner) Status() recommend.TrainingStatus {
	return t.trainer.Status()
}
