// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/venuerec/internal/models"
)

// Train fits the feature bundle over venues and builds the spatial index.
//
// Rows are ordered by ID ascending, missing prices are zero-filled and the
// index is built with the coordinate block weighted by cfg.LocationWeight.
// The same input always yields the same bundle, snapshot and index.
// An empty catalog returns ErrEmptyCatalog.
//
//nolint:gocritic // cfg passed by value, it is two words
func Train(venues []models.Venue, cfg ModelConfig) (*ArtifactSet, error) {
	if len(venues) == 0 {
		return nil, ErrEmptyCatalog
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}

	snapshot := NewSnapshot(venues)

	cities := make([]int64, snapshot.Len())
	prices := make([][]float64, snapshot.Len())
	coords := make([][]float64, snapshot.Len())
	for i := range snapshot.Rows {
		row := &snapshot.Rows[i]
		cities[i] = row.CityID
		prices[i] = []float64{row.VegPrice, row.NonVegPrice}
		coords[i] = []float64{row.Lat, row.Lng}
	}

	priceScaler, err := FitStandardScaler(prices)
	if err != nil {
		return nil, fmt.Errorf("fit price scaler: %w", err)
	}
	coordScaler, err := FitStandardScaler(coords)
	if err != nil {
		return nil, fmt.Errorf("fit coordinate scaler: %w", err)
	}

	bundle := &FeatureBundle{
		City:   FitOneHotEncoder(cities),
		Price:  priceScaler,
		Coord:  coordScaler,
		Config: cfg,
	}

	vectors := make([][]float64, snapshot.Len())
	for i := range snapshot.Rows {
		vectors[i] = bundle.Compose(snapshot.Rows[i].featureInput(), cfg.LocationWeight)
	}

	index, err := BuildIndex(vectors)
	if err != nil {
		return nil, err
	}

	return &ArtifactSet{
		TrainedAt: time.Now().UTC(),
		Bundle:    bundle,
		Snapshot:  snapshot,
		Index:     index,
	}, nil
}

// CatalogSource provides the full venue catalog for training.
type CatalogSource interface {
	ListAll(ctx context.Context) ([]models.Venue, error)
}

// ArtifactSink persists a trained artifact set and returns its version.
type ArtifactSink interface {
	Save(ctx context.Context, set *ArtifactSet) (int, error)
}

// TrainingStatus reports the state of the trainer.
type TrainingStatus struct {
	// IsTraining indicates whether a run is in progress.
	IsTraining bool `json:"is_training"`

	// LastTrainedAt is when the last successful run completed.
	LastTrainedAt time.Time `json:"last_trained_at"`

	// LastTrainingDurationMS is how long the last run took.
	LastTrainingDurationMS int64 `json:"last_training_duration_ms"`

	// LastError contains the last run error, if any.
	LastError string `json:"last_error,omitempty"`

	// VenueCount is the number of venues in the last trained snapshot.
	VenueCount int `json:"venue_count"`

	// CityCount is the number of distinct cities in the last snapshot.
	CityCount int `json:"city_count"`

	// ModelVersion is the version written by the last successful run.
	ModelVersion int `json:"model_version"`
}

// TrainingReport summarizes a successful run.
type TrainingReport struct {
	Version    int           `json:"version"`
	VenueCount int           `json:"venue_count"`
	CityCount  int           `json:"city_count"`
	Duration   time.Duration `json:"duration"`
	TrainedAt  time.Time     `json:"trained_at"`
}

// Trainer reads the catalog, trains a new artifact set and hands it to the
// sink. Runs never overlap; a second Run while one is active fails fast.
type Trainer struct {
	source CatalogSource
	sink   ArtifactSink
	cfg    ModelConfig
	logger zerolog.Logger

	runMu    sync.Mutex
	statusMu sync.RWMutex
	status   TrainingStatus
}

// NewTrainer creates a trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(source CatalogSource, sink ArtifactSink, cfg ModelConfig, logger zerolog.Logger) (*Trainer, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}
	if sink == nil {
		return nil, fmt.Errorf("artifact sink is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model config: %w", err)
	}

	return &Trainer{
		source: source,
		sink:   sink,
		cfg:    cfg,
		logger: logger.With().Str("component", "trainer").Logger(),
	}, nil
}

// Run trains and persists a new artifact set. On ErrEmptyCatalog nothing
// is written.
func (t *Trainer) Run(ctx context.Context) (*TrainingReport, error) {
	if !t.runMu.TryLock() {
		return nil, fmt.Errorf("training already in progress")
	}
	defer t.runMu.Unlock()

	start := time.Now()
	t.setTraining(true)
	t.logger.Info().Float64("location_weight", t.cfg.LocationWeight).Msg("starting model training")

	report, err := t.run(ctx)

	t.finish(start, report, err)
	if err != nil {
		t.logger.Error().Err(err).Msg("model training failed")
		return nil, err
	}

	t.logger.Info().
		Int("version", report.Version).
		Int("venues", report.VenueCount).
		Int("cities", report.CityCount).
		Int64("duration_ms", report.Duration.Milliseconds()).
		Msg("model training complete")

	return report, nil
}

// run performs one training pass.
func (t *Trainer) run(ctx context.Context) (*TrainingReport, error) {
	start := time.Now()

	venues, err := t.source.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	set, err := Train(venues, t.cfg)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("training cancelled before save: %w", err)
	}

	version, err := t.sink.Save(ctx, set)
	if err != nil {
		return nil, fmt.Errorf("save artifacts: %w", err)
	}

	return &TrainingReport{
		Version:    version,
		VenueCount: set.Snapshot.Len(),
		CityCount:  set.Snapshot.CityCount(),
		Duration:   time.Since(start),
		TrainedAt:  set.TrainedAt,
	}, nil
}

// setTraining marks a run as started.
func (t *Trainer) setTraining(active bool) {
	t.statusMu.Lock()
	t.status.IsTraining = active
	t.statusMu.Unlock()
}

// finish records the outcome of a run.
func (t *Trainer) finish(start time.Time, report *TrainingReport, err error) {
	t.statusMu.Lock()
	defer t.statusMu.Unlock()

	t.status.IsTraining = false
	t.status.LastTrainingDurationMS = time.Since(start).Milliseconds()
	if err != nil {
		t.status.LastError = err.Error()
		return
	}
	t.status.LastError = ""
	t.status.LastTrainedAt = report.TrainedAt
	t.status.VenueCount = report.VenueCount
	t.status.CityCount = report.CityCount
	t.status.ModelVersion = report.Version
}

// Status returns a copy of the trainer status.
func (t *Trainer) Status() TrainingStatus {
	t.statusMu.RLock()
	defer t.statusMu.RUnlock()
	return t.status
}
