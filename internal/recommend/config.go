// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"fmt"
	"math"
)

// ModelConfig is the configuration persisted with an artifact set.
// It is fixed at training time and read back at query time.
type ModelConfig struct {
	// LocationWeight scales the coordinate block of training vectors.
	// Query passes multiply it by their own CoordMultiplier.
	LocationWeight float64 `json:"location_weight"`
}

// DefaultModelConfig returns the training defaults.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{LocationWeight: 2.0}
}

// Validate checks the model configuration.
func (c ModelConfig) Validate() error {
	if !(c.LocationWeight > 0) || math.IsInf(c.LocationWeight, 0) {
		return fmt.Errorf("location_weight must be positive, got %f", c.LocationWeight)
	}
	return nil
}

// Config contains the query-time configuration of the engine.
type Config struct {
	// SimilarMultiplier scales the coordinate block for the similar pass.
	SimilarMultiplier float64 `json:"similar_multiplier"`

	// SameLocationMultiplier scales the coordinate block for the
	// same_location pass. Values above 1 pull results toward the
	// reference location.
	SameLocationMultiplier float64 `json:"same_location_multiplier"`

	// PriceMatchMultiplier scales the coordinate block for the
	// price_match pass. Values below 1 let price similarity dominate.
	PriceMatchMultiplier float64 `json:"price_match_multiplier"`

	// PriceMatchCeilingFactor multiplies the distance ceiling of the
	// price_match pass.
	PriceMatchCeilingFactor float64 `json:"price_match_ceiling_factor"`

	// MaxCandidates is the number of index neighbors fetched per pass,
	// capped at the catalog size.
	MaxCandidates int `json:"max_candidates"`

	// DefaultN is the list size used when a request leaves N unset.
	DefaultN int `json:"default_n"`

	// MaxN is the largest accepted list size.
	MaxN int `json:"max_n"`

	// DefaultMaxDistanceKm is the base ceiling used when a request leaves
	// MaxDistanceKm unset.
	DefaultMaxDistanceKm float64 `json:"default_max_distance_km"`
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() *Config {
	return &Config{
		SimilarMultiplier:       1.0,
		SameLocationMultiplier:  3.0,
		PriceMatchMultiplier:    0.5,
		PriceMatchCeilingFactor: 2.0,
		MaxCandidates:           15,
		DefaultN:                5,
		MaxN:                    50,
		DefaultMaxDistanceKm:    15,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if !(c.SimilarMultiplier > 0) {
		return fmt.Errorf("similar_multiplier must be positive, got %f", c.SimilarMultiplier)
	}
	if !(c.SameLocationMultiplier > 0) {
		return fmt.Errorf("same_location_multiplier must be positive, got %f", c.SameLocationMultiplier)
	}
	if !(c.PriceMatchMultiplier > 0) {
		return fmt.Errorf("price_match_multiplier must be positive, got %f", c.PriceMatchMultiplier)
	}
	if !(c.PriceMatchCeilingFactor >= 1) {
		return fmt.Errorf("price_match_ceiling_factor must be at least 1, got %f", c.PriceMatchCeilingFactor)
	}
	if c.MaxCandidates < 1 {
		return fmt.Errorf("max_candidates must be positive, got %d", c.MaxCandidates)
	}
	if c.DefaultN < 1 {
		return fmt.Errorf("default_n must be positive, got %d", c.DefaultN)
	}
	if c.MaxN < c.DefaultN {
		return fmt.Errorf("max_n must be at least default_n (%d), got %d", c.DefaultN, c.MaxN)
	}
	if !(c.DefaultMaxDistanceKm > 0) {
		return fmt.Errorf("default_max_distance_km must be positive, got %f", c.DefaultMaxDistanceKm)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Intents returns the query intents in response order.
func (c *Config) Intents() []QueryIntent {
	return []QueryIntent{
		{
			Intent:          IntentSimilar,
			Prices:          PriceFromTarget,
			Coords:          CoordFromTarget,
			CoordMultiplier: c.SimilarMultiplier,
			CeilingFactor:   1,
		},
		{
			Intent:          IntentSameLocation,
			Prices:          PriceFromCatalogMean,
			Coords:          CoordFromReference,
			CoordMultiplier: c.SameLocationMultiplier,
			CeilingFactor:   1,
		},
		{
			Intent:          IntentPriceMatch,
			Prices:          PriceFromTarget,
			Coords:          CoordFromTarget,
			CoordMultiplier: c.PriceMatchMultiplier,
			CeilingFactor:   c.PriceMatchCeilingFactor,
		},
	}
}
