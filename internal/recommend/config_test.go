// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"math"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	t.Run("pass multipliers", func(t *testing.T) {
		if cfg.SimilarMultiplier != 1 {
			t.Errorf("SimilarMultiplier = %f, want 1", cfg.SimilarMultiplier)
		}
		if cfg.SameLocationMultiplier != 3 {
			t.Errorf("SameLocationMultiplier = %f, want 3", cfg.SameLocationMultiplier)
		}
		if cfg.PriceMatchMultiplier != 0.5 {
			t.Errorf("PriceMatchMultiplier = %f, want 0.5", cfg.PriceMatchMultiplier)
		}
		if cfg.PriceMatchCeilingFactor != 2 {
			t.Errorf("PriceMatchCeilingFactor = %f, want 2", cfg.PriceMatchCeilingFactor)
		}
	})

	t.Run("request defaults", func(t *testing.T) {
		if cfg.MaxCandidates != 15 {
			t.Errorf("MaxCandidates = %d, want 15", cfg.MaxCandidates)
		}
		if cfg.DefaultN != 5 {
			t.Errorf("DefaultN = %d, want 5", cfg.DefaultN)
		}
		if cfg.DefaultMaxDistanceKm != 15 {
			t.Errorf("DefaultMaxDistanceKm = %f, want 15", cfg.DefaultMaxDistanceKm)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"zero similar multiplier", func(c *Config) { c.SimilarMultiplier = 0 }, true},
		{"negative same location multiplier", func(c *Config) { c.SameLocationMultiplier = -1 }, true},
		{"NaN price match multiplier", func(c *Config) { c.PriceMatchMultiplier = math.NaN() }, true},
		{"ceiling factor below one", func(c *Config) { c.PriceMatchCeilingFactor = 0.5 }, true},
		{"ceiling factor of one", func(c *Config) { c.PriceMatchCeilingFactor = 1 }, false},
		{"zero candidates", func(c *Config) { c.MaxCandidates = 0 }, true},
		{"zero default n", func(c *Config) { c.DefaultN = 0 }, true},
		{"max n below default", func(c *Config) { c.MaxN = 2 }, true},
		{"zero distance", func(c *Config) { c.DefaultMaxDistanceKm = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestModelConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		weight  float64
		wantErr bool
	}{
		{2.0, false},
		{0.1, false},
		{0, true},
		{-1, true},
		{math.Inf(1), true},
		{math.NaN(), true},
	}

	for _, tt := range tests {
		err := ModelConfig{LocationWeight: tt.weight}.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Validate(%f) error = %v, wantErr %v", tt.weight, err, tt.wantErr)
		}
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.SameLocationMultiplier = 9

	if cfg.SameLocationMultiplier == 9 {
		t.Error("Clone() shares state with the original")
	}
}

func TestConfig_Intents(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.SameLocationMultiplier = 4
	intents := cfg.Intents()

	if len(intents) != len(AllIntents) {
		t.Fatalf("Intents() returned %d passes, want %d", len(intents), len(AllIntents))
	}
	for i, intent := range intents {
		if intent.Intent != AllIntents[i] {
			t.Errorf("Intents()[%d] = %s, want %s", i, intent.Intent, AllIntents[i])
		}
	}

	same := intents[1]
	if same.Prices != PriceFromCatalogMean || same.Coords != CoordFromReference {
		t.Errorf("same_location sources = %d/%d, want catalog mean and reference", same.Prices, same.Coords)
	}
	if same.CoordMultiplier != 4 {
		t.Errorf("same_location multiplier = %f, want 4", same.CoordMultiplier)
	}
	if intents[2].CeilingFactor != 2 {
		t.Errorf("price_match ceiling factor = %f, want 2", intents[2].CeilingFactor)
	}
}
