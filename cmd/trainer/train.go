// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/recommend"
	"github.com/tomtom215/venuerec/internal/service"
)

func NewTrainCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a new model version",
		Long: `Read the whole catalog, train a new artifact set and make it the active
version. Running servers pick it up on their next reload.`,
		Args: cobra.NoArgs,
		RunE: makeTrainRunner(a),
	}

	cmd.Flags().Float64("location-weight", 0, "Override recommend.location_weight")
	cmd.Flags().Bool("prune", true, "Remove versions beyond recommend.keep_versions afterwards")

	return cmd
}

func makeTrainRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := a.config()
		if err != nil {
			return err
		}
		cat, err := a.openCatalog()
		if err != nil {
			return err
		}
		store, err := a.openStore()
		if err != nil {
			return err
		}

		modelCfg := recommend.ModelConfig{LocationWeight: cfg.Recommend.LocationWeight}
		if w, _ := cmd.Flags().GetFloat64("location-weight"); w > 0 {
			modelCfg.LocationWeight = w
		}

		trainer, err := recommend.NewTrainer(cat, store, modelCfg, logging.Logger())
		if err != nil {
			return err
		}
		report, err := service.NewTrainingRunner(trainer, nil, logging.Logger()).Run(cmd.Context())
		if err != nil {
			return fmt.Errorf("train: %w", err)
		}

		if prune, _ := cmd.Flags().GetBool("prune"); prune {
			removed, err := store.Prune(cmd.Context(), cfg.Recommend.KeepVersions)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			logging.Debug().Int("removed", removed).Msg("pruned old versions")
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, report)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "trained version %d: %d venues, %d cities in %s\n",
			report.Version, report.VenueCount, report.CityCount, report.Duration.Round(time.Millisecond))
		return nil
	}
}
