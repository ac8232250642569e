// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/config"
	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/recommend/storage"
)

// app lazily opens the resources a command needs. Commands that only
// touch the model store never open the catalog.
type app struct {
	cfg     *config.Config
	catalog catalog.Catalog
	store   *storage.Store
}

func newApp() *app {
	return &app{}
}

func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	a.cfg = cfg
	return cfg, nil
}

func (a *app) openCatalog() (catalog.Catalog, error) {
	if a.catalog != nil {
		return a.catalog, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	// No circuit breaker: a batch job should fail on the first error
	// rather than wait out an open breaker.
	cat, err := catalog.Open(catalog.Options{
		Backend:    cfg.Catalog.Backend,
		DuckDBPath: cfg.Catalog.DuckDBPath,
		BadgerPath: cfg.Catalog.BadgerPath,
	})
	if err != nil {
		return nil, err
	}
	a.catalog = cat
	return cat, nil
}

func (a *app) openStore() (*storage.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	store, err := storage.NewStore(cfg.Recommend.ModelPath)
	if err != nil {
		return nil, fmt.Errorf("open model store: %w", err)
	}
	a.store = store
	return store, nil
}

func (a *app) close() {
	if a.catalog != nil {
		if err := a.catalog.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing catalog")
		}
		a.catalog = nil
	}
}

// NewRootCmd builds the command tree. The caller closes a after execution.
func NewRootCmd(version string, a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "venuerec-trainer",
		Short:         "Train and manage venue recommendation models",
		Long:          `Import venues into the catalog, train model artifacts and manage stored model versions.`,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			level := cfg.Logging.Level
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = "debug"
			}
			logging.Init(logging.Config{
				Level:  level,
				Format: "console",
				Output: os.Stderr,
			})
			return nil
		},
		Run: func(cmd *cobra.Command, _ []string) {
			_ = cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		NewTrainCmd(a),
		NewImportCmd(a),
		NewListCmd(a),
		NewPruneCmd(a),
		NewActivateCmd(a),
	)

	return rootCmd
}
