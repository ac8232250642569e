// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/venuerec/internal/catalog"
)

func NewImportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import venues from a YAML file",
		Long: `Validate and upsert venues from a YAML file into the configured catalog.
The file is either a list of venues or a document with a top-level "venues" key.
Nothing is written if any venue fails validation.`,
		Args: cobra.ExactArgs(1),
		RunE: makeImportRunner(a),
	}

	cmd.Flags().Int("batch-size", 0, "Override catalog.import_batch_size")

	return cmd
}

func makeImportRunner(a *app) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := a.config()
		if err != nil {
			return err
		}
		cat, err := a.openCatalog()
		if err != nil {
			return err
		}

		batch := cfg.Catalog.ImportBatchSize
		if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
			batch = n
		}

		report, err := catalog.ImportFile(cmd.Context(), cat, args[0], batch)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return writeJSON(cmd, report)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d venues in %d batches\n", report.Written, report.Read, report.Batches)
		return nil
	}
}
