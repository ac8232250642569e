// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package main

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/venuerec/internal/recommend/storage"
)

func NewListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored model versions",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore()
			if err != nil {
				return err
			}
			versions, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("list versions: %w", err)
			}
			current, _ := store.CurrentVersion()

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd, versionListing{Current: current, Versions: versions})
			}
			return printVersions(cmd, versions, current)
		},
	}
}

type versionListing struct {
	Current  int                        `json:"current"`
	Versions []storage.ArtifactMetadata `json:"versions"`
}

func printVersions(cmd *cobra.Command, versions []storage.ArtifactMetadata, current int) error {
	if len(versions) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no model versions stored")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "VERSION\tTRAINED\tVENUES\tCITIES\tSIZE\t")
	for _, m := range versions {
		marker := ""
		if m.Version == current {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d%s\t%s\t%d\t%d\t%d\t\n",
			m.Version, marker, m.TrainedAt.Format("2006-01-02 15:04:05"), m.VenueCount, m.CityCount, m.SizeBytes)
	}
	return tw.Flush()
}

func NewPruneCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove old model versions",
		Long:  `Remove all but the newest versions. The active version is always kept.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}

			keep := cfg.Recommend.KeepVersions
			if n, _ := cmd.Flags().GetInt("keep"); n > 0 {
				keep = n
			}
			removed, err := store.Prune(cmd.Context(), keep)
			if err != nil {
				return fmt.Errorf("prune: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d versions\n", removed)
			return nil
		},
	}

	cmd.Flags().Int("keep", 0, "Override recommend.keep_versions")

	return cmd
}

func NewActivateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "activate <version>",
		Short: "Make a stored version the active model",
		Long: `Point the store at an existing version, e.g. to roll back a bad model.
The version is fully loaded and validated before it is activated.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil || version < 1 {
				return fmt.Errorf("invalid version %q", args[0])
			}
			store, err := a.openStore()
			if err != nil {
				return err
			}

			if _, _, err := store.Load(cmd.Context(), version); err != nil {
				return fmt.Errorf("version %d: %w", version, err)
			}
			if err := store.Activate(cmd.Context(), version); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d is now active\n", version)
			return nil
		},
	}
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
