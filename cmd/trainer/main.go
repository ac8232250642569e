// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package main is venuerec-trainer, the offline companion to the server.
// It imports venues into the catalog, trains model artifacts and manages
// stored versions. It shares the server's configuration, so both point at
// the same catalog and model directory.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/fang"
)

// version is set via ldflags at build time
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := newApp()
	err := fang.Execute(ctx, NewRootCmd(version, a))
	a.close()
	if err != nil {
		stop()
		os.Exit(1)
	}
}
