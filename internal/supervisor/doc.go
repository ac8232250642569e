// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package supervisor runs the server's long-lived services under a suture v4
supervisor tree.

Services are grouped in two layers so that failures stay contained:

  - model-layer: the scheduled trainer and the artifact reloader
  - api-layer: the HTTP server

A service that returns an error is restarted with exponential backoff
once FailureThreshold is crossed; failures decay over FailureDecay
seconds. Supervisor events (restarts, backoff, panics) are logged through
sutureslog on the slog bridge from internal/logging, so they land in the
same zerolog stream as the rest of the process.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddModelService(services.NewReloaderService(reloader, time.Minute, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	return tree.Serve(ctx)

The service implementations live in the services subpackage.
*/
package supervisor
