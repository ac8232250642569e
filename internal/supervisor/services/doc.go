// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package services provides suture.Service implementations for the
// supervisor tree: the HTTP server, the scheduled trainer and the
// artifact reloader.
//
// Each service depends on a one-method interface rather than a concrete
// type so it can be tested with fakes:
//
//	HTTPServerService  -> HTTPServer (ListenAndServe, Shutdown)
//	TrainerService     -> Trainer    (Train)
//	ReloaderService    -> Reloader   (Reload)
package services
