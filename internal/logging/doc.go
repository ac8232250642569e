// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

// Package logging provides the process-wide zerolog logger.
//
// Initialize once from main, then log through the package helpers or
// through a component logger derived from Logger:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("addr", addr).Msg("Server starting")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Catalog call failed")
//
// Request-scoped logging reads the request ID placed in the context by the
// API middleware (ContextWithRequestID).
//
// The slog bridge (NewSlogHandler, NewSlogLogger) lets sutureslog and any
// other slog consumer write through the same zerolog output.
//
// Always terminate log chains with .Msg() or .Send():
//
//	logging.Info().Str("key", "value").Msg("message")  // Correct
//	logging.Info().Str("key", "value")                 // WRONG - log not emitted
package logging
