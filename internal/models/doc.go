// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

/*
Package models defines the data structures shared across Venuerec.

Key Components:

  - Venue: catalog record read by the trainer, the catalog adapters and the API
  - APIResponse / APIError / Metadata: standard HTTP response envelope
  - RecommendationsResponse / RecommendedVenue: recommendation endpoint payload
  - ModelInfo / HealthStatus: model and health endpoint payloads

Models carry json tags for the API and yaml tags for catalog import files.
They contain no behavior beyond small accessors.
*/
package models
