// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"errors"

	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/models"
)

var (
	// ErrEmptyCatalog is returned by Train when there are no venues to fit.
	// No artifacts are produced or written.
	ErrEmptyCatalog = errors.New("no data: venue catalog is empty")

	// ErrModelUnavailable means the artifact set is missing, unreadable or
	// inconsistent. Callers should fall back to a same-city listing.
	ErrModelUnavailable = errors.New("recommendation model unavailable")

	// ErrInvalidCoordinate means a reference location is outside the valid
	// lat/lng ranges. Recommend never returns it; the override is dropped
	// in favor of the target venue's coordinates.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Intent identifies one of the three ranked lists.
type Intent int

const (
	// IntentSimilar ranks venues similar to the target overall.
	IntentSimilar Intent = iota
	// IntentSameLocation ranks venues close to the reference location.
	IntentSameLocation
	// IntentPriceMatch ranks venues with comparable pricing over a wider area.
	IntentPriceMatch
)

// String returns the wire name of the intent.
func (i Intent) String() string {
	switch i {
	case IntentSimilar:
		return "similar"
	case IntentSameLocation:
		return "same_location"
	case IntentPriceMatch:
		return "price_match"
	default:
		return "unknown"
	}
}

// PriceSource selects the price pair fed into a query vector.
type PriceSource int

const (
	// PriceFromTarget uses the target venue's own prices.
	PriceFromTarget PriceSource = iota
	// PriceFromCatalogMean uses the catalog-wide mean prices.
	PriceFromCatalogMean
)

// CoordSource selects the coordinate pair fed into a query vector.
type CoordSource int

const (
	// CoordFromTarget uses the target venue's coordinates.
	CoordFromTarget CoordSource = iota
	// CoordFromReference uses the resolved reference location.
	CoordFromReference
)

// QueryIntent parameterizes one nearest-neighbor pass.
//
// The city block always comes from the target venue. The coordinate block
// is scaled by LocationWeight * CoordMultiplier and candidates farther than
// MaxDistanceKm * CeilingFactor from the reference location are dropped.
type QueryIntent struct {
	Intent          Intent      `json:"intent"`
	Prices          PriceSource `json:"prices"`
	Coords          CoordSource `json:"coords"`
	CoordMultiplier float64     `json:"coord_multiplier"`
	CeilingFactor   float64     `json:"ceiling_factor"`
}

// Request is a single recommendation query.
type Request struct {
	// Target is the venue the user is viewing.
	Target models.Venue `json:"target"`

	// Reference overrides the location distances are measured from.
	// Nil or out-of-range values fall back to the target's coordinates.
	Reference *geo.Point `json:"reference,omitempty"`

	// N caps each list. Zero means Config.DefaultN.
	N int `json:"n"`

	// MaxDistanceKm is the base distance ceiling. Zero means
	// Config.DefaultMaxDistanceKm.
	MaxDistanceKm float64 `json:"max_distance_km"`

	// RequestID is carried into log lines.
	RequestID string `json:"request_id,omitempty"`
}

// Candidate is a ranked venue identifier with its true geographic
// distance from the reference location.
type Candidate struct {
	ID         int64   `json:"id"`
	DistanceKm float64 `json:"distance_km"`
}

// Result holds the three ranked lists for one request.
type Result struct {
	Similar      []Candidate `json:"similar"`
	SameLocation []Candidate `json:"same_location"`
	PriceMatch   []Candidate `json:"price_match"`

	// Reference is the location distances were measured from.
	Reference geo.Point `json:"reference"`

	// ReferenceOverridden is true when the request's reference was used.
	ReferenceOverridden bool `json:"reference_overridden"`

	// ModelVersion is the version of the artifact set used.
	ModelVersion int `json:"model_version"`
}

// List returns the candidates for an intent.
func (r *Result) List(intent Intent) []Candidate {
	switch intent {
	case IntentSimilar:
		return r.Similar
	case IntentSameLocation:
		return r.SameLocation
	case IntentPriceMatch:
		return r.PriceMatch
	default:
		return nil
	}
}

// setList stores the candidates for an intent.
func (r *Result) setList(intent Intent, list []Candidate) {
	switch intent {
	case IntentSimilar:
		r.Similar = list
	case IntentSameLocation:
		r.SameLocation = list
	case IntentPriceMatch:
		r.PriceMatch = list
	}
}

// IDs returns the identifiers of candidates in rank order.
func IDs(list []Candidate) []int64 {
	ids := make([]int64, len(list))
	for i, c := range list {
		ids[i] = c.ID
	}
	return ids
}

// AllIntents lists intents in response order.
var AllIntents = []Intent{IntentSimilar, IntentSameLocation, IntentPriceMatch}
