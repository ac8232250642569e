// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package service

import (
	"context"
	"fmt"
	"math"

	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/recommend"
)

// fallback fills every list from venues in the target's city, in catalog
// order. price_match prefers venues priced within PriceTolerance of the
// target and is topped up with the remaining same-city venues.
//
//nolint:gocritic // hugeParam: target passed by value for immutability
func (s *Service) fallback(ctx context.Context, target models.Venue, ref *geo.Point, n int) (*models.RecommendationsResponse, error) {
	limit := max(s.cfg.FallbackScanLimit, n)
	sameCity, err := s.catalog.ListByCity(ctx, target.CityID, target.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("fallback listing for city %d: %w", target.CityID, err)
	}

	reference, overridden, _ := recommend.ResolveReference(target, ref)
	source := "venue"
	if overridden {
		source = "request"
	}

	plain := sameCity[:min(n, len(sameCity))]

	return &models.RecommendationsResponse{
		Venue:        target,
		Similar:      rankVenues(plain, reference),
		SameLocation: rankVenues(plain, reference),
		PriceMatch:   rankVenues(priceBand(target, sameCity, s.cfg.PriceTolerance, n), reference),
		Reference: models.ReferenceLocation{
			Lat:    reference.Lat,
			Lng:    reference.Lng,
			Source: source,
		},
		Degraded: true,
	}, nil
}

// priceBand returns up to n venues, those within tolerance of the
// target's prices first, then the rest in their original order.
//
//nolint:gocritic // hugeParam: target passed by value for immutability
func priceBand(target models.Venue, venues []models.Venue, tolerance float64, n int) []models.Venue {
	targetVeg, targetNonVeg := target.Prices()

	out := make([]models.Venue, 0, min(n, len(venues)))
	rest := make([]models.Venue, 0, len(venues))
	for i := range venues {
		veg, nonVeg := venues[i].Prices()
		if withinTolerance(veg, targetVeg, tolerance) && withinTolerance(nonVeg, targetNonVeg, tolerance) {
			if len(out) < n {
				out = append(out, venues[i])
			}
			continue
		}
		rest = append(rest, venues[i])
	}

	for i := 0; i < len(rest) && len(out) < n; i++ {
		out = append(out, rest[i])
	}
	return out
}

// withinTolerance reports whether price is within tolerance*reference of
// reference. A zero reference only matches a zero price.
func withinTolerance(price, reference, tolerance float64) bool {
	return math.Abs(price-reference) <= tolerance*reference
}

// rankVenues assigns 1-based ranks and distances from reference.
func rankVenues(venues []models.Venue, reference geo.Point) []models.RecommendedVenue {
	out := make([]models.RecommendedVenue, len(venues))
	for i := range venues {
		out[i] = models.RecommendedVenue{
			Venue:      venues[i],
			Rank:       i + 1,
			DistanceKm: geo.DistanceKm(reference.Lng, reference.Lat, venues[i].Lng, venues[i].Lat),
		}
	}
	return out
}
