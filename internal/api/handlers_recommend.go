// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/venuerec/internal/catalog"
	"github.com/tomtom215/venuerec/internal/geo"
	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/models"
	"github.com/tomtom215/venuerec/internal/service"
)

// Request limits of the recommendations endpoint.
const (
	MaxN          = 50
	MaxDistanceKm = 500
)

// RecommendationsRequest holds the validated query parameters of
// GET /api/v1/venues/{id}/recommendations.
type RecommendationsRequest struct {
	N             int     `query:"n" validate:"min=1,max=50"`
	MaxDistanceKm float64 `query:"max_distance_km" validate:"finite,gt=0,lte=500"`
}

// Recommendations handles GET /api/v1/venues/{id}/recommendations.
//
// lat and lng override the reference location only when both parse as
// numbers; a malformed value is ignored. Out-of-range coordinates are
// passed through and the service falls back to the venue's location.
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	venueID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || venueID < 1 {
		respondError(w, r, http.StatusBadRequest, "INVALID_VENUE_ID", "Venue ID must be a positive integer", nil)
		return
	}

	req, apiErr := h.parseRecommendationsRequest(r)
	if apiErr != nil {
		writeError(w, r, http.StatusBadRequest, apiErr, nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, cached, err := h.svc.Recommend(ctx, service.Request{
		VenueID:       venueID,
		Reference:     referenceFromQuery(r),
		N:             req.N,
		MaxDistanceKm: req.MaxDistanceKm,
		RequestID:     logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		h.respondRecommendError(w, r, venueID, err)
		return
	}

	respondSuccess(w, r, resp, models.Metadata{
		Timestamp:   time.Now(),
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      cached,
	})
}

// parseRecommendationsRequest applies defaults and validates n and
// max_distance_km.
func (h *Handler) parseRecommendationsRequest(r *http.Request) (*RecommendationsRequest, *models.APIError) {
	n, ok := getIntParam(r, "n", h.cfg.DefaultN)
	if !ok {
		return nil, invalidParam("n", "n must be an integer")
	}
	maxDistance, ok := getFloatParam(r, "max_distance_km", h.cfg.DefaultMaxDistanceKm)
	if !ok {
		return nil, invalidParam("max_distance_km", "max_distance_km must be a number")
	}

	req := &RecommendationsRequest{N: n, MaxDistanceKm: maxDistance}
	if apiErr := validateRequest(req); apiErr != nil {
		return nil, apiErr
	}
	return req, nil
}

func invalidParam(field, message string) *models.APIError {
	return &models.APIError{
		Code:    "VALIDATION_ERROR",
		Message: message,
		Details: map[string]interface{}{"field": field},
	}
}

// referenceFromQuery returns the lat/lng override when both parse.
func referenceFromQuery(r *http.Request) *geo.Point {
	lat := parseOptionalFloat(r, "lat")
	lng := parseOptionalFloat(r, "lng")
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Point{Lat: *lat, Lng: *lng}
}

func (h *Handler) respondRecommendError(w http.ResponseWriter, r *http.Request, venueID int64, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "NOT_FOUND", "Venue "+strconv.FormatInt(venueID, 10)+" not found", nil)
	case errors.Is(err, catalog.ErrUnavailable):
		respondError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", "Venue catalog is temporarily unavailable", err)
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, "TIMEOUT", "Request timed out", err)
	case errors.Is(err, context.Canceled) && r.Context().Err() != nil:
		// Client went away; nothing useful to send.
		logging.Ctx(r.Context()).Debug().Int64("venue_id", venueID).Msg("Recommendation request cancelled")
	default:
		respondError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to generate recommendations", err)
	}
}
