// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/venuerec/internal/logging"
	"github.com/tomtom215/venuerec/internal/models"
)

// Model handles GET /api/v1/model and describes the active artifact set,
// including how far catalog prices have drifted since it was trained.
func (h *Handler) Model(w http.ResponseWriter, r *http.Request) {
	info, ok := h.svc.ModelInfo()
	if !ok {
		respondError(w, r, http.StatusServiceUnavailable, "MODEL_UNAVAILABLE", "No trained model is loaded", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()
	drift, err := h.svc.PriceDrift(ctx)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Price drift unavailable")
	} else {
		info.PriceDrift = drift
	}

	respondSuccess(w, r, info, models.Metadata{Timestamp: time.Now()})
}
