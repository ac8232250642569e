// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/venuerec/internal/models"
)

// HealthLive handles GET /health/live. It only reports that the process
// serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"status":         "alive",
			"uptime_seconds": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}

// HealthReady handles GET /health/ready. The service is ready when a
// model is loaded or the catalog answers, so the fallback can run.
//
// A loaded model with an unreachable catalog still reports ready with
// status "degraded": requests for known venues fail, but the process
// should stay in rotation until the breaker recovers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	readiness := h.svc.Ready(r.Context())

	health := models.HealthStatus{
		Status:       "ready",
		ModelLoaded:  readiness.ModelLoaded,
		ModelVersion: readiness.ModelVersion,
		CatalogState: readiness.CatalogState,
	}
	status := http.StatusOK
	switch {
	case !readiness.Ready:
		health.Status = "not_ready"
		status = http.StatusServiceUnavailable
	case !readiness.ModelLoaded || readiness.CatalogState == "unavailable":
		health.Status = "degraded"
	}

	respondJSON(w, r, status, &models.APIResponse{
		Status:   "success",
		Data:     health,
		Metadata: models.Metadata{Timestamp: time.Now()},
	})
}
