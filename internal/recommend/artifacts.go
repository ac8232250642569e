// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package recommend

import (
	"fmt"
	"time"
)

// ArtifactSet is one trained generation of the recommender: the fitted
// feature bundle, the catalog snapshot and the spatial index built from
// it. The three parts are versioned and swapped together and are never
// mutated after training, so a set can be shared by any number of
// concurrent queries.
type ArtifactSet struct {
	// Version is assigned by the artifact store on save (0 before).
	Version int

	// TrainedAt is when Train produced the set.
	TrainedAt time.Time

	// Checksum is the SHA-256 of the stored payload, filled on load.
	Checksum string

	Bundle   *FeatureBundle
	Snapshot *Snapshot
	Index    *SpatialIndex
}

// Validate checks that the parts of the set agree with each other.
// Failures wrap ErrModelUnavailable.
func (a *ArtifactSet) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: no artifact set loaded", ErrModelUnavailable)
	}
	if a.Bundle == nil || a.Snapshot == nil || a.Index == nil {
		return fmt.Errorf("%w: artifact set is incomplete", ErrModelUnavailable)
	}
	if err := a.Bundle.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	if a.Snapshot.Len() == 0 {
		return fmt.Errorf("%w: snapshot is empty", ErrModelUnavailable)
	}
	if a.Index.Len() != a.Snapshot.Len() {
		return fmt.Errorf("%w: index has %d rows, snapshot has %d",
			ErrModelUnavailable, a.Index.Len(), a.Snapshot.Len())
	}
	if a.Index.Dim != a.Bundle.Dim() {
		return fmt.Errorf("%w: index width %d does not match feature width %d",
			ErrModelUnavailable, a.Index.Dim, a.Bundle.Dim())
	}
	return nil
}

// LocationWeight returns the training-time coordinate weight.
func (a *ArtifactSet) LocationWeight() float64 {
	return a.Bundle.Config.LocationWeight
}
