// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tomtom215/venuerec/internal/models"
)

// importFile is the YAML import document:
//
//	venues:
//	  - id: 1
//	    name: Hotel Yak
//	    city_id: 10
//	    lat: 27.70
//	    lng: 85.30
//	    veg_price: 300
type importFile struct {
	Venues []models.Venue `yaml:"venues"`
}

// DecodeYAML reads venues from r. Both the `venues:` document and a bare
// top-level list are accepted. Unknown fields are rejected.
func DecodeYAML(r io.Reader) ([]models.Venue, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return []models.Venue{}, nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	doc := &root
	if doc.Kind == yaml.DocumentNode && len(doc.Content) == 1 {
		doc = doc.Content[0]
	}

	var venues []models.Venue
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := decodeStrict(doc, &venues); err != nil {
			return nil, err
		}
	case yaml.MappingNode:
		var f importFile
		if err := decodeStrict(doc, &f); err != nil {
			return nil, err
		}
		venues = f.Venues
	default:
		return nil, fmt.Errorf("parse yaml: expected a list of venues or a venues: key, line %d", doc.Line)
	}

	if venues == nil {
		venues = []models.Venue{}
	}
	return venues, nil
}

// decodeStrict decodes node into out, rejecting unknown fields.
func decodeStrict(node *yaml.Node, out interface{}) error {
	data, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

// ImportReport summarizes an import.
type ImportReport struct {
	Read    int `json:"read"`
	Written int `json:"written"`
	Batches int `json:"batches"`
}

// Import validates venues and upserts them in batches of batchSize.
// Validation runs over the whole input before anything is written.
func Import(ctx context.Context, c Catalog, venues []models.Venue, batchSize int) (*ImportReport, error) {
	if batchSize <= 0 {
		batchSize = 500
	}
	if err := ValidateVenues(venues); err != nil {
		return nil, fmt.Errorf("validate import: %w", err)
	}

	report := &ImportReport{Read: len(venues)}
	for start := 0; start < len(venues); start += batchSize {
		end := min(start+batchSize, len(venues))
		if err := c.Upsert(ctx, venues[start:end]); err != nil {
			return report, fmt.Errorf("import batch at %d: %w", start, err)
		}
		report.Written += end - start
		report.Batches++
	}
	return report, nil
}

// ImportFile reads a YAML file and imports it into c.
func ImportFile(ctx context.Context, c Catalog, path string, batchSize int) (*ImportReport, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("open import file: %w", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	venues, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Import(ctx, c, venues, batchSize)
}
