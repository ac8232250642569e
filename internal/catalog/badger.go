// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/venuerec/internal/models"
)

// Key prefixes. IDs are encoded big-endian so byte order matches ID order
// for non-negative IDs.
const (
	venueKeyPrefix = "venue:"
	cityKeyPrefix  = "city:"
)

// BadgerCatalog stores venues in an embedded BadgerDB.
//
// Layout:
//
//	venue:{id}        -> JSON venue
//	city:{city}{id}   -> empty (secondary index for ListByCity)
type BadgerCatalog struct {
	db     *badger.DB
	ownsDB bool
}

// NewBadgerCatalog opens a BadgerDB at path. An empty path opens an
// in-memory database.
func NewBadgerCatalog(path string) (*BadgerCatalog, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerCatalog{db: db, ownsDB: true}, nil
}

// NewBadgerCatalogFromDB wraps an already open database. Close leaves it open.
func NewBadgerCatalogFromDB(db *badger.DB) *BadgerCatalog {
	return &BadgerCatalog{db: db}
}

// Name implements Catalog.
func (c *BadgerCatalog) Name() string { return BackendBadger }

// Close implements Catalog.
func (c *BadgerCatalog) Close() error {
	if !c.ownsDB {
		return nil
	}
	return c.db.Close()
}

func venueKey(id int64) []byte {
	key := make([]byte, len(venueKeyPrefix)+8)
	copy(key, venueKeyPrefix)
	binary.BigEndian.PutUint64(key[len(venueKeyPrefix):], uint64(id)) //nolint:gosec // IDs are validated positive
	return key
}

func cityPrefix(cityID int64) []byte {
	key := make([]byte, len(cityKeyPrefix)+8)
	copy(key, cityKeyPrefix)
	binary.BigEndian.PutUint64(key[len(cityKeyPrefix):], uint64(cityID)) //nolint:gosec // IDs are validated positive
	return key
}

func cityKey(cityID, id int64) []byte {
	key := cityPrefix(cityID)
	return binary.BigEndian.AppendUint64(key, uint64(id)) //nolint:gosec // IDs are validated positive
}

// getVenue reads one venue inside txn.
func getVenue(txn *badger.Txn, id int64) (*models.Venue, error) {
	item, err := txn.Get(venueKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get venue %d: %w", id, err)
	}

	var v models.Venue
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &v)
	}); err != nil {
		return nil, fmt.Errorf("decode venue %d: %w", id, err)
	}
	return &v, nil
}

// FetchByIDs implements Catalog.
func (c *BadgerCatalog) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	out := make([]models.Venue, 0, len(ids))
	err := c.db.View(func(txn *badger.Txn) error {
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := getVenue(txn, id)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			out = append(out, *v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// MeanPrices implements Catalog.
func (c *BadgerCatalog) MeanPrices(ctx context.Context) (veg, nonVeg float64, err error) {
	all, err := c.ListAll(ctx)
	if err != nil {
		return 0, 0, err
	}
	veg, nonVeg = meanPrices(all)
	return veg, nonVeg, nil
}

// ListAll implements Catalog. Key order is ID order.
func (c *BadgerCatalog) ListAll(ctx context.Context) ([]models.Venue, error) {
	venues := []models.Venue{}
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(venueKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var v models.Venue
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &v)
			}); err != nil {
				return fmt.Errorf("decode venue: %w", err)
			}
			venues = append(venues, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// ListByCity implements Catalog using the city index.
func (c *BadgerCatalog) ListByCity(ctx context.Context, cityID, excludeID int64, limit int) ([]models.Venue, error) {
	venues := []models.Venue{}
	if limit <= 0 {
		return venues, nil
	}

	err := c.db.View(func(txn *badger.Txn) error {
		prefix := cityPrefix(cityID)
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid() && len(venues) < limit; it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			key := it.Item().Key()
			id := int64(binary.BigEndian.Uint64(key[len(prefix):])) //nolint:gosec // written from int64
			if id == excludeID {
				continue
			}
			v, err := getVenue(txn, id)
			if err != nil {
				return err
			}
			venues = append(venues, *v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return venues, nil
}

// Get implements Catalog.
func (c *BadgerCatalog) Get(ctx context.Context, id int64) (*models.Venue, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var v *models.Venue
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = getVenue(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Upsert implements Catalog. The city index entry moves with the venue.
func (c *BadgerCatalog) Upsert(ctx context.Context, venues []models.Venue) error {
	if err := ValidateVenues(venues); err != nil {
		return err
	}

	wb := c.db.NewWriteBatch()
	defer wb.Cancel()

	// Read previous city assignments first so stale index keys can be
	// dropped in the same batch.
	previous := make(map[int64]int64, len(venues))
	if err := c.db.View(func(txn *badger.Txn) error {
		for i := range venues {
			old, err := getVenue(txn, venues[i].ID)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			previous[old.ID] = old.CityID
		}
		return nil
	}); err != nil {
		return err
	}

	for i := range venues {
		if err := ctx.Err(); err != nil {
			return err
		}
		v := &venues[i]
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal venue %d: %w", v.ID, err)
		}
		if oldCity, ok := previous[v.ID]; ok && oldCity != v.CityID {
			if err := wb.Delete(cityKey(oldCity, v.ID)); err != nil {
				return fmt.Errorf("drop city index for %d: %w", v.ID, err)
			}
		}
		if err := wb.Set(venueKey(v.ID), data); err != nil {
			return fmt.Errorf("set venue %d: %w", v.ID, err)
		}
		if err := wb.Set(cityKey(v.CityID, v.ID), nil); err != nil {
			return fmt.Errorf("set city index for %d: %w", v.ID, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("flush venues: %w", err)
	}
	return nil
}

// Count implements Catalog.
func (c *BadgerCatalog) Count(ctx context.Context) (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(venueKeyPrefix)
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			n++
		}
		return ctx.Err()
	})
	return n, err
}
