// Venuerec - Venue Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/venuerec

package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB database/sql driver

	"github.com/tomtom215/venuerec/internal/models"
)

const venueSchema = `
CREATE TABLE IF NOT EXISTS venues (
	id            BIGINT PRIMARY KEY,
	name          VARCHAR NOT NULL DEFAULT '',
	slug          VARCHAR NOT NULL DEFAULT '',
	city_id       BIGINT NOT NULL,
	lat           DOUBLE NOT NULL,
	lng           DOUBLE NOT NULL,
	veg_price     DOUBLE,
	non_veg_price DOUBLE
)`

const venueColumns = `id, name, slug, city_id, lat, lng, veg_price, non_veg_price`

// DuckDBCatalog stores venues in a DuckDB table.
type DuckDBCatalog struct {
	conn *sql.DB
	path string
}

// NewDuckDBCatalog opens (or creates) the DuckDB file at path and ensures
// the venues table exists. Use ":memory:" for a throwaway database.
func NewDuckDBCatalog(path string) (*DuckDBCatalog, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create database directory %s: %w", dir, err)
			}
		}
	}

	// Extensions are not needed; disabling autoload avoids network access.
	connStr := fmt.Sprintf("%s?threads=%d&autoinstall_known_extensions=false&autoload_known_extensions=false",
		path, runtime.NumCPU())

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(runtime.NumCPU())
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxIdleTime(5 * time.Minute)

	c := &DuckDBCatalog{conn: conn, path: path}
	if err := c.initialize(context.Background()); err != nil {
		_ = conn.Close() //nolint:errcheck // already returning the init error
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return c, nil
}

// initialize creates the schema.
func (c *DuckDBCatalog) initialize(ctx context.Context) error {
	// No secondary index on city_id: INSERT OR REPLACE is only supported
	// when the primary key is the sole index.
	_, err := c.conn.ExecContext(ctx, venueSchema)
	return err
}

// Name implements Catalog.
func (c *DuckDBCatalog) Name() string { return BackendDuckDB }

// Close implements Catalog.
func (c *DuckDBCatalog) Close() error {
	return c.conn.Close()
}

// Ping checks the connection.
func (c *DuckDBCatalog) Ping(ctx context.Context) error {
	return c.conn.PingContext(ctx)
}

// FetchByIDs implements Catalog.
func (c *DuckDBCatalog) FetchByIDs(ctx context.Context, ids []int64) ([]models.Venue, error) {
	if len(ids) == 0 {
		return []models.Venue{}, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	//nolint:gosec // only placeholders are interpolated
	query := fmt.Sprintf(`SELECT %s FROM venues WHERE id IN (%s)`, venueColumns, placeholders)
	return c.queryVenues(ctx, query, args...)
}

// MeanPrices implements Catalog.
func (c *DuckDBCatalog) MeanPrices(ctx context.Context) (veg, nonVeg float64, err error) {
	row := c.conn.QueryRowContext(ctx, `
		SELECT
			COALESCE(AVG(COALESCE(veg_price, 0)), 0),
			COALESCE(AVG(COALESCE(non_veg_price, 0)), 0)
		FROM venues`)
	if err := row.Scan(&veg, &nonVeg); err != nil {
		return 0, 0, fmt.Errorf("mean prices: %w", err)
	}
	return veg, nonVeg, nil
}

// ListAll implements Catalog.
func (c *DuckDBCatalog) ListAll(ctx context.Context) ([]models.Venue, error) {
	return c.queryVenues(ctx, `SELECT `+venueColumns+` FROM venues ORDER BY id`)
}

// ListByCity implements Catalog.
func (c *DuckDBCatalog) ListByCity(ctx context.Context, cityID, excludeID int64, limit int) ([]models.Venue, error) {
	if limit <= 0 {
		return []models.Venue{}, nil
	}
	return c.queryVenues(ctx,
		`SELECT `+venueColumns+` FROM venues WHERE city_id = ? AND id <> ? ORDER BY id LIMIT ?`,
		cityID, excludeID, limit)
}

// Get implements Catalog.
func (c *DuckDBCatalog) Get(ctx context.Context, id int64) (*models.Venue, error) {
	row := c.conn.QueryRowContext(ctx, `SELECT `+venueColumns+` FROM venues WHERE id = ?`, id)
	v, err := scanVenue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get venue %d: %w", id, err)
	}
	return &v, nil
}

// Upsert implements Catalog. The batch is applied in one transaction.
func (c *DuckDBCatalog) Upsert(ctx context.Context, venues []models.Venue) error {
	if err := ValidateVenues(venues); err != nil {
		return err
	}
	if len(venues) == 0 {
		return nil
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }() //nolint:errcheck // no-op after commit

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO venues (`+venueColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare upsert: %w", err)
	}
	defer func() { _ = stmt.Close() }() //nolint:errcheck // statement close after use

	for i := range venues {
		v := &venues[i]
		if _, err := stmt.ExecContext(ctx, v.ID, v.Name, v.Slug, v.CityID, v.Lat, v.Lng,
			nullablePrice(v.VegPrice), nullablePrice(v.NonVegPrice)); err != nil {
			return fmt.Errorf("upsert venue %d: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit upsert: %w", err)
	}
	return nil
}

// Count implements Catalog.
func (c *DuckDBCatalog) Count(ctx context.Context) (int, error) {
	var n int
	if err := c.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM venues`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count venues: %w", err)
	}
	return n, nil
}

// queryVenues runs a query returning venue rows.
func (c *DuckDBCatalog) queryVenues(ctx context.Context, query string, args ...interface{}) ([]models.Venue, error) {
	rows, err := c.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query venues: %w", err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // rows close after iteration

	venues := []models.Venue{}
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan venue: %w", err)
		}
		venues = append(venues, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate venues: %w", err)
	}
	return venues, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanVenue reads one venue in venueColumns order.
func scanVenue(row rowScanner) (models.Venue, error) {
	var (
		v           models.Venue
		veg, nonVeg sql.NullFloat64
	)
	if err := row.Scan(&v.ID, &v.Name, &v.Slug, &v.CityID, &v.Lat, &v.Lng, &veg, &nonVeg); err != nil {
		return models.Venue{}, err
	}
	if veg.Valid {
		v.VegPrice = models.Price(veg.Float64)
	}
	if nonVeg.Valid {
		v.NonVegPrice = models.Price(nonVeg.Float64)
	}
	return v, nil
}

// nullablePrice converts an optional price to a driver value.
func nullablePrice(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}
