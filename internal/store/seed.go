package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/leapstack-labs/facilitydir/pkg/core"
)

const (
	// Keyed by name; keeps the existing id so reseeding never churns
	// amenity ids or cascades into facility_amenities.
	upsertAmenitySQL = `INSERT INTO amenities (name) VALUES (?)
		ON CONFLICT(name) DO UPDATE SET name = excluded.name`

	// REPLACE deletes the old row first, which cascades its associations;
	// step 4 re-inserts them from the dataset.
	replaceFacilitySQL = `INSERT OR REPLACE INTO facilities (id, name, address, latitude, longitude)
		VALUES (?, ?, ?, ?, ?)`

	replaceAssociationSQL = `INSERT OR REPLACE INTO facility_amenities (facility_id, amenity_id) VALUES (?, ?)`
)

// wipeTables lists the directory tables children first.
var wipeTables = []string{"facility_amenities", "facilities", "amenities"}

// Counts returns the row count of each directory table.
func (s *SQLiteStore) Counts(ctx context.Context) (core.Stats, error) {
	var stats core.Stats
	if s.db == nil {
		return stats, ErrNotOpened
	}

	targets := []struct {
		table string
		dst   *int64
	}{
		{"facilities", &stats.Facilities},
		{"amenities", &stats.Amenities},
		{"facility_amenities", &stats.Associations},
	}
	for _, t := range targets {
		//nolint:gosec // G202: table names come from the fixed list above
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.table).Scan(t.dst); err != nil {
			return core.Stats{}, fmt.Errorf("failed to count %s: %w", t.table, err)
		}
	}
	return stats, nil
}

// EnsureSeeded seeds the database when any of the three tables is empty.
// An empty table signals a missing or interrupted seed. It reports whether
// a seed ran.
func (s *SQLiteStore) EnsureSeeded(ctx context.Context, facilities []core.Facility) (bool, error) {
	stats, err := s.Counts(ctx)
	if err != nil {
		return false, err
	}
	if !stats.AnyEmpty() {
		s.logger.Debug("database already seeded",
			"facilities", stats.Facilities,
			"amenities", stats.Amenities,
			"associations", stats.Associations)
		return false, nil
	}

	s.logger.Info("seeding database", "facilities", len(facilities), "reason", "empty table")
	if err := s.Seed(ctx, facilities); err != nil {
		return false, err
	}
	return true, nil
}

// Seed loads facilities, their amenities, and the associations in a single
// transaction. Either the whole set becomes visible or nothing does.
func (s *SQLiteStore) Seed(ctx context.Context, facilities []core.Facility) error {
	return s.seed(ctx, facilities, false)
}

// Replace swaps the directory contents for facilities in a single
// transaction. Rows missing from facilities are removed. Readers see either
// the old directory or the new one, never an empty or missing table.
func (s *SQLiteStore) Replace(ctx context.Context, facilities []core.Facility) error {
	return s.seed(ctx, facilities, true)
}

func (s *SQLiteStore) seed(ctx context.Context, facilities []core.Facility, wipe bool) error {
	if s.db == nil {
		return ErrNotOpened
	}

	// Step 1: distinct amenity names, exact match, first-seen order
	amenities := distinctAmenities(facilities)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if wipe {
		for _, table := range wipeTables {
			//nolint:gosec // G202: table names come from wipeTables
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}
	}

	// Step 2: amenities, then the name -> id lookup
	if err := execEach(ctx, tx, upsertAmenitySQL, len(amenities), func(i int) []any {
		return []any{amenities[i]}
	}); err != nil {
		return fmt.Errorf("failed to insert amenities: %w", err)
	}

	ids, err := amenityIDs(ctx, tx)
	if err != nil {
		return err
	}

	// Step 3: facilities keyed by id
	if err := execEach(ctx, tx, replaceFacilitySQL, len(facilities), func(i int) []any {
		f := facilities[i]
		return []any{f.ID, f.Name, f.Address, f.Location.Latitude, f.Location.Longitude}
	}); err != nil {
		return fmt.Errorf("failed to insert facilities: %w", err)
	}

	// Step 4: associations, skipping names missing from the lookup
	var pairs [][2]any
	for _, f := range facilities {
		for _, name := range f.Facilities {
			id, ok := ids[name]
			if !ok {
				s.logger.Warn("skipping unknown amenity", "facility", f.ID, "amenity", name)
				continue
			}
			pairs = append(pairs, [2]any{f.ID, id})
		}
	}
	if err := execEach(ctx, tx, replaceAssociationSQL, len(pairs), func(i int) []any {
		return pairs[i][:]
	}); err != nil {
		return fmt.Errorf("failed to insert facility amenities: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Debug("seed committed",
		"replace", wipe,
		"facilities", len(facilities),
		"amenities", len(amenities),
		"associations", len(pairs))
	return nil
}

// Reset drops the schema, recreates it and seeds it again. Readers sharing
// the handle can observe the missing tables; use Replace on a live store.
func (s *SQLiteStore) Reset(ctx context.Context, facilities []core.Facility) error {
	if s.db == nil {
		return ErrNotOpened
	}
	if err := s.dropSchema(ctx); err != nil {
		return err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		return err
	}
	return s.Seed(ctx, facilities)
}

// distinctAmenities returns every amenity name once, in first-seen order.
func distinctAmenities(facilities []core.Facility) []string {
	seen := make(map[string]struct{})
	var names []string
	for _, f := range facilities {
		for _, name := range f.Facilities {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			names = append(names, name)
		}
	}
	return names
}

// execEach prepares query once and executes it n times with args(i).
func execEach(ctx context.Context, tx *sql.Tx, query string, n int, args func(i int) []any) error {
	if n == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for i := 0; i < n; i++ {
		if _, err := stmt.ExecContext(ctx, args(i)...); err != nil {
			return err
		}
	}
	return nil
}

// amenityIDs reads the full amenity table into a name -> id map.
func amenityIDs(ctx context.Context, tx *sql.Tx) (map[string]int64, error) {
	rows, err := tx.QueryContext(ctx, `SELECT id, name FROM amenities`)
	if err != nil {
		return nil, fmt.Errorf("failed to load amenity ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]int64)
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("failed to scan amenity: %w", err)
		}
		ids[name] = id
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load amenity ids: %w", err)
	}
	return ids, nil
}
