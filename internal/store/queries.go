package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// amenitySeparator joins amenity names inside the grouped projection.
// ASCII unit separator, so names containing commas survive the round trip.
const amenitySeparator = "\x1f"

// baseFacilityQuery is the shared projection: one row per facility with its
// amenity names concatenated. Aggregate order is whatever SQLite produces.
const baseFacilityQuery = `
SELECT
    f.id,
    f.name,
    f.address,
    f.latitude,
    f.longitude,
    GROUP_CONCAT(a.name, char(31)) AS facilities
FROM facilities f
LEFT JOIN facility_amenities fa ON f.id = fa.facility_id
LEFT JOIN amenities a ON fa.amenity_id = a.id`

// searchClause matches a facility by name or by any associated amenity.
const searchClause = `
WHERE f.name LIKE ? ESCAPE '\'
OR EXISTS (
    SELECT 1
    FROM facility_amenities fa_search
    JOIN amenities a_search ON fa_search.amenity_id = a_search.id
    WHERE fa_search.facility_id = f.id
    AND a_search.name LIKE ? ESCAPE '\'
)`

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// facilityRow is the raw shape of a projection row.
type facilityRow struct {
	id         string
	name       string
	address    string
	latitude   float64
	longitude  float64
	facilities sql.NullString
}

// toFacility maps a projection row onto the domain record.
// A NULL concatenation means the facility has no amenities.
func (r facilityRow) toFacility() core.Facility {
	f := core.Facility{
		ID:      r.id,
		Name:    r.name,
		Address: r.address,
		Location: core.Location{
			Latitude:  r.latitude,
			Longitude: r.longitude,
		},
		Facilities: []string{},
	}
	if r.facilities.Valid && r.facilities.String != "" {
		f.Facilities = strings.Split(r.facilities.String, amenitySeparator)
	}
	return f
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFacility(sc scanner) (core.Facility, error) {
	var r facilityRow
	if err := sc.Scan(&r.id, &r.name, &r.address, &r.latitude, &r.longitude, &r.facilities); err != nil {
		return core.Facility{}, err
	}
	return r.toFacility(), nil
}

// buildListQuery returns the paginated listing SQL and its arguments.
// The search text is used as-is inside the pattern; only the emptiness check trims it.
func buildListQuery(limit, offset int, search string) (string, []any) {
	var b strings.Builder
	b.WriteString(baseFacilityQuery)

	var args []any
	if strings.TrimSpace(search) != "" {
		pattern := "%" + likeEscaper.Replace(search) + "%"
		b.WriteString(searchClause)
		args = append(args, pattern, pattern)
	}

	b.WriteString("\nGROUP BY f.id")
	b.WriteString("\nORDER BY f.name ASC LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	return b.String(), args
}

// ListFacilities returns up to limit facilities ordered by name, skipping
// offset matching rows. A non-blank search matches name or amenity text.
func (s *SQLiteStore) ListFacilities(ctx context.Context, limit, offset int, search string) ([]core.Facility, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}
	if limit < 0 || offset < 0 {
		return nil, fmt.Errorf("invalid page: limit=%d offset=%d", limit, offset)
	}

	query, args := buildListQuery(limit, offset, search)
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	facilities := make([]core.Facility, 0, min(limit, 256))
	for rows.Next() {
		f, err := scanFacility(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		facilities = append(facilities, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}

	return facilities, nil
}

// GetFacility retrieves a facility by id.
// Returns nil, nil when no facility has that id.
func (s *SQLiteStore) GetFacility(ctx context.Context, id string) (*core.Facility, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	query := baseFacilityQuery + "\nWHERE f.id = ?\nGROUP BY f.id"
	f, err := scanFacility(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Not found, return nil without error
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get facility: %w", err)
	}

	return &f, nil
}

// ListAmenities returns every amenity ordered by name.
func (s *SQLiteStore) ListAmenities(ctx context.Context) ([]core.Amenity, error) {
	if s.db == nil {
		return nil, ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM amenities ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list amenities: %w", err)
	}
	defer func() { _ = rows.Close() }()

	amenities := []core.Amenity{}
	for rows.Next() {
		var a core.Amenity
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan amenity: %w", err)
		}
		amenities = append(amenities, a)
	}

	return amenities, rows.Err()
}
