package store

import (
	"context"
	"errors"
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFacilities_Search(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, wifiPoolDataset())

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{name: "empty returns all by name", search: "", want: []string{"a", "b"}},
		{name: "whitespace only returns all", search: "   ", want: []string{"a", "b"}},
		{name: "shared amenity", search: "wifi", want: []string{"a", "b"}},
		{name: "amenity upper case", search: "POOL", want: []string{"b"}},
		{name: "name fragment", search: "club", want: []string{"b"}},
		{name: "address never matches", search: "Main Road", want: []string{}},
		{name: "no match", search: "sauna", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := store.ListFacilities(ctx, 20, 0, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, facilityIDs(got))
		})
	}
}

func TestListFacilities_MapsRecord(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, wifiPoolDataset())

	got, err := store.ListFacilities(ctx, 20, 0, "pool")
	require.NoError(t, err)
	require.Len(t, got, 1)

	beta := got[0]
	assert.Equal(t, "Beta Club", beta.Name)
	assert.Equal(t, "2 Side Street", beta.Address)
	assert.InDelta(t, 51.5, beta.Location.Latitude, 1e-9)
	assert.InDelta(t, -0.12, beta.Location.Longitude, 1e-9)
	// Aggregate order is unspecified
	assert.ElementsMatch(t, []string{"WiFi", "Pool"}, beta.Facilities)
}

func TestListFacilities_NoAmenitiesIsEmptySlice(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, []core.Facility{
		{ID: "bare", Name: "Bare Hall"},
		{ID: "full", Name: "Full Hall", Facilities: []string{"WiFi"}},
	})

	got, err := store.ListFacilities(ctx, 20, 0, "")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotNil(t, got[0].Facilities)
	assert.Empty(t, got[0].Facilities)

	one, err := store.GetFacility(ctx, "bare")
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, []string{}, one.Facilities)
}

func TestListFacilities_PagesPartitionResults(t *testing.T) {
	ctx := context.Background()
	dataset := numberedDataset(45)
	store := setupSeededStore(t, dataset)

	all, err := store.ListFacilities(ctx, 1000, 0, "")
	require.NoError(t, err)
	require.Len(t, all, 45)
	assert.True(t, sort.SliceIsSorted(all, func(i, j int) bool { return all[i].Name < all[j].Name }))

	for _, limit := range []int{1, 7, 20, 45, 100} {
		var paged []string
		for offset := 0; ; offset += limit {
			page, err := store.ListFacilities(ctx, limit, offset, "")
			require.NoError(t, err)
			assert.LessOrEqual(t, len(page), limit)
			paged = append(paged, facilityIDs(page)...)
			if len(page) < limit {
				break
			}
		}
		assert.Equal(t, facilityIDs(all), paged, "limit %d", limit)
	}
}

func TestListFacilities_TwentyTwentyFive(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, numberedDataset(45))

	sizes := []int{}
	for offset := 0; offset <= 60; offset += 20 {
		page, err := store.ListFacilities(ctx, 20, offset, "")
		require.NoError(t, err)
		sizes = append(sizes, len(page))
	}
	assert.Equal(t, []int{20, 20, 5, 0}, sizes)
}

func TestListFacilities_LimitEdges(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, numberedDataset(3))

	got, err := store.ListFacilities(ctx, 0, 0, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = store.ListFacilities(ctx, 10, 3, "")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = store.ListFacilities(ctx, -1, 0, "")
	assert.Error(t, err)

	_, err = store.ListFacilities(ctx, 10, -5, "")
	assert.Error(t, err)
}

// searchOracle is the reference filter: case-insensitive substring on name
// or any amenity, applied to the untrimmed query.
func searchOracle(dataset []core.Facility, search string) []string {
	var ids []core.Facility
	needle := strings.ToLower(search)
	for _, f := range dataset {
		if strings.TrimSpace(search) == "" || strings.Contains(strings.ToLower(f.Name), needle) {
			ids = append(ids, f)
			continue
		}
		for _, a := range f.Facilities {
			if strings.Contains(strings.ToLower(a), needle) {
				ids = append(ids, f)
				break
			}
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Name < ids[j].Name })
	return facilityIDs(ids)
}

func TestListFacilities_MatchesOracle(t *testing.T) {
	ctx := context.Background()
	dataset := append(numberedDataset(30), wifiPoolDataset()...)
	store := setupSeededStore(t, dataset)

	for _, search := range []string{"", "  ", "fac", "WIFI", "cafe", "0", "ity 01", "pa", "zzz", " club"} {
		t.Run("q="+search, func(t *testing.T) {
			got, err := store.ListFacilities(ctx, 1000, 0, search)
			require.NoError(t, err)
			want := searchOracle(dataset, search)
			if len(want) == 0 {
				want = []string{}
			}
			assert.Equal(t, want, facilityIDs(got))
		})
	}
}

func TestListFacilities_WildcardsMatchLiterally(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, []core.Facility{
		{ID: "pct", Name: "100% Fit"},
		{ID: "und", Name: "Under_score Gym"},
		{ID: "bsl", Name: `Back\slash Pool`},
		{ID: "plain", Name: "Plain Gym"},
	})

	tests := []struct {
		search string
		want   []string
	}{
		{search: "%", want: []string{"pct"}},
		{search: "_", want: []string{"und"}},
		{search: `\`, want: []string{"bsl"}},
		{search: "gym", want: []string{"plain", "und"}},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			got, err := store.ListFacilities(ctx, 20, 0, tt.search)
			require.NoError(t, err)
			assert.Equal(t, tt.want, facilityIDs(got))
		})
	}
}

func TestGetFacility(t *testing.T) {
	ctx := context.Background()
	store := setupSeededStore(t, wifiPoolDataset())

	got, err := store.GetFacility(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Beta Club", got.Name)
	assert.ElementsMatch(t, []string{"WiFi", "Pool"}, got.Facilities)

	missing, err := store.GetFacility(ctx, "does-not-exist")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAmenities(t *testing.T) {
	ctx := context.Background()

	empty := setupTestStore(t)
	got, err := empty.ListAmenities(ctx)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	store := setupSeededStore(t, numberedDataset(8))
	got, err = store.ListAmenities(ctx)
	require.NoError(t, err)
	names := make([]string, 0, len(got))
	for _, a := range got {
		assert.Positive(t, a.ID)
		names = append(names, a.Name)
	}
	assert.Equal(t, []string{"Cafe", "Parking", "Showers", "WiFi"}, names)
}

func TestBuildListQuery(t *testing.T) {
	tests := []struct {
		name       string
		search     string
		wantArgs   []any
		wantSearch bool
	}{
		{name: "no search", search: "", wantArgs: []any{20, 40}},
		{name: "blank search", search: " \t", wantArgs: []any{20, 40}},
		{name: "untrimmed pattern", search: " spa ", wantArgs: []any{"% spa %", "% spa %", 20, 40}, wantSearch: true},
		{name: "escaped wildcards", search: "5%_", wantArgs: []any{`%5\%\_%`, `%5\%\_%`, 20, 40}, wantSearch: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery(20, 40, tt.search)
			assert.Equal(t, tt.wantArgs, args)
			assert.Equal(t, tt.wantSearch, strings.Contains(query, "EXISTS"))
			assert.True(t, strings.HasSuffix(query, "ORDER BY f.name ASC LIMIT ? OFFSET ?"))
		})
	}
}

func TestQueries_ErrorsBubbleUp(t *testing.T) {
	errDriver := errors.New("database is locked")

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	store := NewWithDB(db, nil)

	mock.ExpectQuery(regexp.QuoteMeta("FROM facilities f")).WillReturnError(errDriver)
	_, err = store.ListFacilities(context.Background(), 20, 0, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDriver)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE f.id = ?")).WithArgs("x").WillReturnError(errDriver)
	_, err = store.GetFacility(context.Background(), "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDriver)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM amenities")).WillReturnError(errDriver)
	_, err = store.ListAmenities(context.Background())
	assert.ErrorIs(t, err, errDriver)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQueries_NotOpened(t *testing.T) {
	store := NewSQLiteStore(nil)
	ctx := context.Background()

	_, err := store.ListFacilities(ctx, 20, 0, "")
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.GetFacility(ctx, "a")
	assert.ErrorIs(t, err, ErrNotOpened)
	_, err = store.ListAmenities(ctx)
	assert.ErrorIs(t, err, ErrNotOpened)
}
