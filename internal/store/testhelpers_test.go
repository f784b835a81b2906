package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/leapstack-labs/facilitydir/internal/testutil"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(MemoryPath), "failed to open store")
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.EnsureSchema(context.Background()), "failed to ensure schema")
	return store
}

func setupSeededStore(t *testing.T, facilities []core.Facility) *SQLiteStore {
	t.Helper()
	store := setupTestStore(t)
	require.NoError(t, store.Seed(context.Background(), facilities), "failed to seed store")
	return store
}

// wifiPoolDataset: two facilities share WiFi, only Beta has Pool.
func wifiPoolDataset() []core.Facility {
	return []core.Facility{
		{
			ID:         "b",
			Name:       "Beta Club",
			Address:    "2 Side Street",
			Location:   core.Location{Latitude: 51.5, Longitude: -0.12},
			Facilities: []string{"WiFi", "Pool"},
		},
		{
			ID:         "a",
			Name:       "Alpha Center",
			Address:    "1 Main Road",
			Location:   core.Location{Latitude: 48.85, Longitude: 2.35},
			Facilities: []string{"WiFi"},
		},
	}
}

// numberedDataset returns n facilities whose names sort by their number.
func numberedDataset(n int) []core.Facility {
	amenities := []string{"WiFi", "Parking", "Cafe", "Showers"}
	out := make([]core.Facility, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, core.Facility{
			ID:         fmt.Sprintf("fac-%03d", i),
			Name:       fmt.Sprintf("Facility %03d", i),
			Address:    fmt.Sprintf("%d Example Avenue", i),
			Location:   core.Location{Latitude: float64(i) / 10, Longitude: float64(-i) / 10},
			Facilities: []string{amenities[i%len(amenities)]},
		})
	}
	return out
}

// facilityIDs extracts ids in order.
func facilityIDs(facilities []core.Facility) []string {
	ids := make([]string, 0, len(facilities))
	for _, f := range facilities {
		ids = append(ids, f.ID)
	}
	return ids
}
