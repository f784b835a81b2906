package metrics

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	err error
}

func (f fakeReader) ListFacilities(_ context.Context, limit, _ int, _ string) ([]core.Facility, error) {
	if f.err != nil {
		return nil, f.err
	}
	return make([]core.Facility, limit), nil
}

func (f fakeReader) GetFacility(_ context.Context, id string) (*core.Facility, error) {
	if f.err != nil || id == "" {
		return nil, f.err
	}
	return &core.Facility{ID: id}, nil
}

func (f fakeReader) ListAmenities(context.Context) ([]core.Amenity, error) {
	return []core.Amenity{{ID: 1, Name: "WiFi"}}, f.err
}

func (f fakeReader) Counts(context.Context) (core.Stats, error) {
	return core.Stats{Facilities: 12, Amenities: 30, Associations: 50}, f.err
}

func TestReader_RecordsRows(t *testing.T) {
	ctx := context.Background()
	m := New()
	r := m.Instrument(fakeReader{})

	_, err := r.ListFacilities(ctx, 20, 0, "")
	require.NoError(t, err)
	_, err = r.GetFacility(ctx, "a")
	require.NoError(t, err)
	_, err = r.GetFacility(ctx, "")
	require.NoError(t, err)

	assert.Equal(t, 20.0, testutil.ToFloat64(m.rowsReturned.WithLabelValues("list_facilities")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rowsReturned.WithLabelValues("get_facility")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.queryDuration))
}

func TestReader_RecordsErrors(t *testing.T) {
	ctx := context.Background()
	m := New()
	errDB := errors.New("closed")
	r := m.Instrument(fakeReader{err: errDB})

	_, err := r.ListFacilities(ctx, 20, 0, "")
	assert.ErrorIs(t, err, errDB)
	_, err = r.Counts(ctx)
	assert.ErrorIs(t, err, errDB)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors.WithLabelValues("list_facilities")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors.WithLabelValues("counts")))
	assert.Equal(t, 0, testutil.CollectAndCount(m.tableRows), "failed counts publish nothing")
}

func TestCountsPublishesTableRows(t *testing.T) {
	m := New()
	_, err := m.Instrument(fakeReader{}).Counts(context.Background())
	require.NoError(t, err)

	expected := `
# HELP facilitydir_table_rows Row count per directory table.
# TYPE facilitydir_table_rows gauge
facilitydir_table_rows{table="amenities"} 30
facilitydir_table_rows{table="facilities"} 12
facilitydir_table_rows{table="facility_amenities"} 50
`
	assert.NoError(t, testutil.CollectAndCompare(m.tableRows, strings.NewReader(expected)))
}

func TestObserveSeed(t *testing.T) {
	m := New()
	m.ObserveSeed(TriggerStartup, nil)
	m.ObserveSeed(TriggerWatch, errors.New("bad file"))
	m.ObserveSeed(TriggerWatch, nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.seeds.WithLabelValues(TriggerStartup, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.seeds.WithLabelValues(TriggerWatch, "error")))
	assert.Positive(t, testutil.ToFloat64(m.lastSeed))
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveSeed(TriggerCommand, nil)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, string(body), `facilitydir_seeds_total{result="ok",trigger="command"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRegistry_GathersSeeds(t *testing.T) {
	m := New()
	m.ObserveSeed(TriggerStartup, nil)
	m.ObserveSeed(TriggerWatch, nil)

	n, err := testutil.GatherAndCount(m.Registry(), "facilitydir_seeds_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
