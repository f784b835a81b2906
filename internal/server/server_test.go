package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/leapstack-labs/facilitydir/internal/testutil"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, path string, n int) {
	t.Helper()
	facilities := make([]core.Facility, 0, n)
	for i := 0; i < n; i++ {
		facilities = append(facilities, core.Facility{
			ID:         fmt.Sprintf("fac-%02d", i),
			Name:       fmt.Sprintf("Facility %02d", i),
			Address:    fmt.Sprintf("%d High Street", i),
			Facilities: []string{"WiFi"},
		})
	}
	data, err := json.Marshal(facilities)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))
}

func setupStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st := store.NewSQLiteStore(nil)
	require.NoError(t, st.Open(store.MemoryPath))
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.EnsureSchema(context.Background()))
	return st
}

// startServer runs Serve in the background and returns its base URL.
func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})

	addrCtx, addrCancel := context.WithTimeout(ctx, 5*time.Second)
	defer addrCancel()
	addr, err := srv.Addr(addrCtx)
	require.NoError(t, err)
	return "http://" + addr.String()
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec,noctx // test server
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestServe_ServesAPI(t *testing.T) {
	st := setupStore(t)
	path := filepath.Join(t.TempDir(), "facilities.json")
	writeDataset(t, path, 3)
	logger, logs := testutil.NewCaptureLogger()

	srv := New(Config{Store: st, Logger: logger, Addr: "127.0.0.1:0", DatasetPath: path})
	require.NoError(t, srv.Reseed(context.Background()))
	base := startServer(t, srv)

	status, _ := get(t, base+"/healthz")
	assert.Equal(t, http.StatusOK, status)

	status, body := get(t, base+"/api/facilities?limit=2")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"has_more":true`)
	assert.Contains(t, body, "Facility 00")

	status, body = get(t, base+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `facilitydir_seeds_total{result="ok",trigger="watch"} 1`)
	assert.Contains(t, body, `facilitydir_table_rows{table="facilities"} 3`)

	assert.True(t, logs.Contains("starting server"))
}

func TestServe_ListenError(t *testing.T) {
	srv := New(Config{Store: setupStore(t), Addr: "256.0.0.1:bad"})
	err := srv.Serve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}

func TestReseed(t *testing.T) {
	st := setupStore(t)
	path := filepath.Join(t.TempDir(), "facilities.json")
	writeDataset(t, path, 4)

	srv := New(Config{Store: st, DatasetPath: path})
	events := srv.Notifier().Subscribe()

	require.NoError(t, srv.Reseed(context.Background()))
	stats, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, core.Stats{Facilities: 4, Amenities: 1, Associations: 4}, stats)

	select {
	case ev := <-events:
		assert.Equal(t, notifier.TopicDataset, ev.Topic)
	default:
		t.Fatal("expected a dataset event")
	}
}

func TestReseed_BadFileKeepsData(t *testing.T) {
	st := setupStore(t)
	path := filepath.Join(t.TempDir(), "facilities.json")
	writeDataset(t, path, 2)

	srv := New(Config{Store: st, DatasetPath: path})
	require.NoError(t, srv.Reseed(context.Background()))

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	events := srv.Notifier().Subscribe()
	err := srv.Reseed(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reseed from")

	stats, err := st.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Facilities, "previous data survives a bad file")
	assert.Empty(t, events, "failed reseed is not announced")
}

func TestReseed_ConcurrentRequestsSeeFullDirectory(t *testing.T) {
	st := setupStore(t)
	path := filepath.Join(t.TempDir(), "facilities.json")
	writeDataset(t, path, 25)

	srv := New(Config{Store: st, Addr: "127.0.0.1:0", DatasetPath: path})
	require.NoError(t, srv.Reseed(context.Background()))
	base := startServer(t, srv)

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 15; i++ {
			if err := srv.Reseed(context.Background()); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	for {
		status, body := get(t, base+"/api/facilities?limit=20")
		require.Equal(t, http.StatusOK, status, body)
		require.Contains(t, body, "Facility 00", "list came back empty during a reseed")

		status, body = get(t, base+"/api/facilities/fac-24")
		require.Equal(t, http.StatusOK, status, body)

		select {
		case err := <-done:
			require.NoError(t, err)
			return
		default:
		}
	}
}

func TestServe_WatchReseedsOnWrite(t *testing.T) {
	st := setupStore(t)
	path := filepath.Join(t.TempDir(), "facilities.json")
	writeDataset(t, path, 2)
	logger, logs := testutil.NewCaptureLogger()

	srv := New(Config{
		Store:       st,
		Logger:      logger,
		Addr:        "127.0.0.1:0",
		DatasetPath: path,
		Watch:       true,
	})
	require.NoError(t, srv.Reseed(context.Background()))
	events := srv.Notifier().Subscribe()
	startServer(t, srv)

	// Rewrite until the watcher has registered and picked a change up.
	require.Eventually(t, func() bool {
		writeDataset(t, path, 5)
		select {
		case ev := <-events:
			return ev.Topic == notifier.TopicDataset
		case <-time.After(500 * time.Millisecond):
			return false
		}
	}, 10*time.Second, 10*time.Millisecond)

	assert.Eventually(t, func() bool {
		stats, err := st.Counts(context.Background())
		return err == nil && stats.Facilities == 5
	}, 5*time.Second, 20*time.Millisecond)
	assert.True(t, logs.Contains("dataset reseeded"))
}
