package browse

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/leapstack-labs/facilitydir/internal/testutil"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/stretchr/testify/require"
)

// manualClock fires timers only when Advance is called.
type manualClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*manualTimer
}

type manualTimer struct {
	clock *manualClock
	at    time.Duration
	f     func()
	done  bool
}

func (c *manualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	return true
}

// Advance moves time forward and runs due callbacks on the calling goroutine.
func (c *manualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.done && t.at <= c.now {
			t.done = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
}

type listCall struct {
	Limit, Offset int
	Search        string
}

// recordingLister wraps a lister and records every call. When gate is set,
// each call blocks until a value is received from it.
type recordingLister struct {
	next core.FacilityLister

	mu    sync.Mutex
	calls []listCall
	err   error
	gate  chan struct{}
}

func (r *recordingLister) ListFacilities(ctx context.Context, limit, offset int, search string) ([]core.Facility, error) {
	r.mu.Lock()
	r.calls = append(r.calls, listCall{Limit: limit, Offset: offset, Search: search})
	err, gate := r.err, r.gate
	r.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return r.next.ListFacilities(ctx, limit, offset, search)
}

func (r *recordingLister) Calls() []listCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]listCall(nil), r.calls...)
}

func (r *recordingLister) Searches() []string {
	var out []string
	for _, c := range r.Calls() {
		out = append(out, c.Search)
	}
	return out
}

func (r *recordingLister) SetErr(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

// seededStore returns an in-memory store holding facilities.
func seededStore(t *testing.T, facilities []core.Facility) *store.SQLiteStore {
	t.Helper()
	ctx := context.Background()
	s := store.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, s.Open(store.MemoryPath))
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.EnsureSchema(ctx))
	require.NoError(t, s.Seed(ctx, facilities))
	return s
}

func numbered(n int) []core.Facility {
	out := make([]core.Facility, 0, n)
	for i := 0; i < n; i++ {
		amenity := "WiFi"
		if i%3 == 0 {
			amenity = "Parking"
		}
		out = append(out, core.Facility{
			ID:         fmt.Sprintf("f%02d", i),
			Name:       fmt.Sprintf("Facility %02d", i),
			Facilities: []string{amenity},
		})
	}
	return out
}

func names(facilities []core.Facility) string {
	parts := make([]string, 0, len(facilities))
	for _, f := range facilities {
		parts = append(parts, f.Name)
	}
	return strings.Join(parts, ",")
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, 5*time.Millisecond)
}
