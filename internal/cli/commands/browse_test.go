package commands

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"
	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/cli/output"
	"github.com/leapstack-labs/facilitydir/internal/cli/testutil"
	"github.com/leapstack-labs/facilitydir/internal/config"
	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptReader replays lines, then reports EOF.
type scriptReader struct {
	lines []string
}

func (s *scriptReader) Readline() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	if line == "^C" {
		return "", readline.ErrInterrupt
	}
	return line, nil
}

type browseFixture struct {
	b      *browser
	out    *bytes.Buffer
	errOut *bytes.Buffer
}

func newBrowseFixture(t *testing.T, n, pageSize int) *browseFixture {
	t.Helper()
	p := testutil.SetupTestProject(t, n)
	cfg := config.Default()
	cfg.Database = store.MemoryPath
	cfg.Dataset = p.DatasetPath

	ctx := context.Background()
	st, err := openStore(ctx, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, err = ensureSeeded(ctx, st, cfg)
	require.NoError(t, err)

	var out, errOut bytes.Buffer
	b := newBrowser(st, output.NewRenderer(&out, &errOut), output.FormatTable,
		browse.WithPageSize(pageSize),
		browse.WithDebounce(0),
	)
	t.Cleanup(b.Close)
	return &browseFixture{b: b, out: &out, errOut: &errOut}
}

// run feeds lines and returns stdout written while handling them.
func (f *browseFixture) run(t *testing.T, lines ...string) string {
	t.Helper()
	f.out.Reset()
	f.errOut.Reset()
	require.NoError(t, f.b.Run(context.Background(), &scriptReader{lines: lines}))
	return f.out.String()
}

func TestBrowser_StartsWithFirstPage(t *testing.T) {
	f := newBrowseFixture(t, 12, 5)
	out := f.run(t)

	assert.Contains(t, out, "Facility 000")
	assert.Contains(t, out, "Facility 004")
	assert.NotContains(t, out, "Facility 005")
	assert.Contains(t, out, "5 shown, .more for the next page")
}

func TestBrowser_SearchAndPaginate(t *testing.T) {
	f := newBrowseFixture(t, 45, 5)
	out := f.run(t, "parking", ".more")

	// 15 facilities have parking: 000, 003, ... 042
	assert.Contains(t, out, "Facility 012")
	assert.Contains(t, out, "Facility 027")
	assert.Contains(t, out, "10 shown, .more for the next page")
	assert.Equal(t, "parking", f.b.list.State().SearchText)
	assert.Len(t, f.b.list.State().Results, 10)
}

func TestBrowser_MoreUntilEnd(t *testing.T) {
	f := newBrowseFixture(t, 7, 5)
	out := f.run(t, ".more", ".more")

	assert.Contains(t, out, "7 shown, end of results")
	assert.Contains(t, out, "end of results")
	assert.Len(t, f.b.list.State().Results, 7)
	assert.False(t, f.b.list.HasMore())
}

func TestBrowser_ClearAndDotSearch(t *testing.T) {
	f := newBrowseFixture(t, 12, 20)

	out := f.run(t, "facility 01")
	assert.Contains(t, out, "2 shown, end of results")

	out = f.run(t, ".clear")
	assert.Contains(t, out, "12 shown, end of results")

	out = f.run(t, ".search .hidden")
	assert.Contains(t, out, "no facilities match")
	assert.Equal(t, ".hidden", f.b.list.State().SearchText)
}

func TestBrowser_Show(t *testing.T) {
	f := newBrowseFixture(t, 6, 5)

	out := f.run(t, ".show 2")
	assert.Contains(t, out, "Facility 001")
	assert.Contains(t, out, "1 Test Street")

	out = f.run(t, ".show fac-005")
	assert.Contains(t, out, "5 Test Street")
	assert.Equal(t, "fac-005", f.b.detail.State().ID)

	out = f.run(t, ".show fac-005")
	assert.Contains(t, out, "5 Test Street", "showing the same id again refetches")

	f.run(t, ".show 9")
	assert.Contains(t, f.errOut.String(), "no row 9")

	f.run(t, ".show nope")
	assert.Contains(t, f.errOut.String(), "facility not found: nope")

	f.run(t, ".show")
	assert.Contains(t, f.errOut.String(), "usage: .show")
}

func TestBrowser_Commands(t *testing.T) {
	f := newBrowseFixture(t, 3, 5)

	out := f.run(t, ".help")
	assert.Contains(t, out, ".more")
	assert.Contains(t, out, ".show <n|id>")

	f.run(t, ".bogus")
	assert.Contains(t, f.errOut.String(), "unknown command: .bogus")

	out = f.run(t, ".refresh")
	assert.Equal(t, 2, strings.Count(out, "3 shown, end of results"), "start and refresh both print")

	reader := &scriptReader{lines: []string{"^C", "", ".quit", "never read"}}
	require.NoError(t, f.b.Run(context.Background(), reader))
	assert.Equal(t, []string{"never read"}, reader.lines)
}

func TestHistoryFile(t *testing.T) {
	assert.Empty(t, historyFile(store.MemoryPath))
	assert.Equal(t, filepath.Join("data", ".facilitydir_history"), historyFile(filepath.Join("data", "dir.db")))
}
