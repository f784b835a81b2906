package browse

import (
	"slices"

	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// ListState is a snapshot of the facility list.
//
// Results is append-only during pagination and replaced on reload. The
// slice is never modified in place once published, so snapshots may be read
// without locking.
type ListState struct {
	Results        []core.Facility
	SearchText     string
	InitialLoading bool
	LoadingMore    bool
	Refreshing     bool
	Errored        bool
	Err            error
}

// InitialListState is the state before the first fetch completes.
func InitialListState() ListState {
	return ListState{
		Results:        []core.Facility{},
		InitialLoading: true,
	}
}

// Busy reports whether any kind of fetch is in progress.
func (s ListState) Busy() bool {
	return s.InitialLoading || s.LoadingMore || s.Refreshing
}

// ListAction is a list transition. The set of actions is closed.
type ListAction interface {
	listAction()
}

// ListFetchStarted begins an initial or search reload.
type ListFetchStarted struct{}

// ListFetchMoreStarted begins loading the next page.
type ListFetchMoreStarted struct{}

// ListRefreshStarted begins a refresh of page 0.
type ListRefreshStarted struct{}

// ListFetchSucceeded replaces the result set.
type ListFetchSucceeded struct {
	Results []core.Facility
}

// ListFetchMoreSucceeded appends a page to the result set.
type ListFetchMoreSucceeded struct {
	Results []core.Facility
}

// ListFetchFailed records a failure of any fetch kind.
type ListFetchFailed struct {
	Err error
}

// ListSearchChanged records new search text. It does not start a fetch.
type ListSearchChanged struct {
	Text string
}

func (ListFetchStarted) listAction()       {}
func (ListFetchMoreStarted) listAction()   {}
func (ListRefreshStarted) listAction()     {}
func (ListFetchSucceeded) listAction()     {}
func (ListFetchMoreSucceeded) listAction() {}
func (ListFetchFailed) listAction()        {}
func (ListSearchChanged) listAction()      {}

// ReduceList returns the state that follows s after a.
func ReduceList(s ListState, a ListAction) ListState {
	switch a := a.(type) {
	case ListFetchStarted:
		s.InitialLoading = true
		s.Errored, s.Err = false, nil
	case ListFetchMoreStarted:
		s.LoadingMore = true
		s.Errored, s.Err = false, nil
	case ListRefreshStarted:
		s.Refreshing = true
		s.Errored, s.Err = false, nil
	case ListFetchSucceeded:
		s.Results = nonNil(a.Results)
		s.InitialLoading = false
		s.Refreshing = false
		s.Errored, s.Err = false, nil
	case ListFetchMoreSucceeded:
		// Clip forces a copy so earlier snapshots keep their length and contents
		s.Results = append(slices.Clip(s.Results), a.Results...)
		s.LoadingMore = false
		s.Errored, s.Err = false, nil
	case ListFetchFailed:
		// Any failure ends every pending load, not just the one that failed.
		s.InitialLoading = false
		s.LoadingMore = false
		s.Refreshing = false
		s.Errored, s.Err = true, a.Err
	case ListSearchChanged:
		s.SearchText = a.Text
	}
	return s
}

func nonNil(results []core.Facility) []core.Facility {
	if results == nil {
		return []core.Facility{}
	}
	return results
}
