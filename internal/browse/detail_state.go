package browse

import "github.com/leapstack-labs/facilitydir/pkg/core"

// DetailStatus is the phase of a detail lookup.
type DetailStatus int

// Detail phases.
const (
	DetailLoading DetailStatus = iota
	DetailLoaded
	DetailErrored
)

func (s DetailStatus) String() string {
	switch s {
	case DetailLoading:
		return "loading"
	case DetailLoaded:
		return "loaded"
	case DetailErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// DetailState is a snapshot of a single facility lookup.
// In DetailLoaded a nil Facility means no facility has the id.
type DetailState struct {
	ID       string
	Status   DetailStatus
	Facility *core.Facility
	Err      error
}

// InitialDetailState is the state before any id is set.
func InitialDetailState() DetailState {
	return DetailState{Status: DetailLoading}
}

// NotFound reports a completed lookup that matched nothing.
func (s DetailState) NotFound() bool {
	return s.Status == DetailLoaded && s.Facility == nil
}

// DetailAction is a detail transition. The set of actions is closed.
type DetailAction interface {
	detailAction()
}

// DetailFetchStarted begins a lookup of ID.
type DetailFetchStarted struct {
	ID string
}

// DetailFetchSucceeded stores the lookup result. Facility may be nil.
type DetailFetchSucceeded struct {
	Facility *core.Facility
}

// DetailFetchFailed records a lookup failure.
type DetailFetchFailed struct {
	Err error
}

func (DetailFetchStarted) detailAction()   {}
func (DetailFetchSucceeded) detailAction() {}
func (DetailFetchFailed) detailAction()    {}

// ReduceDetail returns the state that follows s after a.
func ReduceDetail(s DetailState, a DetailAction) DetailState {
	switch a := a.(type) {
	case DetailFetchStarted:
		s.ID = a.ID
		s.Status = DetailLoading
		s.Err = nil
	case DetailFetchSucceeded:
		s.Status = DetailLoaded
		s.Facility = a.Facility
		s.Err = nil
	case DetailFetchFailed:
		s.Status = DetailErrored
		s.Err = a.Err
	}
	return s
}
