package browse

import "fmt"

// FetchOp names the kind of fetch that failed.
type FetchOp string

// Fetch kinds.
const (
	OpLoad     FetchOp = "load"
	OpLoadMore FetchOp = "load-more"
	OpRefresh  FetchOp = "refresh"
	OpDetail   FetchOp = "detail"
)

// FetchError is the failure value stored in errored states.
// It carries the underlying error unchanged.
type FetchError struct {
	Op  FetchOp
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
