package browse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// ListController drives a paginated, searchable facility list.
//
// Fetches of different kinds are guarded against each other, but an
// in-flight fetch is never cancelled: when two reloads overlap, whichever
// response arrives last wins.
type ListController struct {
	lister    core.FacilityLister
	pageSize  int
	debouncer *Debouncer
	logger    *slog.Logger
	notifier  *notifier.Notifier

	mu      sync.Mutex
	state   ListState
	cursor  int    // next offset for LoadMore
	hasMore bool   // false once a page came back short
	query   string // search text the current results were fetched with
	closed  bool
}

// NewListController creates a controller reading from lister.
// Call Start to load the first page.
func NewListController(lister core.FacilityLister, opts ...Option) *ListController {
	o := buildOptions(opts)
	return &ListController{
		lister:    lister,
		pageSize:  o.pageSize,
		debouncer: NewDebouncer(o.debounce, o.clock),
		logger:    o.logger,
		notifier:  o.notifier,
		state:     InitialListState(),
		hasMore:   true,
	}
}

// State returns the current snapshot.
func (c *ListController) State() ListState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// HasMore reports whether LoadMore would request another page.
func (c *ListController) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hasMore
}

// PageSize returns the number of rows requested per page.
func (c *ListController) PageSize() int {
	return c.pageSize
}

// Subscribe returns a channel that receives an event after every state change.
func (c *ListController) Subscribe() <-chan notifier.Event {
	return c.notifier.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (c *ListController) Unsubscribe(ch <-chan notifier.Event) {
	c.notifier.Unsubscribe(ch)
}

// Start loads page 0 for the current search text.
func (c *ListController) Start(ctx context.Context) {
	c.mu.Lock()
	search := c.state.SearchText
	c.dispatchLocked(ListFetchStarted{})
	c.mu.Unlock()
	c.publish()

	c.fetch(ctx, OpLoad, 0, search)
}

// SetSearchText records new search text. Empty text reloads immediately;
// anything else reloads once the text has been stable for the debounce delay.
// Setting the text it already has does nothing.
func (c *ListController) SetSearchText(ctx context.Context, text string) {
	c.mu.Lock()
	if c.closed || text == c.state.SearchText {
		c.mu.Unlock()
		return
	}
	c.dispatchLocked(ListSearchChanged{Text: text})
	c.mu.Unlock()
	c.publish()

	if text == "" {
		c.debouncer.Stop()
		c.reload(ctx)
		return
	}

	c.debouncer.Trigger(func() {
		if ctx.Err() != nil {
			c.logger.Debug("dropping debounced search", "reason", ctx.Err())
			return
		}
		c.reload(ctx)
	})
}

// reload restarts pagination with the search text current at call time.
func (c *ListController) reload(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	search := c.state.SearchText
	c.dispatchLocked(ListFetchStarted{})
	c.mu.Unlock()
	c.publish()

	c.fetch(ctx, OpLoad, 0, search)
}

// LoadMore appends the next page. It does nothing while an initial load or
// another LoadMore is running, or once the last page has been seen.
func (c *ListController) LoadMore(ctx context.Context) {
	c.mu.Lock()
	if !c.hasMore || c.state.LoadingMore || c.state.InitialLoading {
		c.mu.Unlock()
		return
	}
	offset, search := c.cursor, c.query
	c.dispatchLocked(ListFetchMoreStarted{})
	c.mu.Unlock()
	c.publish()

	c.fetch(ctx, OpLoadMore, offset, search)
}

// Refresh reloads page 0 with the current search text.
// It does nothing while an initial load is running.
func (c *ListController) Refresh(ctx context.Context) {
	c.mu.Lock()
	if c.state.InitialLoading {
		c.mu.Unlock()
		return
	}
	search := c.state.SearchText
	c.dispatchLocked(ListRefreshStarted{})
	c.mu.Unlock()
	c.publish()

	c.fetch(ctx, OpRefresh, 0, search)
}

// Wait blocks until no debounced search is pending or running.
func (c *ListController) Wait() {
	c.debouncer.Wait()
}

// Close cancels any pending debounced search. Fetches already running
// complete normally.
func (c *ListController) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.debouncer.Stop()
}

func (c *ListController) fetch(ctx context.Context, op FetchOp, offset int, search string) {
	c.logger.Debug("fetching facilities", "op", op, "offset", offset, "limit", c.pageSize, "search", search)

	page, err := c.lister.ListFacilities(ctx, c.pageSize, offset, search)

	c.mu.Lock()
	if err != nil {
		c.dispatchLocked(ListFetchFailed{Err: &FetchError{Op: op, Err: err}})
		c.mu.Unlock()
		c.logger.Warn("facility fetch failed", "op", op, "offset", offset, "error", err)
		c.publish()
		return
	}

	// Pagination moves only on success so a failed reload keeps paging
	// the results that are still on screen.
	c.hasMore = len(page) == c.pageSize
	c.cursor = offset + len(page)
	c.query = search
	if op == OpLoadMore {
		c.dispatchLocked(ListFetchMoreSucceeded{Results: page})
	} else {
		c.dispatchLocked(ListFetchSucceeded{Results: page})
	}
	total := len(c.state.Results)
	c.mu.Unlock()

	c.logger.Debug("fetched facilities", "op", op, "rows", len(page), "total", total, "has_more", len(page) == c.pageSize)
	c.publish()
}

func (c *ListController) dispatchLocked(a ListAction) {
	c.state = ReduceList(c.state, a)
}

func (c *ListController) publish() {
	c.notifier.Broadcast(notifier.TopicList)
}
