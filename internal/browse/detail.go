package browse

import (
	"context"
	"log/slog"
	"sync"

	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// DetailController tracks the lookup of one facility by id.
type DetailController struct {
	getter   core.FacilityGetter
	logger   *slog.Logger
	notifier *notifier.Notifier

	mu    sync.Mutex
	state DetailState
	seq   uint64 // bumped per fetch; stale responses are dropped
}

// NewDetailController creates a controller reading from getter.
// Only WithLogger and WithNotifier apply.
func NewDetailController(getter core.FacilityGetter, opts ...Option) *DetailController {
	o := buildOptions(opts)
	return &DetailController{
		getter:   getter,
		logger:   o.logger,
		notifier: o.notifier,
		state:    InitialDetailState(),
	}
}

// State returns the current snapshot.
func (c *DetailController) State() DetailState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Subscribe returns a channel that receives an event after every state change.
func (c *DetailController) Subscribe() <-chan notifier.Event {
	return c.notifier.Subscribe()
}

// Unsubscribe releases a channel returned by Subscribe.
func (c *DetailController) Unsubscribe(ch <-chan notifier.Event) {
	c.notifier.Unsubscribe(ch)
}

// SetID looks up id. An empty id is an invalid navigation and leaves the
// state untouched. Setting the id already loaded or loading does nothing;
// use Refetch to repeat a lookup.
func (c *DetailController) SetID(ctx context.Context, id string) {
	if id == "" {
		return
	}
	c.mu.Lock()
	if c.seq > 0 && c.state.ID == id {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.fetch(ctx, id)
}

// Refetch repeats the lookup for the current id.
func (c *DetailController) Refetch(ctx context.Context) {
	c.mu.Lock()
	id := c.state.ID
	c.mu.Unlock()
	if id == "" {
		return
	}
	c.fetch(ctx, id)
}

func (c *DetailController) fetch(ctx context.Context, id string) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state = ReduceDetail(c.state, DetailFetchStarted{ID: id})
	c.mu.Unlock()
	c.publish()

	f, err := c.getter.GetFacility(ctx, id)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("dropping stale facility lookup", "id", id)
		return
	}
	if err != nil {
		c.state = ReduceDetail(c.state, DetailFetchFailed{Err: &FetchError{Op: OpDetail, Err: err}})
	} else {
		c.state = ReduceDetail(c.state, DetailFetchSucceeded{Facility: f})
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn("facility lookup failed", "id", id, "error", err)
	} else {
		c.logger.Debug("facility lookup done", "id", id, "found", f != nil)
	}
	c.publish()
}

func (c *DetailController) publish() {
	c.notifier.Broadcast(notifier.TopicDetail)
}
