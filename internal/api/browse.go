package api

import (
	"net/http"

	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"github.com/starfederation/datastar-go/datastar"
)

// BrowseRequest represents the signals sent from the frontend.
type BrowseRequest struct {
	Search string `json:"search"`
}

// BrowseSignals is the list state patched into the client after every change.
type BrowseSignals struct {
	Search      string          `json:"search"`
	Facilities  []core.Facility `json:"facilities"`
	Count       int             `json:"count"`
	Loading     bool            `json:"loading"`
	LoadingMore bool            `json:"loadingMore"`
	Refreshing  bool            `json:"refreshing"`
	HasMore     bool            `json:"hasMore"`
	Error       string          `json:"error"`
}

func browseSignals(s browse.ListState, hasMore bool) BrowseSignals {
	out := BrowseSignals{
		Search:      s.SearchText,
		Facilities:  s.Results,
		Count:       len(s.Results),
		Loading:     s.InitialLoading,
		LoadingMore: s.LoadingMore,
		Refreshing:  s.Refreshing,
		HasMore:     hasMore,
	}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return out
}

// BrowseSSE streams a live facility list. A list controller is created per
// connection: it loads the first page (after the debounce delay when a search
// is given), keeps loading pages until the last one, and refreshes when the
// dataset is reseeded.
func (h *Handlers) BrowseSSE(w http.ResponseWriter, r *http.Request) {
	var req BrowseRequest
	if err := datastar.ReadSignals(r, &req); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	sse := datastar.NewSSE(w, r)

	ctrl := browse.NewListController(h.reader,
		browse.WithPageSize(h.pageSize),
		browse.WithDebounce(h.debounce),
		browse.WithLogger(h.logger.With("stream", "browse")),
	)
	defer ctrl.Close()

	// Subscribe to updates
	updates := ctrl.Subscribe()
	defer ctrl.Unsubscribe(updates)

	var reseeds <-chan notifier.Event
	if h.dataset != nil {
		reseeds = h.dataset.Subscribe()
		defer h.dataset.Unsubscribe(reseeds)
	}

	if req.Search == "" {
		go ctrl.Start(ctx)
	} else {
		ctrl.SetSearchText(ctx, req.Search)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-reseeds:
			h.logger.Debug("dataset changed, refreshing stream")
			go ctrl.Refresh(ctx)
		case <-updates:
			state := ctrl.State()
			hasMore := ctrl.HasMore()
			if err := sse.MarshalAndPatchSignals(browseSignals(state, hasMore)); err != nil {
				_ = sse.ConsoleError(err)
				// Don't return - keep trying on next update
			}
			if !state.Busy() && !state.Errored && hasMore {
				go ctrl.LoadMore(ctx)
			}
		}
	}
}
