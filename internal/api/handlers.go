// Package api serves the read-only facility directory over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/pkg/core"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

// Options configures Handlers.
type Options struct {
	PageSize int           // default limit, browse.DefaultPageSize when zero
	Debounce time.Duration // search debounce for live browsing
	Logger   *slog.Logger
	// Dataset publishes TopicDataset after a reseed. Live browse streams
	// refresh when it fires. May be nil.
	Dataset *notifier.Notifier
}

// Handlers provides the HTTP handlers of the directory API.
type Handlers struct {
	reader   core.Reader
	pageSize int
	debounce time.Duration
	logger   *slog.Logger
	dataset  *notifier.Notifier
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(reader core.Reader, opts Options) *Handlers {
	if opts.PageSize < 1 {
		opts.PageSize = browse.DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		reader:   reader,
		pageSize: min(opts.PageSize, MaxLimit),
		debounce: opts.Debounce,
		logger:   opts.Logger,
		dataset:  opts.Dataset,
	}
}

// FacilityPage is the response of the listing endpoint.
type FacilityPage struct {
	Facilities []core.Facility `json:"facilities"`
	Search     string          `json:"search,omitempty"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
	HasMore    bool            `json:"has_more"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// errBadRequest marks parameter errors.
var errBadRequest = errors.New("bad request")

// Health reports whether the database answers.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if _, err := h.reader.Counts(r.Context()); err != nil {
		h.logger.Warn("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListFacilities serves GET /api/facilities?search=&limit=&offset=.
func (h *Handlers) ListFacilities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam("limit", q.Get("limit"), h.pageSize)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	offset, err := intParam("offset", q.Get("offset"), 0)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	limit = min(limit, MaxLimit)
	search := q.Get("search")

	// One extra row tells whether another page exists
	rows, err := h.reader.ListFacilities(r.Context(), limit+1, offset, search)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	page := FacilityPage{
		Facilities: rows,
		Search:     search,
		Limit:      limit,
		Offset:     offset,
	}
	if len(rows) > limit {
		page.Facilities = rows[:limit]
		page.HasMore = true
	}
	writeJSON(w, http.StatusOK, page)
}

// GetFacility serves GET /api/facilities/{id}.
func (h *Handlers) GetFacility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	f, err := h.reader.GetFacility(r.Context(), id)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if f == nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "facility not found: " + id})
		return
	}
	writeJSON(w, http.StatusOK, f)
}

// ListAmenities serves GET /api/amenities.
func (h *Handlers) ListAmenities(w http.ResponseWriter, r *http.Request) {
	amenities, err := h.reader.ListAmenities(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"amenities": amenities})
}

// Stats serves GET /api/stats.
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reader.Counts(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func intParam(name, raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer, got %q", errBadRequest, name, raw)
	}
	return n, nil
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
