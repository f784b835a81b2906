package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes registers the directory routes on router.
// metrics may be nil, in which case /metrics is not served.
func SetupRoutes(router chi.Router, h *Handlers, metrics http.Handler) {
	router.Get("/healthz", h.Health)
	if metrics != nil {
		router.Handle("/metrics", metrics)
	}

	router.Route("/api", func(r chi.Router) {
		r.Get("/facilities", h.ListFacilities)
		r.Get("/facilities/{id}", h.GetFacility)
		r.Get("/amenities", h.ListAmenities)
		r.Get("/stats", h.Stats)
		r.Get("/browse/sse", h.BrowseSSE)
	})
}

// NewRouter returns a mux with the standard middleware stack and all routes.
func NewRouter(h *Handlers, metrics http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(logger),
		middleware.Recoverer,
		middleware.Compress(5),
	)
	SetupRoutes(r, h, metrics)
	return r
}

// requestLogger logs one line per request at debug level.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			defer func() {
				logger.Debug("http request",
					"method", r.Method,
					"path", r.URL.Path,
					"status", ww.Status(),
					"bytes", ww.BytesWritten(),
					"duration", time.Since(start),
					"request_id", middleware.GetReqID(r.Context()))
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
