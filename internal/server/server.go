// Package server runs the directory HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/leapstack-labs/facilitydir/internal/api"
	"github.com/leapstack-labs/facilitydir/internal/browse"
	"github.com/leapstack-labs/facilitydir/internal/dataset"
	"github.com/leapstack-labs/facilitydir/internal/metrics"
	"github.com/leapstack-labs/facilitydir/internal/notifier"
	"github.com/leapstack-labs/facilitydir/pkg/core"
	"golang.org/x/sync/errgroup"
)

// reseedDelay collapses bursts of file events into one reseed.
const reseedDelay = 250 * time.Millisecond

// Store is the part of the store the server needs.
type Store interface {
	core.Reader
	Replace(ctx context.Context, facilities []core.Facility) error
}

// Config holds configuration for the server.
type Config struct {
	Store             Store
	Metrics           *metrics.Metrics // optional
	Logger            *slog.Logger
	Addr              string
	PageSize          int
	Debounce          time.Duration
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	// DatasetPath is reloaded and reseeded on change when Watch is set.
	DatasetPath string
	Watch       bool
}

// Server serves the API and optionally watches the dataset file.
type Server struct {
	store    Store
	metrics  *metrics.Metrics
	logger   *slog.Logger
	notifier *notifier.Notifier
	cfg      Config
	addr     chan net.Addr
}

// New creates a new server instance.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}
	if cfg.ReadHeaderTimeout <= 0 {
		cfg.ReadHeaderTimeout = 10 * time.Second
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		store:    cfg.Store,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		notifier: notifier.New(),
		cfg:      cfg,
		addr:     make(chan net.Addr, 1),
	}
}

// Notifier returns the notifier that announces reseeds.
func (s *Server) Notifier() *notifier.Notifier {
	return s.notifier
}

// Addr returns the listening address once Serve has bound it.
func (s *Server) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case a := <-s.addr:
		s.addr <- a
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Handler builds the HTTP handler.
func (s *Server) Handler() http.Handler {
	h := api.NewHandlers(s.metrics.Instrument(s.store), api.Options{
		PageSize: s.cfg.PageSize,
		Debounce: s.cfg.Debounce,
		Logger:   s.logger,
		Dataset:  s.notifier,
	})
	return api.NewRouter(h, s.metrics.Handler(), s.logger)
}

// Serve starts the server and blocks until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.addr <- ln.Addr()
	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Handler(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: s.cfg.ReadHeaderTimeout,
	}

	// Start file watcher if enabled
	if s.cfg.Watch && s.cfg.DatasetPath != "" {
		eg.Go(func() error {
			return s.watchDataset(egctx)
		})
	}

	// Start HTTP server
	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server...")
		s.notifier.Close()
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// Reseed reloads the dataset file and replaces the directory contents.
// Requests served meanwhile see the old directory or the new one.
func (s *Server) Reseed(ctx context.Context) error {
	facilities, err := dataset.Load(s.cfg.DatasetPath)
	if err == nil {
		err = s.store.Replace(ctx, facilities)
	}
	s.metrics.ObserveSeed(metrics.TriggerWatch, err)
	if err != nil {
		return fmt.Errorf("reseed from %s: %w", s.cfg.DatasetPath, err)
	}

	if stats, err := s.store.Counts(ctx); err == nil {
		s.metrics.SetStats(stats)
	}
	s.logger.Info("dataset reseeded", "path", s.cfg.DatasetPath, "facilities", len(facilities))
	s.notifier.Broadcast(notifier.TopicDataset)
	return nil
}

// watchDataset reseeds when the dataset file changes. The parent directory
// is watched so editors that replace the file by rename are seen too.
func (s *Server) watchDataset(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() { _ = watcher.Close() }()

	target := filepath.Clean(s.cfg.DatasetPath)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		s.logger.Error("failed to watch dataset", "path", target, "error", err)
		// Don't fail - continue without watching
		<-ctx.Done()
		return nil
	}

	debouncer := browse.NewDebouncer(reseedDelay, nil)
	defer debouncer.Wait()
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			debouncer.Trigger(func() {
				s.logger.Debug("dataset changed, reseeding", "file", event.Name)
				if err := s.Reseed(ctx); err != nil {
					s.logger.Error("reseed failed", "error", err)
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Error("watcher error", "error", err)
		}
	}
}
