package commands

import (
	"github.com/leapstack-labs/facilitydir/internal/metrics"
	"github.com/leapstack-labs/facilitydir/internal/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the directory over HTTP",
		Long: `Start a read-only HTTP API over the facility directory.

Endpoints:
  GET /api/facilities?search=&limit=&offset=
  GET /api/facilities/{id}
  GET /api/amenities
  GET /api/stats
  GET /api/browse/sse      live search stream (datastar signals)
  GET /healthz
  GET /metrics             Prometheus metrics

With --watch the dataset file is watched and the database is rebuilt
whenever it changes.`,
		Example: `  # Serve on the default address
  facilitydir serve

  # Listen on all interfaces and reseed on dataset edits
  facilitydir serve --addr :8080 --watch --dataset ./facilities.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().String("addr", "", "Address to listen on (default: server.addr)")
	cmd.Flags().Bool("watch", false, "Reseed when the dataset file changes")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	c, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := c.Cfg

	st, err := openStore(ctx, cfg, c.Logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	m := metrics.New()
	seeded, err := ensureSeeded(ctx, st, cfg)
	if seeded || err != nil {
		m.ObserveSeed(metrics.TriggerStartup, err)
	}
	if err != nil {
		return err
	}
	if stats, err := st.Counts(ctx); err == nil {
		m.SetStats(stats)
	}

	if cfg.Server.Watch && cfg.Dataset == "" {
		c.Renderer.Warning("--watch needs a dataset file; the bundled dataset never changes")
	}

	srv := server.New(server.Config{
		Store:             st,
		Metrics:           m,
		Logger:            c.Logger,
		Addr:              cfg.Server.Addr,
		PageSize:          cfg.PageSize,
		Debounce:          cfg.Debounce,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		DatasetPath:       cfg.Dataset,
		Watch:             cfg.Server.Watch,
	})

	c.Renderer.Printf("Serving on http://%s\n", cfg.Server.Addr)
	c.Renderer.Println("Press Ctrl+C to stop")

	return srv.Serve(ctx)
}
