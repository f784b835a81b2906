package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/facilitydir/internal/cli/output"
	"github.com/leapstack-labs/facilitydir/internal/config"
	"github.com/leapstack-labs/facilitydir/internal/dataset"
	"github.com/leapstack-labs/facilitydir/internal/store"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Store    *store.SQLiteStore
	Renderer *output.Renderer
	Format   output.Format
}

// NewCommandContext opens the store, making sure it has a schema and data.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	c, err := NewCommandContextWithoutStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	st, err := openStore(cmd.Context(), c.Cfg, c.Logger)
	if err != nil {
		return nil, nil, err
	}
	if _, err := ensureSeeded(cmd.Context(), st, c.Cfg); err != nil {
		_ = st.Close()
		return nil, nil, err
	}

	c.Store = st
	return c, func() { _ = st.Close() }, nil
}

// NewCommandContextWithoutStore creates a CommandContext without a store.
// Useful for commands that don't need database access.
func NewCommandContextWithoutStore(cmd *cobra.Command) (*CommandContext, error) {
	cfg := config.FromContext(cmd.Context())
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr()),
		Format:   format,
	}, nil
}

// openStore opens the configured database and applies migrations.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*store.SQLiteStore, error) {
	if cfg.Database != store.MemoryPath {
		if dir := filepath.Dir(cfg.Database); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	st := store.NewSQLiteStore(logger)
	if err := st.Open(cfg.Database); err != nil {
		return nil, err
	}
	if err := st.EnsureSchema(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}

// ensureSeeded seeds the store from the configured dataset when any table is empty.
func ensureSeeded(ctx context.Context, st *store.SQLiteStore, cfg *config.Config) (bool, error) {
	facilities, err := dataset.Load(cfg.Dataset)
	if err != nil {
		return false, err
	}
	return st.EnsureSeeded(ctx, facilities)
}

// formatFlag returns --format when it was set, otherwise the configured format.
func formatFlag(cmd *cobra.Command, fallback output.Format) (output.Format, error) {
	f := cmd.Flags().Lookup("format")
	if f == nil || !f.Changed {
		return fallback, nil
	}
	return output.ParseFormat(f.Value.String())
}
