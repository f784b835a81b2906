package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const migrationsDir = "migrations"

// gooseLogger routes goose progress output through slog at debug level.
type gooseLogger struct {
	logger *slog.Logger
}

func (l gooseLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, v...), "component", "goose")
}

func (l gooseLogger) Fatalf(format string, v ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, v...), "component", "goose")
	os.Exit(1)
}

// configureGoose points goose at the embedded migrations.
func configureGoose(logger *slog.Logger) error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(gooseLogger{logger: logger})

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// EnsureSchema creates all tables and indexes if absent and switches the
// database to write-ahead logging. Safe to call on every launch.
func (s *SQLiteStore) EnsureSchema(ctx context.Context) error {
	if s.db == nil {
		return ErrNotOpened
	}

	// journal_mode cannot change inside a transaction, so it runs before goose.
	// In-memory databases report "memory" and keep it.
	var mode string
	if err := s.db.QueryRowContext(ctx, "PRAGMA journal_mode = WAL").Scan(&mode); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	s.logger.Debug("journal mode set", "mode", mode)

	return MigrateWithDB(ctx, s.db, s.logger)
}

// MigrateWithDB runs all pending migrations using a raw database connection.
// This is useful for testing or when you have a db connection from elsewhere.
func MigrateWithDB(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := configureGoose(logger); err != nil {
		return err
	}

	if err := goose.UpContext(ctx, db, migrationsDir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current migration version.
func (s *SQLiteStore) MigrationVersion(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, ErrNotOpened
	}
	if err := configureGoose(s.logger); err != nil {
		return 0, err
	}
	return goose.GetDBVersionContext(ctx, s.db)
}

// dropSchema rolls back every migration.
func (s *SQLiteStore) dropSchema(ctx context.Context) error {
	if err := configureGoose(s.logger); err != nil {
		return err
	}
	if err := goose.ResetContext(ctx, s.db, migrationsDir); err != nil {
		return fmt.Errorf("failed to reset migrations: %w", err)
	}
	return nil
}
