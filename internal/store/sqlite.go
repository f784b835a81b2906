// Package store provides the SQLite-backed facility directory: schema
// management, seeding, and the paginated search query layer.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/facilitydir/pkg/core"

	_ "modernc.org/sqlite" // SQLite driver (pure Go)
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// ErrNotOpened is returned by every operation called before Open.
var ErrNotOpened = errors.New("database not opened")

// SQLiteStore owns the single shared database handle of the directory.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite store instance.
// A nil logger discards all output.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// NewWithDB wraps an already opened database handle.
// This is useful for testing or when the connection comes from elsewhere.
func NewWithDB(db *sql.DB, logger *slog.Logger) *SQLiteStore {
	s := NewSQLiteStore(logger)
	s.db = db
	return s
}

// dsn builds the modernc DSN for path. Foreign keys must be enabled on every
// connection for the cascade rules of facility_amenities to apply.
func dsn(path string) string {
	if path == MemoryPath {
		return MemoryPath + "?_pragma=foreign_keys(1)"
	}
	return fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
}

// Open opens a connection to the SQLite database.
// Use MemoryPath for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	// One handle shared by every caller; the engine serializes access.
	// Required for :memory:, where each connection would see its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	s.logger.Debug("opened database", "path", path)
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		s.logger.Debug("closing database", "path", s.path)
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Path returns the path the store was opened with.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Ensure SQLiteStore implements the read interface
var _ core.Reader = (*SQLiteStore)(nil)
