// Package sqlite implements repository.Store on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Masterminds/squirrel"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/carlot/carlot/internal/repository"
	"github.com/carlot/carlot/internal/repository/migrations"
)

// Store implements repository.Store using SQLite.
type Store struct {
	db      *sql.DB
	builder squirrel.StatementBuilderType
	// go-sqlite does not support concurrent writes
	writeLock *sync.Mutex
}

var _ repository.Store = (*Store)(nil)

// Open opens the database file at path, applies migrations and returns a Store.
// The path ":memory:" opens a private in-memory database.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// every connection to :memory: is a separate database
	if path == memoryPath {
		db.SetMaxOpenConns(1)
	}
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrations.SQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return New(db), nil
}

const memoryPath = ":memory:"

// dsn applies the pragmas on every pooled connection, not just the first.
func dsn(path string) string {
	d := "file:" + path + "?_pragma=busy_timeout(5000)"
	if path != memoryPath {
		d += "&_pragma=journal_mode(WAL)"
	}
	return d
}

// New wraps an open database. The schema must already be migrated.
func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		builder:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
		writeLock: new(sync.Mutex),
	}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close db: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var liteErr *sqlite.Error
	if !errors.As(err, &liteErr) {
		return false
	}
	switch liteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
		return true
	default:
		return false
	}
}

func toUnix(t time.Time) int64 {
	return t.UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
