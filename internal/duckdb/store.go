// Package duckdb persists slide snapshots so the dashboard can start from
// the last data each domain produced.
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/tinytelemetry/nucleus/internal/duckdb/migrate"
)

const (
	defaultQueryTimeout = 30 * time.Second
	migrateTimeout      = time.Minute
)

// Store is the snapshot database. Writes that must not interleave with a
// checkpoint take mu.
type Store struct {
	db           *sql.DB
	mu           sync.RWMutex
	dbPath       string
	schema       int
	QueryTimeout time.Duration
}

// NewStore opens dbPath, creating it and its directory when missing, and
// brings the schema up to date. An empty dbPath opens an in-memory store.
// The optional queryTimeout bounds every query (default 30s).
func NewStore(dbPath string, queryTimeout ...time.Duration) (*Store, error) {
	if dbPath != "" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database dir: %w", err)
		}
	}

	db, err := sql.Open("duckdb", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
	defer cancel()
	version, err := migrate.NewRunner(db).Run(ctx)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s := &Store{
		db:           db,
		dbPath:       dbPath,
		schema:       version,
		QueryTimeout: defaultQueryTimeout,
	}
	if len(queryTimeout) > 0 && queryTimeout[0] > 0 {
		s.QueryTimeout = queryTimeout[0]
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB { return s.db }

// SchemaVersion is the migration version the store was opened at.
func (s *Store) SchemaVersion() int { return s.schema }

// queryCtx bounds a query by the store timeout, inheriting cancellation
// from parent.
func (s *Store) queryCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, s.QueryTimeout)
}
