// Package migrate versions the snapshot store schema. Migrations are
// NNN_name.sql files applied in version order, each inside its own
// transaction, and recorded in a ledger table.
package migrate

import (
	"cmp"
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"slices"
	"strconv"
	"strings"
)

//go:embed migrations/*.sql
var embedded embed.FS

const ledgerDDL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    INTEGER PRIMARY KEY,
	name       VARCHAR NOT NULL,
	applied_at TIMESTAMP DEFAULT current_timestamp
)`

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	SQL     string
}

// Runner applies migrations to a database.
type Runner struct {
	db    *sql.DB
	files fs.FS
}

// NewRunner creates a runner over the migrations built into the binary.
func NewRunner(db *sql.DB) *Runner {
	files, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return &Runner{db: db, files: files}
}

// WithFS replaces the migration source. Files are read from the root of
// fsys.
func (r *Runner) WithFS(fsys fs.FS) *Runner {
	r.files = fsys
	return r
}

// Load reads the migrations in fsys ordered by version. A file whose name
// has no numeric prefix, or two files sharing a version, is an error.
func Load(fsys fs.FS) ([]Migration, error) {
	names, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	seen := make(map[int]string, len(names))
	migs := make([]Migration, 0, len(names))
	for _, name := range names {
		prefix, _, _ := strings.Cut(name, "_")
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: name must start with a positive version", name)
		}
		if other, dup := seen[version]; dup {
			return nil, fmt.Errorf("migration %s: version %d already used by %s", name, version, other)
		}
		seen[version] = name

		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", name, err)
		}
		migs = append(migs, Migration{Version: version, Name: name, SQL: string(body)})
	}

	slices.SortFunc(migs, func(a, b Migration) int { return cmp.Compare(a.Version, b.Version) })
	return migs, nil
}

// Pending returns the applied version and the migrations newer than it.
func (r *Runner) Pending(ctx context.Context) (int, []Migration, error) {
	if _, err := r.db.ExecContext(ctx, ledgerDDL); err != nil {
		return 0, nil, fmt.Errorf("creating schema_migrations: %w", err)
	}

	var applied sql.NullInt64
	if err := r.db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_migrations").Scan(&applied); err != nil {
		return 0, nil, fmt.Errorf("reading applied version: %w", err)
	}
	current := int(applied.Int64)

	migs, err := Load(r.files)
	if err != nil {
		return 0, nil, err
	}
	idx, _ := slices.BinarySearchFunc(migs, current+1, func(m Migration, v int) int {
		return cmp.Compare(m.Version, v)
	})
	return current, migs[idx:], nil
}

// Run applies every pending migration and returns the resulting version.
func (r *Runner) Run(ctx context.Context) (int, error) {
	current, pending, err := r.Pending(ctx)
	if err != nil {
		return 0, err
	}
	for _, m := range pending {
		if err := r.apply(ctx, m); err != nil {
			return current, err
		}
		current = m.Version
		log.Printf("duckdb: applied migration %s", m.Name)
	}
	return current, nil
}

// Status reports the applied version and how many migrations are pending.
func (r *Runner) Status(ctx context.Context) (int, int, error) {
	current, pending, err := r.Pending(ctx)
	return current, len(pending), err
}

func (r *Runner) apply(ctx context.Context, m Migration) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.Name, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing %s: %w", m.Name, err)
	}
	if _, err = tx.ExecContext(ctx, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.Version, m.Name); err != nil {
		return fmt.Errorf("recording %s: %w", m.Name, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit %s: %w", m.Name, err)
	}
	return nil
}
