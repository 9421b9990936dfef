package duckdb

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const backupAlias = "nucleus_backup"

// DBPath returns the configured DuckDB path. Empty means in-memory DB.
func (s *Store) DBPath() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dbPath
}

// BackupTo writes a consistent copy of the store to dstPath, replacing any
// file already there. File stores are checkpointed and copied; in-memory
// stores are exported into a freshly attached database file.
func (s *Store) BackupTo(ctx context.Context, dstPath string) error {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("create backup dir: %w", err)
	}
	tmp := dstPath + ".tmp"
	_ = os.Remove(tmp)

	var err error
	if s.DBPath() == "" {
		err = s.exportTo(ctx, tmp)
	} else {
		err = s.checkpointCopy(ctx, tmp)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, dstPath)
}

func (s *Store) checkpointCopy(ctx context.Context, dst string) error {
	s.mu.Lock()
	_, err := s.db.ExecContext(ctx, "CHECKPOINT")
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("checkpoint: %w", err)
	}
	if err := copyFile(s.dbPath, dst); err != nil {
		return fmt.Errorf("copy duckdb file: %w", err)
	}
	return nil
}

// exportTo runs on one connection so the attachment is visible to every
// statement that uses it.
func (s *Store) exportTo(ctx context.Context, dst string) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	var current string
	if err := conn.QueryRowContext(ctx, "SELECT current_database()").Scan(&current); err != nil {
		return fmt.Errorf("current database: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := conn.ExecContext(ctx, fmt.Sprintf("ATTACH %s AS %s", quoteLiteral(dst), backupAlias)); err != nil {
		return fmt.Errorf("attach backup file: %w", err)
	}
	_, copyErr := conn.ExecContext(ctx, fmt.Sprintf("COPY FROM DATABASE %s TO %s", quoteIdent(current), backupAlias))
	if _, err := conn.ExecContext(context.Background(), "DETACH "+backupAlias); err != nil && copyErr == nil {
		return fmt.Errorf("detach backup file: %w", err)
	}
	if copyErr != nil {
		return fmt.Errorf("export database: %w", copyErr)
	}
	return nil
}

func quoteLiteral(s string) string { return "'" + strings.ReplaceAll(s, "'", "''") + "'" }
func quoteIdent(s string) string   { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }

func copyFile(srcPath, dstPath string) (err error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := dst.Close(); err == nil {
			err = cerr
		}
	}()

	if _, err = io.Copy(dst, src); err != nil {
		return err
	}
	return dst.Sync()
}
