// Package backup keeps rotating file copies of the snapshot store.
package backup

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

const (
	defaultInterval = 24 * time.Hour
	defaultKeepLast = 7

	filePrefix = "nucleus-"
	fileSuffix = ".duckdb"
	stampFmt   = "20060102-150405"
)

// Manager copies the store into LocalDir on a fixed interval and keeps the
// newest KeepLast copies.
type Manager struct {
	store Store
	cfg   Config
	now   func() time.Time
	seq   int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewManager validates cfg and starts the backup loop, whose first copy is
// taken right away. It returns nil when backups are disabled.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if store == nil {
		return nil, errors.New("backup: no store to back up")
	}
	if strings.TrimSpace(cfg.LocalDir) == "" {
		return nil, errors.New("backup: dir is required when backup is enabled")
	}
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.KeepLast <= 0 {
		cfg.KeepLast = defaultKeepLast
	}
	if err := os.MkdirAll(cfg.LocalDir, 0755); err != nil {
		return nil, fmt.Errorf("backup: create dir: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go m.loop(ctx)
	return m, nil
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.done)

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		if _, err := m.RunOnce(ctx); err != nil && ctx.Err() == nil {
			log.Printf("backup: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce writes one copy and prunes the directory. It returns the path of
// the new copy.
func (m *Manager) RunOnce(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.seq++
	// The sequence keeps names unique and ordered within one second.
	name := fmt.Sprintf("%s%s-%04d%s", filePrefix, m.now().UTC().Format(stampFmt), m.seq, fileSuffix)
	path := filepath.Join(m.cfg.LocalDir, name)

	if err := m.store.BackupTo(ctx, path); err != nil {
		return "", fmt.Errorf("copy to %s: %w", path, err)
	}
	removed, err := prune(m.cfg.LocalDir, m.cfg.KeepLast)
	if err != nil {
		return path, fmt.Errorf("prune %s: %w", m.cfg.LocalDir, err)
	}
	log.Printf("backup: wrote %s, pruned %d", path, len(removed))
	return path, nil
}

// Stop cancels the loop and waits for an in-flight copy. It is safe on a
// nil manager and may be called more than once.
func (m *Manager) Stop() {
	if m == nil {
		return
	}
	m.cancel()
	<-m.done
}

// prune deletes all but the newest keep backups in dir and returns the
// removed paths. Names embed a UTC timestamp, so lexical order is age order.
func prune(dir string, keep int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		n := e.Name()
		if !e.IsDir() && strings.HasPrefix(n, filePrefix) && strings.HasSuffix(n, fileSuffix) {
			names = append(names, n)
		}
	}
	if len(names) <= keep {
		return nil, nil
	}
	slices.Sort(names)

	var removed []string
	for _, n := range names[:len(names)-keep] {
		p := filepath.Join(dir, n)
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return removed, err
		}
		removed = append(removed, p)
	}
	return removed, nil
}
