package duckdb

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Snapshot is one stored version of a slide.
type Snapshot struct {
	Seq        int64             `json:"seq"`
	SlideID    string            `json:"slide_id"`
	Label      string            `json:"label"`
	Detail     string            `json:"detail"`
	Link       string            `json:"link,omitempty"`
	UpdatedAt  string            `json:"updated_at,omitempty"`
	Accent     string            `json:"accent,omitempty"`
	Source     string            `json:"source"`
	Context    map[string]string `json:"context,omitempty"`
	Data       json.RawMessage   `json:"data,omitempty"`
	RecordedAt time.Time         `json:"recorded_at"`
}

const snapshotColumns = `seq, slide_id, label, detail, link, updated_at, accent, source, context, data, recorded_at`

// PutSnapshot appends a snapshot and returns its sequence number.
func (s *Store) PutSnapshot(ctx context.Context, snap Snapshot) (int64, error) {
	if snap.SlideID == "" {
		return 0, errors.New("duckdb: snapshot without slide id")
	}
	ctxJSON, err := json.Marshal(snap.Context)
	if err != nil {
		return 0, fmt.Errorf("encode context: %w", err)
	}
	if snap.Context == nil {
		ctxJSON = []byte("{}")
	}
	data := string(snap.Data)
	if data == "" {
		data = "{}"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var seq int64
	err = s.db.QueryRowContext(qctx, `
		INSERT INTO slide_snapshots (slide_id, label, detail, link, updated_at, accent, source, context, data)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING seq`,
		snap.SlideID, snap.Label, snap.Detail, snap.Link, snap.UpdatedAt, snap.Accent, snap.Source, string(ctxJSON), data,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("insert snapshot %s: %w", snap.SlideID, err)
	}
	return seq, nil
}

// LatestSnapshot returns the newest snapshot of a slide, or nil when there
// is none.
func (s *Store) LatestSnapshot(ctx context.Context, slideID string) (*Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	row := s.db.QueryRowContext(qctx, `SELECT `+snapshotColumns+`
		FROM slide_snapshots
		WHERE slide_id = ?
		ORDER BY seq DESC
		LIMIT 1`, slideID)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot %s: %w", slideID, err)
	}
	return snap, nil
}

// LatestSnapshots returns the newest snapshot of every slide, ordered by
// slide id.
func (s *Store) LatestSnapshots(ctx context.Context) ([]Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(qctx, `SELECT `+snapshotColumns+`
		FROM slide_snapshots
		QUALIFY row_number() OVER (PARTITION BY slide_id ORDER BY seq DESC) = 1
		ORDER BY slide_id`)
	if err != nil {
		return nil, fmt.Errorf("latest snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		out = append(out, *snap)
	}
	return out, rows.Err()
}

// CountSnapshots returns the number of stored snapshots.
func (s *Store) CountSnapshots(ctx context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qctx, cancel := s.queryCtx(ctx)
	defer cancel()

	var n int64
	if err := s.db.QueryRowContext(qctx, `SELECT COUNT(*) FROM slide_snapshots`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// DeleteBefore removes snapshots recorded before cutoff, always keeping the
// newest snapshot of each slide. It returns the number of rows deleted.
func (s *Store) DeleteBefore(cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	qctx, cancel := s.queryCtx(context.Background())
	defer cancel()

	res, err := s.db.ExecContext(qctx, `
		DELETE FROM slide_snapshots
		WHERE recorded_at < ?
		  AND seq NOT IN (SELECT MAX(seq) FROM slide_snapshots GROUP BY slide_id)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete snapshots: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (*Snapshot, error) {
	var (
		snap    Snapshot
		ctxJSON string
		data    string
		source  sql.NullString
	)
	if err := row.Scan(&snap.Seq, &snap.SlideID, &snap.Label, &snap.Detail, &snap.Link,
		&snap.UpdatedAt, &snap.Accent, &source, &ctxJSON, &data, &snap.RecordedAt); err != nil {
		return nil, err
	}
	snap.Source = source.String
	if ctxJSON != "" && ctxJSON != "null" {
		if err := json.Unmarshal([]byte(ctxJSON), &snap.Context); err != nil {
			return nil, fmt.Errorf("decode context: %w", err)
		}
	}
	snap.Data = json.RawMessage(data)
	return &snap, nil
}
