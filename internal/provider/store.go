package provider

import (
	"context"
	"fmt"

	"github.com/tinytelemetry/nucleus/internal/duckdb"
	"github.com/tinytelemetry/nucleus/internal/model"
)

// SnapshotReader is the part of the DuckDB store a Store provider reads.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, slideID string) (*duckdb.Snapshot, error)
}

// Store serves the newest stored snapshot of one domain.
type Store struct {
	id     model.SlideID
	reader SnapshotReader
}

// NewStore creates a store-backed provider for id.
func NewStore(id model.SlideID, reader SnapshotReader) *Store {
	return &Store{id: id, reader: reader}
}

func (p *Store) ID() model.SlideID { return p.id }

func (p *Store) Fetch(ctx context.Context) (*model.Slide, error) {
	snap, err := p.reader.LatestSnapshot(ctx, string(p.id))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.id, err)
	}
	if snap == nil {
		return nil, nil
	}
	return FromSnapshot(*snap).Slide()
}

// FromSnapshot converts a stored snapshot into a record.
func FromSnapshot(s duckdb.Snapshot) Record {
	return Record{
		ID:        model.SlideID(s.SlideID),
		Label:     s.Label,
		Detail:    s.Detail,
		Link:      s.Link,
		UpdatedAt: s.UpdatedAt,
		Accent:    s.Accent,
		Context:   s.Context,
		Data:      s.Data,
	}
}

// ToSnapshot converts a record for storage.
func ToSnapshot(r Record, source string) duckdb.Snapshot {
	return duckdb.Snapshot{
		SlideID:   string(r.ID),
		Label:     r.Label,
		Detail:    r.Detail,
		Link:      r.Link,
		UpdatedAt: r.UpdatedAt,
		Accent:    r.Accent,
		Source:    source,
		Context:   r.Context,
		Data:      r.Data,
	}
}
