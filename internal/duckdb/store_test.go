package duckdb

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore(\"\") failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func putTestSnapshot(t *testing.T, store *Store, snap Snapshot) int64 {
	t.Helper()
	seq, err := store.PutSnapshot(context.Background(), snap)
	if err != nil {
		t.Fatalf("PutSnapshot: %v", err)
	}
	return seq
}

func TestPutSnapshot_LatestWins(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := putTestSnapshot(t, store, Snapshot{SlideID: "sleep", Label: "Sleep", Data: json.RawMessage(`{"score":70}`)})
	second := putTestSnapshot(t, store, Snapshot{
		SlideID:   "sleep",
		Label:     "Sleep",
		Detail:    "last night",
		UpdatedAt: "2026-01-02T07:00:00Z",
		Accent:    "#22d3ee",
		Source:    "import",
		Context:   map[string]string{"location": "Lisbon"},
		Data:      json.RawMessage(`{"score":84}`),
	})
	if second <= first {
		t.Fatalf("sequence did not increase: %d then %d", first, second)
	}

	snap, err := store.LatestSnapshot(ctx, "sleep")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap == nil {
		t.Fatal("LatestSnapshot returned nil")
	}
	if snap.Seq != second || snap.Detail != "last night" || snap.Accent != "#22d3ee" || snap.Source != "import" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
	if snap.Context["location"] != "Lisbon" {
		t.Fatalf("context = %v", snap.Context)
	}
	var data struct{ Score int }
	if err := json.Unmarshal(snap.Data, &data); err != nil || data.Score != 84 {
		t.Fatalf("data = %s (%v)", snap.Data, err)
	}
	if snap.RecordedAt.IsZero() {
		t.Fatal("recorded_at not set")
	}
}

func TestLatestSnapshot_Missing(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	snap, err := store.LatestSnapshot(context.Background(), "travel")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if snap != nil {
		t.Fatalf("expected nil, got %+v", snap)
	}
}

func TestPutSnapshot_RequiresSlideID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	if _, err := store.PutSnapshot(context.Background(), Snapshot{}); err == nil {
		t.Fatal("expected error for empty slide id")
	}
}

func TestLatestSnapshots_OnePerSlide(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	putTestSnapshot(t, store, Snapshot{SlideID: "reading", Label: "old"})
	putTestSnapshot(t, store, Snapshot{SlideID: "cycling", Label: "ride"})
	putTestSnapshot(t, store, Snapshot{SlideID: "reading", Label: "new"})

	list, err := store.LatestSnapshots(context.Background())
	if err != nil {
		t.Fatalf("LatestSnapshots: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].SlideID != "cycling" || list[1].SlideID != "reading" || list[1].Label != "new" {
		t.Fatalf("unexpected list %+v", list)
	}

	n, err := store.CountSnapshots(context.Background())
	if err != nil || n != 3 {
		t.Fatalf("CountSnapshots = %d, %v; want 3", n, err)
	}
}

func TestDeleteBefore_KeepsNewestPerSlide(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	for i := 0; i < 3; i++ {
		putTestSnapshot(t, store, Snapshot{SlideID: "writing"})
	}
	putTestSnapshot(t, store, Snapshot{SlideID: "listening"})

	// A cutoff in the future covers every row regardless of time zone.
	deleted, err := store.DeleteBefore(time.Now().Add(48 * time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("deleted = %d, want 2", deleted)
	}
	n, _ := store.CountSnapshots(context.Background())
	if n != 2 {
		t.Fatalf("remaining = %d, want 2", n)
	}
}

func TestQueryHonoursContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := store.LatestSnapshot(ctx, "sleep"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
