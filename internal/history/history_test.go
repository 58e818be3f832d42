package history

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := newTestStore(t)

	rec := Conversion{
		ID:            "c1",
		Filename:      "timetable.pdf",
		EventCount:    12,
		SemesterStart: "2025-09-04",
		SemesterEnd:   "2026-01-26",
		DurationMs:    42,
	}
	if err := s.Record(rec); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	got := rows[0]
	if got.ID != "c1" || got.Filename != "timetable.pdf" || got.EventCount != 12 {
		t.Errorf("row = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Error("created_at not filled")
	}
}

func TestRecentOrdering(t *testing.T) {
	s := newTestStore(t)

	old := Conversion{ID: "old", Filename: "a.pdf", CreatedAt: time.Now().UTC().Add(-2 * time.Hour)}
	recent := Conversion{ID: "new", Filename: "b.pdf", CreatedAt: time.Now().UTC()}

	if err := s.Record(old); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(recent); err != nil {
		t.Fatalf("Record: %v", err)
	}

	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 2 || rows[0].ID != "new" {
		t.Errorf("rows not newest-first: %+v", rows)
	}
}

func TestPruneOlderThan(t *testing.T) {
	s := newTestStore(t)

	stale := Conversion{ID: "stale", Filename: "a.pdf", CreatedAt: time.Now().UTC().Add(-48 * time.Hour)}
	fresh := Conversion{ID: "fresh", Filename: "b.pdf", CreatedAt: time.Now().UTC()}

	if err := s.Record(stale); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(fresh); err != nil {
		t.Fatalf("Record: %v", err)
	}

	removed, err := s.PruneOlderThan(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneOlderThan: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}

	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != "fresh" {
		t.Errorf("rows after prune = %+v", rows)
	}
}
