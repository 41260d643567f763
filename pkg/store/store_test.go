package store

import (
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndRecentRuns(t *testing.T) {
	s := openTestStore(t)

	first, err := s.RecordRun(KindCalendar, 5, 5, "data/bip-daily-calendar.ics")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == 0 {
		t.Error("no ID assigned")
	}
	if _, err := s.RecordRun(KindReschedule, 2, 3, ""); err != nil {
		t.Fatal(err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs", len(runs))
	}
	// Newest first.
	if runs[0].Kind != KindReschedule || runs[1].Kind != KindCalendar {
		t.Errorf("order = %s, %s", runs[0].Kind, runs[1].Kind)
	}
	if runs[1].Tasks != 5 || runs[1].CalendarPath != "data/bip-daily-calendar.ics" {
		t.Errorf("row = %+v", runs[1])
	}
	if runs[0].CreatedAt.IsZero() {
		t.Error("created_at not stored")
	}
}

func TestRecentRunsLimit(t *testing.T) {
	s := openTestStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.RecordRun(KindCalendar, i, i, ""); err != nil {
			t.Fatal(err)
		}
	}
	runs, err := s.RecentRuns(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}

	// Non-positive limits fall back to the default of ten.
	runs, err = s.RecentRuns(0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 5 {
		t.Fatalf("got %d runs, want all 5", len(runs))
	}
}

func TestOpenIdempotentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.RecordRun(KindCalendar, 1, 1, ""); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// Reopening an existing database keeps its rows.
	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	runs, err := s2.RecentRuns(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 {
		t.Errorf("got %d runs after reopen", len(runs))
	}
}
