package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndRecent(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()

	exit := 0
	id, err := s.Record(ctx, Entry{
		Script:     "backup.py",
		Path:       "/opt/deck/backup.py",
		Strategy:   "command-line",
		Kind:       "success",
		Succeeded:  true,
		Message:    "Script executed successfully",
		ExitCode:   &exit,
		DurationMs: 120,
		StartedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if id == 0 {
		t.Fatal("id not assigned")
	}

	entries, err := s.Recent(ctx, "", 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d", len(entries))
	}
	e := entries[0]
	if e.Script != "backup.py" || !e.Succeeded || e.Kind != "success" {
		t.Fatalf("entry = %+v", e)
	}
	if e.ExitCode == nil || *e.ExitCode != 0 {
		t.Fatalf("exit = %v", e.ExitCode)
	}
	if e.StartedAt.IsZero() {
		t.Fatal("started_at not round-tripped")
	}
}

func TestRecentNewestFirstAndLimit(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.Record(ctx, Entry{
			Script:    "a.py",
			Path:      "a.py",
			Strategy:  "module-exec",
			Kind:      "success",
			Succeeded: true,
			Message:   "ok",
			StartedAt: time.Now(),
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.Recent(ctx, "", 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].ID <= entries[1].ID || entries[1].ID <= entries[2].ID {
		t.Fatalf("not newest first: %d %d %d", entries[0].ID, entries[1].ID, entries[2].ID)
	}
}

func TestRecentFiltersByScript(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	for _, script := range []string{"a.py", "b.py", "a.py"} {
		if _, err := s.Record(ctx, Entry{Script: script, Path: script, Strategy: "entry-call", Kind: "success", Succeeded: true, Message: "ok", StartedAt: time.Now()}); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := s.Recent(ctx, "a.py", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d", len(entries))
	}
	for _, e := range entries {
		if e.Script != "a.py" {
			t.Fatalf("entry = %+v", e)
		}
	}
}

func TestNullExitCodeRoundTrips(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	if _, err := s.Record(ctx, Entry{Script: "e.py", Path: "e.py", Strategy: "entry-call", Kind: "runtime-failure", Message: "boom", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	entries, err := s.Recent(ctx, "", 1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].ExitCode != nil {
		t.Fatalf("exit = %v, want nil", entries[0].ExitCode)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Record(context.Background(), Entry{Script: "x.py", Path: "x.py", Strategy: "command-line", Kind: "success", Succeeded: true, Message: "ok", StartedAt: time.Now()}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s2.Close()
	entries, err := s2.Recent(context.Background(), "", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("len = %d after reopen", len(entries))
	}
}
