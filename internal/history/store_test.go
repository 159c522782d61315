package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"nbr/internal/config"
)

func openTestStore(t *testing.T) (*Store, *config.Config) {
	t.Helper()
	cfg := config.Default()
	base := t.TempDir()
	cfg.Paths.StateDir = filepath.Join(base, "state")
	cfg.Paths.LogDir = filepath.Join(base, "logs")

	store, err := Open(&cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, &cfg
}

func TestRunLifecycle(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	run := Run{ID: "run-1", ListFile: "/tmp/game.nbrlist", Strategy: "pool", Filter: "texture", StartedAt: started, Sections: 2}
	if err := store.BeginRun(ctx, run); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}

	got, err := store.Get(ctx, "run-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != RunRunning || !got.StartedAt.Equal(started) || got.Filter != "texture" {
		t.Fatalf("unexpected run %+v", got)
	}
	if got.Duration() != 0 {
		t.Fatalf("running run should have zero duration, got %s", got.Duration())
	}

	conversions := []Conversion{
		{RunID: "run-1", Section: 1, ResourceType: "texture", Source: "a.png", Output: "a.nbrtexture", Duration: 12 * time.Millisecond},
		{RunID: "run-1", Section: 1, ResourceType: "texture", Source: "b.txt", Reason: "unsupported", ErrorMessage: "unsupported source format: b.txt"},
	}
	for _, c := range conversions {
		if err := store.RecordConversion(ctx, c); err != nil {
			t.Fatalf("RecordConversion: %v", err)
		}
	}

	run.Status = RunWarnings
	run.FinishedAt = started.Add(3 * time.Second)
	run.Converted = 1
	run.Skipped = 1
	if err := store.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun: %v", err)
	}

	got, err = store.Get(ctx, "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != RunWarnings || got.Converted != 1 || got.Skipped != 1 || got.Duration() != 3*time.Second {
		t.Fatalf("unexpected finished run %+v", got)
	}

	all, err := store.Conversions(ctx, "run-1", false)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || !all[0].OK() || all[1].OK() || all[0].Duration != 12*time.Millisecond {
		t.Fatalf("unexpected conversions %+v", all)
	}
	failed, err := store.Conversions(ctx, "run-1", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(failed) != 1 || failed[0].Reason != "unsupported" {
		t.Fatalf("unexpected failed conversions %+v", failed)
	}
}

func TestRecentOrdersNewestFirst(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := Run{ID: id, ListFile: "list", Strategy: "section", StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.BeginRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Fatalf("unexpected order %+v", runs)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store, _ := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		if err := store.BeginRun(ctx, Run{ID: id, ListFile: "l", Strategy: "pool", StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatal(err)
		}
		if err := store.RecordConversion(ctx, Conversion{RunID: id, Section: 1, ResourceType: "font", Source: id + ".ttf"}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.Prune(ctx, 1)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed %d runs, want 2", removed)
	}
	if _, err := store.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old run to be gone, got %v", err)
	}
	left, err := store.Conversions(ctx, "old", false)
	if err != nil || len(left) != 0 {
		t.Fatalf("expected orphaned conversions removed, got %v (%v)", left, err)
	}
}

func TestFinishUnknownRun(t *testing.T) {
	store, _ := openTestStore(t)
	err := store.FinishRun(context.Background(), Run{ID: "ghost", Status: RunCompleted})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := store.BeginRun(context.Background(), Run{}); err == nil {
		t.Fatal("expected empty id to be rejected")
	}
}

func TestReopenKeepsHistory(t *testing.T) {
	store, cfg := openTestStore(t)
	if err := store.BeginRun(context.Background(), Run{ID: "keep", ListFile: "l", Strategy: "pool"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.HistoryPath()); err != nil {
		t.Fatalf("expected database file: %v", err)
	}

	reopened, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if _, err := reopened.Get(context.Background(), "keep"); err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	store, cfg := openTestStore(t)
	if _, err := store.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	_ = store.Close()

	if _, err := Open(cfg); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
