package build

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"nbr/internal/envelope"
	"nbr/internal/history"
	"nbr/internal/listfile"
	"nbr/internal/logging"
	"nbr/internal/resource"
	"nbr/internal/testsupport"
)

const demoList = `
section texture {
    local "assets/textures"
    out   "res/textures"
    resources [ "a.png" "broken.png" "more" ]
}

section shader {
    local "assets/shaders"
    out   "res/shaders"
    resources [ "basic.glsl" ]
}
`

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	testsupport.WriteText(t, filepath.Join(dir, "game.nbrlist"), demoList)
	testsupport.WritePNG(t, filepath.Join(dir, "assets", "textures", "a.png"), 2, 2)
	testsupport.WritePNG(t, filepath.Join(dir, "assets", "textures", "more", "b.png"), 2, 2)
	testsupport.WriteBytes(t, filepath.Join(dir, "assets", "textures", "broken.png"), []byte("\x89PNG\r\n\x1a\nnope"))
	testsupport.WriteText(t, filepath.Join(dir, "assets", "shaders", "basic.glsl"),
		"#type vertex\nvoid main() {}\n#type fragment\nvoid main() {}\n")
	return filepath.Join(dir, "game.nbrlist")
}

func TestRunBuildsListAndRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	listPath := writeProject(t)
	base := filepath.Dir(listPath)

	result, err := Run(context.Background(), cfg, Options{ListPath: listPath})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != history.RunWarnings {
		t.Fatalf("status = %s", result.Status)
	}
	if result.Report.Converted() != 3 || result.Report.Skipped() != 1 {
		t.Fatalf("converted=%d skipped=%d", result.Report.Converted(), result.Report.Skipped())
	}
	if result.Report.RunID != result.RunID {
		t.Fatalf("report run id %q, want %q", result.Report.RunID, result.RunID)
	}

	for _, path := range []string{
		filepath.Join(base, "res", "textures", "a.nbrtexture"),
		filepath.Join(base, "res", "textures", "b.nbrtexture"),
		filepath.Join(base, "res", "shaders", "basic.nbrshader"),
	} {
		header, _, err := envelope.ReadFile(path)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		if header.Magic != envelope.Magic {
			t.Fatalf("bad header in %s", path)
		}
	}

	if result.LogPath == "" {
		t.Fatal("expected a run log path")
	}
	if _, err := os.Stat(result.LogPath); err != nil {
		t.Fatalf("run log missing: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(cfg.Paths.LogDir, LatestLogName)); err != nil {
		t.Fatalf("latest log pointer missing: %v", err)
	}

	store := testsupport.MustOpenHistory(t, cfg)
	run, err := store.Get(context.Background(), result.RunID)
	if err != nil {
		t.Fatalf("history Get: %v", err)
	}
	if run.Status != history.RunWarnings || run.Converted != 3 || run.Skipped != 1 || run.Sections != 2 {
		t.Fatalf("unexpected history run %+v", run)
	}
	conversions, err := store.Conversions(context.Background(), result.RunID, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(conversions) != 1 || conversions[0].Reason != "malformed" {
		t.Fatalf("unexpected failed conversions %+v", conversions)
	}
}

func TestRunWithFilterAndStrategyOverride(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithoutLogFile())
	listPath := writeProject(t)
	shader := resource.Shader

	result, err := Run(context.Background(), cfg, Options{
		ListPath: listPath,
		Filter:   &shader,
		Strategy: "section",
		Logger:   logging.NewNop(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != history.RunCompleted || len(result.Report.Sections) != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.LogPath != "" {
		t.Fatalf("expected no run log, got %s", result.LogPath)
	}
	if _, err := os.Stat(cfg.HistoryPath()); !os.IsNotExist(err) {
		t.Fatalf("history database should not exist when disabled: %v", err)
	}
}

func TestRunRejectsInvalidList(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogFile())
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.nbrlist")
	testsupport.WritePNG(t, filepath.Join(dir, "tex", "a.png"), 2, 2)
	testsupport.WriteText(t, path, `
section texture { local "tex" out "res/tex" resources [ "a.png" ] }
section hologram { local "a" out "b" resources [] }
`)

	_, err := Run(context.Background(), cfg, Options{ListPath: path, Logger: logging.NewNop()})
	var typeErr *listfile.UnknownResourceTypeError
	if !errors.As(err, &typeErr) {
		t.Fatalf("expected UnknownResourceTypeError, got %v", err)
	}
	for _, out := range []string{"b", filepath.Join("res", "tex")} {
		if _, statErr := os.Stat(filepath.Join(dir, out)); !os.IsNotExist(statErr) {
			t.Fatalf("output directory %s was created for a rejected list", out)
		}
	}
	if _, statErr := os.Stat(filepath.Join(dir, "res", "tex", "a.nbrtexture")); !os.IsNotExist(statErr) {
		t.Fatal("no envelope may be written for a rejected list")
	}
}

func TestRunFailsWhenLocked(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutHistory(), testsupport.WithoutLogFile())
	listPath := writeProject(t)

	if err := os.MkdirAll(cfg.LockDir(), 0o755); err != nil {
		t.Fatal(err)
	}
	held := flock.New(LockPath(cfg, listPath))
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("take lock: ok=%v err=%v", ok, err)
	}
	defer held.Unlock()

	_, err = Run(context.Background(), cfg, Options{ListPath: listPath, Logger: logging.NewNop()})
	if !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
}

func TestRunAllSectionsFailed(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithoutLogFile())
	dir := t.TempDir()
	path := filepath.Join(dir, "missing.nbrlist")
	testsupport.WriteText(t, path, `section font { local "nowhere" out "fonts" resources [ "a.ttf" ] }`)

	result, err := Run(context.Background(), cfg, Options{ListPath: path, Logger: logging.NewNop()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Status != history.RunFailed || result.Report.FailedSections() != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestLockPathIsStablePerList(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	a := LockPath(cfg, "/projects/game/assets.nbrlist")
	b := LockPath(cfg, "/projects/game/assets.nbrlist")
	c := LockPath(cfg, "/projects/other/assets.nbrlist")
	if a != b {
		t.Fatalf("lock path not stable: %s vs %s", a, b)
	}
	if a == c {
		t.Fatal("different lists must not share a lock")
	}
	if filepath.Dir(a) != cfg.LockDir() {
		t.Fatalf("lock outside lock dir: %s", a)
	}
}
