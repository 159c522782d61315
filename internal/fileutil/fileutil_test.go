package fileutil

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestRequireDir(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file.txt")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := RequireDir(dir); err != nil {
		t.Fatalf("expected directory to pass, got %v", err)
	}
	if err := RequireDir(file); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
	if err := RequireDir(filepath.Join(dir, "missing")); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist, got %v", err)
	}
}

func TestEnsureDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b")

	created, err := EnsureDir(target)
	if err != nil || !created {
		t.Fatalf("first EnsureDir: created=%v err=%v", created, err)
	}
	created, err = EnsureDir(target)
	if err != nil || created {
		t.Fatalf("second EnsureDir: created=%v err=%v", created, err)
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := EnsureDir(file); !errors.Is(err, ErrNotDirectory) {
		t.Fatalf("expected ErrNotDirectory, got %v", err)
	}
}

func TestStem(t *testing.T) {
	cases := map[string]string{
		"assets/opengl.png": "opengl",
		"archive.tar.gz":    "archive.tar",
		"noext":             "noext",
		".hidden":           ".hidden",
		"dir/sub dir/a b.obj": "a b",
	}
	for in, want := range cases {
		if got := Stem(in); got != want {
			t.Fatalf("Stem(%q) = %q, want %q", in, got, want)
		}
	}
}
