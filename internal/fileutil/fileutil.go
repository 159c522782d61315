package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotDirectory reports a path that exists but is not a directory.
var ErrNotDirectory = errors.New("not a directory")

// RequireDir returns nil when path is an existing directory.
func RequireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: %w", path, ErrNotDirectory)
	}
	return nil
}

// EnsureDir creates path (and parents) when it does not exist. It reports
// whether anything was created.
func EnsureDir(path string) (bool, error) {
	err := RequireDir(path)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, err
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return false, err
	}
	return true, nil
}

// Stem returns the base name of path without its final extension. Names that
// are only an extension (".hidden") are returned whole.
func Stem(path string) string {
	base := filepath.Base(path)
	stem := base[:len(base)-len(filepath.Ext(base))]
	if stem == "" {
		return base
	}
	return stem
}
