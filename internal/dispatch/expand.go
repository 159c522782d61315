package dispatch

import (
	"bufio"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// IgnoreFile is read from the root of every expanded directory. It uses
// gitignore syntax and extends the configured ignore patterns.
const IgnoreFile = ".nbrignore"

// expansion is the resolved file list of one section.
type expansion struct {
	files   []string
	missing []FileResult
	ignored int
}

// expand resolves resource entries into files. Directory entries are walked
// recursively in lexical order. Explicitly listed files are never ignored.
func (d *Dispatcher) expand(position int, paths []string) expansion {
	var out expansion
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			out.missing = append(out.missing, FileResult{Section: position, Source: path, Err: err})
			continue
		}
		if !info.IsDir() {
			out.files = append(out.files, path)
			continue
		}
		if err := d.walk(position, path, &out); err != nil {
			out.missing = append(out.missing, FileResult{Section: position, Source: path, Err: err})
		}
	}
	return out
}

// walk appends the files below root to out. An unreadable entry below root
// is recorded as a failure of its own and the walk moves on to its siblings;
// only a failure on root itself is returned.
func (d *Dispatcher) walk(position int, root string, out *expansion) error {
	matcher, err := d.matcher(root)
	if err != nil {
		return err
	}
	return filepath.WalkDir(root, func(path string, entry fs.DirEntry, walkErr error) error {
		if path == root {
			return walkErr
		}
		if walkErr != nil {
			out.missing = append(out.missing, FileResult{Section: position, Source: path, Err: walkErr})
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if entry.IsDir() {
			if matcher.MatchesPath(rel + "/") {
				out.ignored++
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() && entry.Type()&fs.ModeSymlink == 0 {
			return nil
		}
		if rel == IgnoreFile {
			return nil
		}
		if matcher.MatchesPath(rel) {
			out.ignored++
			return nil
		}
		out.files = append(out.files, path)
		return nil
	})
}

// matcher combines the configured patterns with the directory's ignore file.
func (d *Dispatcher) matcher(root string) (*ignore.GitIgnore, error) {
	lines := append([]string(nil), d.opts.ignore...)
	extra, err := readIgnoreFile(filepath.Join(root, IgnoreFile))
	if err != nil {
		return nil, err
	}
	lines = append(lines, extra...)
	return ignore.CompileIgnoreLines(lines...), nil
}

func readIgnoreFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}
