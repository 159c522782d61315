package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat reports a source whose extension or encoding no
	// loader understands.
	ErrUnsupportedFormat = errors.New("unsupported source format")
	// ErrMalformed reports a source in a known format whose content is invalid.
	ErrMalformed = errors.New("malformed source")
)

func ext(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

func unsupported(path string) error {
	return fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Base(path))
}
