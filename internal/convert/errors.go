package convert

import (
	"errors"
	"fmt"
	"io/fs"

	"nbr/internal/loaders"
	"nbr/internal/resource"
)

// ErrNoConverter reports a resource type outside the closed enumeration.
var ErrNoConverter = errors.New("no converter for resource type")

// LoaderError reports a source that could not be loaded. No output file is
// written in that case.
type LoaderError struct {
	Source string
	Type   resource.Type
	Err    error
}

func (e *LoaderError) Error() string {
	return fmt.Sprintf("load %s %s: %v", e.Type, e.Source, e.Err)
}

func (e *LoaderError) Unwrap() error { return e.Err }

// WriteError reports a loaded source whose envelope could not be produced.
type WriteError struct {
	Source string
	Output string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s from %s: %v", e.Output, e.Source, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Reason classifies a conversion failure for logs and reports.
func Reason(err error) string {
	var loadErr *LoaderError
	var writeErr *WriteError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, loaders.ErrUnsupportedFormat):
		return "unsupported"
	case errors.Is(err, loaders.ErrMalformed):
		return "malformed"
	case errors.Is(err, fs.ErrNotExist):
		return "missing"
	case errors.Is(err, fs.ErrPermission):
		return "permission"
	case errors.As(err, &writeErr):
		return "write"
	case errors.As(err, &loadErr):
		return "load"
	default:
		return "error"
	}
}

// Hint returns a short operator-facing suggestion for a failure reason.
func Hint(err error) string {
	switch Reason(err) {
	case "unsupported":
		return "remove the file from the section or add an ignore pattern"
	case "malformed":
		return "re-export the source asset"
	case "missing":
		return "check the resources list against the section's local directory"
	case "permission":
		return "check file permissions"
	case "write":
		return "check free space and permissions on the output directory"
	default:
		return ""
	}
}
