package dispatch

import (
	"fmt"
	"time"

	"nbr/internal/resource"
)

// Status is the outcome of one section.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCanceled  Status = "canceled"
)

// DirectoryError reports a section whose local or output directory is
// unusable. Role is "local" or "out".
type DirectoryError struct {
	Section int
	Role    string
	Path    string
	Err     error
}

func (e *DirectoryError) Error() string {
	return fmt.Sprintf("section %d: %s directory %s: %v", e.Section, e.Role, e.Path, e.Err)
}

func (e *DirectoryError) Unwrap() error { return e.Err }

// FileResult is the outcome of one resolved resource.
type FileResult struct {
	Section  int
	Type     resource.Type
	Source   string
	Output   string
	Err      error
	Duration time.Duration
}

// OK reports whether the resource produced an envelope.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// SectionReport summarizes one section. Position is the section's 1-based
// position in the list file.
type SectionReport struct {
	Position   int
	Type       resource.Type
	LocalDir   string
	OutDir     string
	Status     Status
	OutCreated bool
	Converted  int
	Skipped    int
	Ignored    int
	Collisions int
	Err        error
	Files      []FileResult
}

// Report summarizes one dispatcher run.
type Report struct {
	RunID    string
	Started  time.Time
	Finished time.Time
	Sections []SectionReport
}

// Duration returns the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}

// Converted returns the number of envelopes written across all sections.
func (r Report) Converted() int {
	n := 0
	for _, s := range r.Sections {
		n += s.Converted
	}
	return n
}

// Skipped returns the number of resources that failed to convert.
func (r Report) Skipped() int {
	n := 0
	for _, s := range r.Sections {
		n += s.Skipped
	}
	return n
}

// FailedSections returns the number of sections that did not run.
func (r Report) FailedSections() int {
	n := 0
	for _, s := range r.Sections {
		if s.Status == StatusFailed {
			n++
		}
	}
	return n
}

// Clean reports whether every selected section completed without skips.
func (r Report) Clean() bool {
	for _, s := range r.Sections {
		if s.Status != StatusCompleted || s.Skipped > 0 {
			return false
		}
	}
	return true
}
