package history

import "time"

// RunStatus is the final state of a build run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunWarnings  RunStatus = "completed_with_skips"
	RunCanceled  RunStatus = "canceled"
	RunFailed    RunStatus = "failed"
)

// Run is one recorded build.
type Run struct {
	ID             string
	ListFile       string
	Strategy       string
	Filter         string
	Status         RunStatus
	StartedAt      time.Time
	FinishedAt     time.Time
	Sections       int
	FailedSections int
	Converted      int
	Skipped        int
	LogPath        string
}

// Duration returns the run's wall time, or zero while it is still running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Conversion is one per-file outcome within a run.
type Conversion struct {
	RunID        string
	Section      int
	ResourceType string
	Source       string
	Output       string
	Reason       string
	ErrorMessage string
	Duration     time.Duration
}

// OK reports whether the conversion produced an envelope.
func (c Conversion) OK() bool {
	return c.ErrorMessage == ""
}
