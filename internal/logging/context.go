package logging

import "context"

const (
	// FieldComponent names the package that emitted a record.
	FieldComponent = "component"
	// FieldEventType is a stable machine-readable name for a notable event.
	FieldEventType = "event_type"
	// FieldErrorHint suggests the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact states the user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRunID identifies one build invocation.
	FieldRunID = "run_id"
	// FieldListFile is the list file a build reads.
	FieldListFile = "list_file"
	// FieldSection is the 1-based position of a section in its list file.
	FieldSection = "section"
	// FieldResourceType is the section's resource type.
	FieldResourceType = "resource_type"
	FieldSource       = "source_path"
	FieldOutput       = "output"
)

type contextKey int

const runIDKey contextKey = 0

// WithRunID attaches a build run id to ctx.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run id attached by WithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}
