// Package logging assembles structured slog loggers for the nbr commands.
//
// It owns the console and JSON handlers, level parsing and output plumbing,
// per-run log files, and the standardized field names every package logs
// with. Components derive their logger with NewComponentLogger; warnings and
// errors go through WarnWithContext and ErrorWithContext so each one carries
// an event type, a hint, and (for warnings) the impact on the build.
package logging
