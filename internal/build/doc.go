// Package build runs one list file end to end: it compiles the list, takes
// a per-list lock, dispatches every selected section and records the run in
// the history database.
package build
