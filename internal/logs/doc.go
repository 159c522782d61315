// Package logs reads the per-run JSON build logs for `nbr logs`.
//
// Tail returns the last lines of a file with bounded memory, ReadFrom resumes
// at a byte offset, and Follow polls for appended lines until its context is
// canceled. Entry decoding turns JSON records back into console-style lines
// and supports level filtering.
package logs
