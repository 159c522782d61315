// Package dispatch converts the sections of a compiled list file.
//
// For every selected section the dispatcher checks that the local directory
// exists, creates the output directory when needed, expands directory
// resources recursively and hands each resolved file to a Converter.
// Per-file failures are logged and counted; they never abort a section or
// the run. A section fails only when its directories are unusable.
//
// Two schedulers are available. The pool strategy flattens every section
// into one bounded queue drained by a fixed number of workers. The section
// strategy runs one goroutine per section and converts its files serially.
// Run returns once every section has finished under either strategy.
package dispatch
