// Package main hosts the nbr CLI entrypoint and command graph.
//
// The Cobra-based command tree compiles list files, runs builds, inspects
// envelope and scene files, and reports build history. It centralizes
// configuration resolution so subcommands can focus on output instead of
// wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
