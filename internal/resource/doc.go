// Package resource defines the closed set of asset kinds the build pipeline
// understands.
//
// Every list section, converter, and envelope header is keyed by a Type. The
// enumeration is closed: tables indexed by Type are sized with TypeCount so a
// new kind cannot be added without touching every table that must handle it.
package resource
