// Package history records build runs and per-file conversion outcomes in a
// SQLite database under the state directory. It backs `nbr history`.
package history
