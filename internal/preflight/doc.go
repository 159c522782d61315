// Package preflight provides readiness checks for the filesystem paths a
// build depends on.
//
// These checks run in two contexts:
//   - The CLI "nbr check" command uses CheckList to show, per section,
//     whether the local directory is readable, whether the output directory
//     is writable or can be created, and which resource entries are missing.
//   - The build runner calls RunAll before taking the list lock so an
//     unwritable state directory is reported before any work starts.
package preflight
