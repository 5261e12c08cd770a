// Package controllers holds the page controllers shared by the CLI and the TUI.
//
// A controller owns the state of one page: per-source loading flags, error strings and data,
// plus page-specific state such as the current view mode or a transient success notice.
// Readers take a consistent copy with Snapshot.
//
// Loads fan out one goroutine per source and wait for all of them. Each goroutine writes only its own
// source, so a failing fetch never clears a sibling's data. Errors are turned into user-facing strings here.
//
// After a successful rating every controller re-runs its full load rather than patching lists in place,
// because the server may re-rank recommendations after any rating.
package controllers
