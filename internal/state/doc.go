// Package state persists batch progress across runs in three line-oriented
// files: ok_projects.txt, failed_projects.txt, and last_project_processed.txt.
//
// The done and failed sets are append-only during a run; a clean run
// truncates them up front. Appends are serialized inside the Store so a
// single owner goroutine can record outcomes from many workers without
// interleaving lines. The sets are loaded once when the store opens; a run
// never re-reads them mid-flight.
//
// The store holds a flock on the state directory for its lifetime so two
// concurrent runs cannot corrupt each other's appends.
package state
