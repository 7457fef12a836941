// Package report derives the end-of-run summary from the durable state
// snapshot and maps it to a process exit status.
//
// The summary is a pure read of the state store: no separate bookkeeping
// survives the scheduler. An identity present in both the done and failed
// files counts as done — a project that eventually succeeded after failing
// in an earlier run stays listed in failed_projects.txt on disk, and the
// reconciliation happens here at read time.
package report
