// Package runner wires a configured batch run end to end: it loads the
// work list, filters it against durable state according to the resume
// mode, drives the scheduler with the configured executor, optionally
// consolidates result shards, records the run in the history ledger, and
// reduces the final state to a summary and exit code.
package runner
