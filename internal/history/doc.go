// Package history keeps a small SQLite ledger of past runs: one row per
// run with its mode, strategy, counts, and timing. The run itself never
// depends on it — resumption is driven by the line-oriented state files —
// so ledger failures are reported but non-fatal.
package history
