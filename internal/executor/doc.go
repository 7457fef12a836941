// Package executor adapts external workers behind a single contract: execute
// one project, write its result rows to a given CSV path, and report the
// outcome as data.
//
// Adapters never surface per-project failures as errors. Timeouts, a missing
// external binary, and unexpected conditions all come back as a failed
// Outcome whose message carries a distinguishing prefix; the scheduler
// treats every failed outcome as retryable.
//
// Two adapters are provided: Litterbox runs the analyzer jar as a
// subprocess, and ScratchAPI fetches project metadata over HTTP with
// backoff and courtesy rate limiting.
package executor
