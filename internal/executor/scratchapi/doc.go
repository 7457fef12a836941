// Package scratchapi adapts the Scratch project metadata API as an executor.
//
// Each execution fetches one project's metadata over HTTP and appends a
// project,title row to the output CSV. Requests are paced by a shared rate
// limiter, bounded by a per-request timeout, and retried with exponential
// backoff and jitter; HTTP 429 honours the Retry-After header.
package scratchapi
