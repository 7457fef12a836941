// Package scheduler dispatches batch items to a bounded pool of workers and
// drives the retry loop.
//
// Two dispatch strategies exist. Per-item submits every pending item as an
// independent task writing to its own output shard; after each attempt the
// failed subset becomes the next attempt's batch. Per-worker partitions the
// list round-robin once, gives each worker a persistent shard file it
// appends to sequentially, and resubmits a worker's failures to the same
// worker on retry so shard ownership never changes.
//
// Every item moves through an explicit state machine
// (pending → attempting → succeeded | retrying → attempting | exhausted)
// and is attempted at most RetryBudget+1 times. Outcomes are handled in
// completion order on the scheduler goroutine, which is the only caller of
// the Collector — durable state appends are therefore naturally serialized.
package scheduler
