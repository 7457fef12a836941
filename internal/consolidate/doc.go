// Package consolidate merges tabular result shards into one artifact with a
// single header row.
//
// Merging is always a full rebuild: the destination is deleted up front and
// regenerated from the shards in lexicographic name order, which makes the
// operation idempotent and its output reproducible. The same row-appending
// primitive serves the per-worker scheduler, which accumulates per-item temp
// outputs into a worker's persistent shard.
package consolidate
