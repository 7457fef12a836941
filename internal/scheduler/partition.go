package scheduler

import "bssurvey/internal/items"

// Partition splits the work list into max(1, k) buckets by round-robin
// assignment: items[i] lands in bucket[i mod k]. Deterministic for a given
// input order, so retries can re-derive worker ownership.
func Partition(list []items.Item, k int) [][]items.Item {
	if k < 1 {
		k = 1
	}
	buckets := make([][]items.Item, k)
	for i, item := range list {
		idx := i % k
		buckets[idx] = append(buckets[idx], item)
	}
	return buckets
}
