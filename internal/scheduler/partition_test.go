package scheduler_test

import (
	"testing"

	"bssurvey/internal/items"
	"bssurvey/internal/scheduler"
)

func TestPartitionRoundRobin(t *testing.T) {
	list := items.FromProjects([]string{"p0", "p1", "p2", "p3", "p4"})
	buckets := scheduler.Partition(list, 2)

	if len(buckets) != 2 {
		t.Fatalf("expected 2 buckets, got %d", len(buckets))
	}
	if len(buckets[0]) != 3 || len(buckets[1]) != 2 {
		t.Fatalf("expected sizes [3 2], got [%d %d]", len(buckets[0]), len(buckets[1]))
	}
	for i, want := range []string{"p0", "p2", "p4"} {
		if buckets[0][i].Project != want {
			t.Fatalf("bucket 0 position %d = %q, want %q", i, buckets[0][i].Project, want)
		}
	}
	for i, want := range []string{"p1", "p3"} {
		if buckets[1][i].Project != want {
			t.Fatalf("bucket 1 position %d = %q, want %q", i, buckets[1][i].Project, want)
		}
	}
}

func TestPartitionClampsK(t *testing.T) {
	list := items.FromProjects([]string{"a", "b"})
	buckets := scheduler.Partition(list, 0)
	if len(buckets) != 1 || len(buckets[0]) != 2 {
		t.Fatalf("expected single bucket with all items, got %v", buckets)
	}
}

func TestPartitionEmptyList(t *testing.T) {
	buckets := scheduler.Partition(nil, 4)
	if len(buckets) != 4 {
		t.Fatalf("expected 4 empty buckets, got %d", len(buckets))
	}
	for i, bucket := range buckets {
		if len(bucket) != 0 {
			t.Fatalf("bucket %d not empty", i)
		}
	}
}
