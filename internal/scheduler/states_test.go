package scheduler

import "testing"

func TestTrackerTransitions(t *testing.T) {
	tr := newTracker([]string{"a"})

	if err := tr.transition("a", StateAttempting); err != nil {
		t.Fatalf("pending -> attempting: %v", err)
	}
	if err := tr.transition("a", StateRetrying); err != nil {
		t.Fatalf("attempting -> retrying: %v", err)
	}
	if err := tr.transition("a", StateAttempting); err != nil {
		t.Fatalf("retrying -> attempting: %v", err)
	}
	if err := tr.transition("a", StateSucceeded); err != nil {
		t.Fatalf("attempting -> succeeded: %v", err)
	}
	if tr.attemptCount("a") != 2 {
		t.Fatalf("attempt count = %d, want 2", tr.attemptCount("a"))
	}
	if !tr.state("a").Terminal() {
		t.Fatal("succeeded must be terminal")
	}
}

func TestTrackerRejectsInvalidTransitions(t *testing.T) {
	tr := newTracker([]string{"a"})
	if err := tr.transition("a", StateSucceeded); err == nil {
		t.Fatal("pending -> succeeded must be rejected")
	}
	_ = tr.transition("a", StateAttempting)
	_ = tr.transition("a", StateSucceeded)
	if err := tr.transition("a", StateAttempting); err == nil {
		t.Fatal("terminal states must not be re-entered")
	}
	if err := tr.transition("missing", StateAttempting); err == nil {
		t.Fatal("unknown items must be rejected")
	}
}
