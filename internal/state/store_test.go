package state_test

import (
	"os"
	"testing"

	"bssurvey/internal/state"
)

func mustOpen(t *testing.T, dir string) *state.Store {
	t.Helper()
	store, err := state.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestMarkDoneRoundTrip(t *testing.T) {
	dir := t.TempDir()

	store := mustOpen(t, dir)
	if err := store.MarkDone("alpha"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	if err := store.MarkFailed("beta"); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}
	if err := store.MarkLastProcessed("alpha"); err != nil {
		t.Fatalf("MarkLastProcessed failed: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened := mustOpen(t, dir)
	if !reopened.IsDone("alpha") {
		t.Fatal("expected alpha to be done after reopen")
	}
	if !reopened.IsFailed("beta") {
		t.Fatal("expected beta to be failed after reopen")
	}
	if reopened.IsDone("beta") || reopened.IsFailed("alpha") {
		t.Fatal("unexpected cross-membership after reopen")
	}
	if got := reopened.Snapshot().LastProcessed; got != "alpha" {
		t.Fatalf("last processed = %q, want alpha", got)
	}
}

func TestResetForCleanRunTruncates(t *testing.T) {
	dir := t.TempDir()

	store := mustOpen(t, dir)
	for _, project := range []string{"a", "b"} {
		if err := store.MarkDone(project); err != nil {
			t.Fatalf("MarkDone failed: %v", err)
		}
		if err := store.MarkFailed(project); err != nil {
			t.Fatalf("MarkFailed failed: %v", err)
		}
	}
	if err := store.MarkLastProcessed("b"); err != nil {
		t.Fatalf("MarkLastProcessed failed: %v", err)
	}

	if err := store.ResetForCleanRun(); err != nil {
		t.Fatalf("ResetForCleanRun failed: %v", err)
	}

	for _, path := range []string{store.DonePath(), store.FailedPath()} {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
		if info.Size() != 0 {
			t.Fatalf("expected %s to be empty, size %d", path, info.Size())
		}
	}
	if _, err := os.Stat(store.LastProcessedPath()); !os.IsNotExist(err) {
		t.Fatalf("expected last processed marker removed, got %v", err)
	}
	if store.IsDone("a") || store.IsFailed("a") {
		t.Fatal("expected in-memory sets cleared")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	store := mustOpen(t, t.TempDir())
	if err := store.MarkDone("a"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	snap := store.Snapshot()
	delete(snap.Done, "a")
	if !store.IsDone("a") {
		t.Fatal("mutating a snapshot must not affect the store")
	}
}

func TestLoadIgnoresBlankLines(t *testing.T) {
	dir := t.TempDir()
	store := mustOpen(t, dir)
	if err := store.MarkDone("alpha"); err != nil {
		t.Fatalf("MarkDone failed: %v", err)
	}
	_ = store.Close()

	handle, err := os.OpenFile(store.DonePath(), os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open done file: %v", err)
	}
	if _, err := handle.WriteString("\n   \n"); err != nil {
		t.Fatalf("append blanks: %v", err)
	}
	_ = handle.Close()

	reopened := mustOpen(t, dir)
	snap := reopened.Snapshot()
	if len(snap.Done) != 1 {
		t.Fatalf("expected 1 done entry, got %d", len(snap.Done))
	}
}

func TestOpenRejectsSecondOwner(t *testing.T) {
	dir := t.TempDir()
	first := mustOpen(t, dir)
	_ = first

	if _, err := state.Open(dir); err == nil {
		t.Fatal("expected second Open on a locked directory to fail")
	}
}
