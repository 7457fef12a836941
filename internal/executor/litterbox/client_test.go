package litterbox

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

func stubCommand(t *testing.T, mode string, captured *[]string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		if captured != nil {
			*captured = append([]string(nil), args...)
		}
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "LITTERBOX_HELPER_MODE="+mode)
		return cmd
	}
	t.Cleanup(func() { commandContext = original })
}

func TestExecuteSuccessRemovesListFile(t *testing.T) {
	var captured []string
	stubCommand(t, "success", &captured)

	tmpDir := t.TempDir()
	client := NewClient("/opt/litterbox.jar", t.TempDir(), tmpDir, time.Minute)
	item := items.New("survey_42")

	outcome := client.Execute(context.Background(), item, filepath.Join(t.TempDir(), "out.csv"))
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.ExitCode == nil || *outcome.ExitCode != 0 {
		t.Fatalf("expected exit code 0, got %v", outcome.ExitCode)
	}

	listFile := filepath.Join(tmpDir, "project_42.txt")
	if _, err := os.Stat(listFile); !os.IsNotExist(err) {
		t.Fatalf("expected temp list file removed, stat err = %v", err)
	}

	found := false
	for i, arg := range captured {
		if arg == "--project-list" && i+1 < len(captured) {
			if captured[i+1] != listFile {
				t.Fatalf("unexpected list file arg %q", captured[i+1])
			}
			found = true
		}
	}
	if !found {
		t.Fatalf("expected --project-list in args %v", captured)
	}
}

func TestExecuteFailureCapturesExitCode(t *testing.T) {
	stubCommand(t, "fail", nil)

	client := NewClient("/opt/litterbox.jar", t.TempDir(), t.TempDir(), time.Minute)
	outcome := client.Execute(context.Background(), items.New("p1"), filepath.Join(t.TempDir(), "out.csv"))
	if outcome.Success {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if outcome.ExitCode == nil || *outcome.ExitCode != 3 {
		t.Fatalf("expected exit code 3, got %v", outcome.ExitCode)
	}
	if !strings.Contains(outcome.Message, "analyzer blew up") {
		t.Fatalf("expected tool output in message, got %q", outcome.Message)
	}
}

func TestExecuteTimeout(t *testing.T) {
	stubCommand(t, "hang", nil)

	tmpDir := t.TempDir()
	client := NewClient("/opt/litterbox.jar", t.TempDir(), tmpDir, 100*time.Millisecond)
	item := items.New("slow_7")

	outcome := client.Execute(context.Background(), item, filepath.Join(t.TempDir(), "out.csv"))
	if outcome.Success {
		t.Fatalf("expected timeout failure, got %+v", outcome)
	}
	if !strings.HasPrefix(outcome.Message, executor.PrefixTimeout) {
		t.Fatalf("expected timeout prefix, got %q", outcome.Message)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "project_7.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected temp list file removed after timeout, stat err = %v", err)
	}
}

func TestExecuteMissingBinary(t *testing.T) {
	client := NewClient("/opt/litterbox.jar", t.TempDir(), t.TempDir(), time.Minute,
		WithJavaBinary(filepath.Join(t.TempDir(), "no-such-java")))

	outcome := client.Execute(context.Background(), items.New("p1"), filepath.Join(t.TempDir(), "out.csv"))
	if outcome.Success {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if !strings.HasPrefix(outcome.Message, executor.PrefixNotFound) {
		t.Fatalf("expected not-found prefix, got %q", outcome.Message)
	}
}

func TestExecuteDryRunStillCleansUp(t *testing.T) {
	tmpDir := t.TempDir()
	client := NewClient("/opt/litterbox.jar", t.TempDir(), tmpDir, time.Minute, WithDryRun(true))
	item := items.New("dry_9")

	outcome := client.Execute(context.Background(), item, filepath.Join(t.TempDir(), "out.csv"))
	if !outcome.Success {
		t.Fatalf("expected dry-run success, got %+v", outcome)
	}
	if !strings.HasPrefix(outcome.Message, "dry-run:") {
		t.Fatalf("expected dry-run message, got %q", outcome.Message)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "project_9.txt")); !os.IsNotExist(err) {
		t.Fatalf("expected temp list file removed after dry run, stat err = %v", err)
	}
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	switch os.Getenv("LITTERBOX_HELPER_MODE") {
	case "success":
		fmt.Println("checked 1 project")
		os.Exit(0)
	case "fail":
		fmt.Fprintln(os.Stderr, "analyzer blew up")
		os.Exit(3)
	case "hang":
		time.Sleep(10 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
