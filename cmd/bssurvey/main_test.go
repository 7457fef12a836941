package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestConfig(t *testing.T, base string) string {
	t.Helper()

	body := fmt.Sprintf(`
[paths]
results_dir = %q
output_dir = %q
log_dir = %q
tmp_dir = %q
state_dir = %q

[run]
executor = "metadata"
workers = 2

[history]
enabled = false
`,
		filepath.Join(base, "results"),
		filepath.Join(base, "output"),
		filepath.Join(base, "logs"),
		filepath.Join(base, "tmp"),
		filepath.Join(base, "state"),
	)
	path := filepath.Join(base, "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunDryRunSucceeds(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	csvPath := filepath.Join(base, "projects.csv")
	if err := os.WriteFile(csvPath, []byte("project\n12345\n67890\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, err := executeCommand(t, "--config", configPath, "run", "--dry-run", csvPath)
	if err != nil {
		t.Fatalf("run --dry-run failed: %v", err)
	}
}

func TestRunEmptyCSVExitsWithStatusTwo(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	csvPath := filepath.Join(base, "projects.csv")
	if err := os.WriteFile(csvPath, []byte(""), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, err := executeCommand(t, "--config", configPath, "run", csvPath)
	var status exitStatusError
	if !errors.As(err, &status) {
		t.Fatalf("expected exit status error, got %v", err)
	}
	if status.code != 2 {
		t.Fatalf("expected exit code 2, got %d", status.code)
	}
}

func TestRunRejectsUnknownResumeMode(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)
	csvPath := filepath.Join(base, "projects.csv")
	if err := os.WriteFile(csvPath, []byte("project\n1\n"), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	_, err := executeCommand(t, "--config", configPath, "run", "--resume", "rewind", csvPath)
	if err == nil || !strings.Contains(err.Error(), "unknown resume mode") {
		t.Fatalf("expected resume mode error, got %v", err)
	}
}

func TestConsolidateReportsNoShards(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := executeCommand(t, "--config", configPath, "consolidate")
	if err != nil {
		t.Fatalf("consolidate failed: %v", err)
	}
	if !strings.Contains(out, "No result shards") {
		t.Fatalf("expected no-shards message, got %q", out)
	}
}

func TestHistoryEmptyLedger(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := executeCommand(t, "--config", configPath, "history")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "No recorded runs") {
		t.Fatalf("expected empty ledger message, got %q", out)
	}
}

func TestConfigInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	out, err := executeCommand(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init failed: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample file: %v", err)
	}

	if _, err := executeCommand(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected error without --overwrite")
	}
	if _, err := executeCommand(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite failed: %v", err)
	}
}

func TestConfigValidateUsesExplicitFile(t *testing.T) {
	base := t.TempDir()
	configPath := writeTestConfig(t, base)

	out, err := executeCommand(t, "--config", configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate failed: %v", err)
	}
	if !strings.Contains(out, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", out)
	}
	if !strings.Contains(out, configPath) {
		t.Fatalf("expected resolved path in output: %q", out)
	}
}
