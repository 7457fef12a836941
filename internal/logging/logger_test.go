package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bssurvey/internal/config"
)

func TestConsoleHandlerFormatsFlattenedAttrs(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("analyzing project",
		slog.String(FieldProject, "12345"),
		slog.Group("retry", slog.Int("attempt", 2)),
	)

	line := buf.String()
	if !strings.Contains(line, "INFO") {
		t.Fatalf("expected level label in %q", line)
	}
	if !strings.Contains(line, "analyzing project") {
		t.Fatalf("expected message in %q", line)
	}
	if !strings.Contains(line, "project=12345") {
		t.Fatalf("expected project attr in %q", line)
	}
	if !strings.Contains(line, "retry.attempt=2") {
		t.Fatalf("expected flattened group attr in %q", line)
	}
}

func TestConsoleHandlerQuotesValuesWithSpaces(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newConsoleHandler(&buf, new(slog.LevelVar)))

	logger.Warn("item failed", slog.String("message", "exit status 3"))

	if !strings.Contains(buf.String(), `message="exit status 3"`) {
		t.Fatalf("expected quoted value in %q", buf.String())
	}
}

func TestConsoleHandlerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	levelVar := new(slog.LevelVar)
	levelVar.Set(slog.LevelWarn)
	logger := slog.New(newConsoleHandler(&buf, levelVar))

	logger.Info("quiet")
	logger.Warn("loud")

	out := buf.String()
	if strings.Contains(out, "quiet") {
		t.Fatalf("info line should have been suppressed: %q", out)
	}
	if !strings.Contains(out, "loud") {
		t.Fatalf("warn line missing: %q", out)
	}
}

func TestNewJSONFormatEmitsLowercaseLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	logger, err := New(Options{Level: "debug", Format: "json", OutputPaths: []string{path}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	logger.Error("boom", slog.String(FieldProject, "42"))

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(data), &entry); err != nil {
		t.Fatalf("parse log line: %v", err)
	}
	if entry["level"] != "error" {
		t.Fatalf("unexpected level: %v", entry["level"])
	}
	if entry["msg"] != "boom" {
		t.Fatalf("unexpected msg: %v", entry["msg"])
	}
	if entry["project"] != "42" {
		t.Fatalf("unexpected project: %v", entry["project"])
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestNewFromConfigWritesPerRunFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	cfg.Logging.Format = "json"

	logger, logPath, err := NewFromConfig(&cfg, "20260830T120000")
	if err != nil {
		t.Fatalf("NewFromConfig failed: %v", err)
	}
	if filepath.Base(logPath) != "run_20260830T120000.log" {
		t.Fatalf("unexpected log path: %q", logPath)
	}
	logger.Info("started")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read per-run log: %v", err)
	}
	if !strings.Contains(string(data), "started") {
		t.Fatalf("expected log line in file, got %q", data)
	}
	if !strings.Contains(string(data), "20260830T120000") {
		t.Fatalf("expected run id attr in file, got %q", data)
	}
}
