package scratchapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	base := []Option{
		WithBaseURL(server.URL),
		WithHTTPClient(server.Client()),
		WithBackoffBase(time.Millisecond),
	}
	return NewClient(time.Second, append(base, opts...)...)
}

func TestExecuteWritesHeaderAndRow(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/projects/123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"title":"  My Project "}`))
	}))

	output := filepath.Join(t.TempDir(), "titles.csv")
	outcome := client.Execute(context.Background(), items.New("123"), output)
	if !outcome.Success {
		t.Fatalf("expected success, got %+v", outcome)
	}
	if outcome.Message != "My Project" {
		t.Fatalf("expected trimmed title, got %q", outcome.Message)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if got := string(data); got != "project,title\n123,My Project\n" {
		t.Fatalf("unexpected output contents: %q", got)
	}

	// A second execution appends without a second header.
	if outcome := client.Execute(context.Background(), items.New("456"), output); !outcome.Success {
		t.Fatalf("second execute failed: %+v", outcome)
	}
	data, _ = os.ReadFile(output)
	if strings.Count(string(data), "project,title") != 1 {
		t.Fatalf("expected exactly one header, got %q", string(data))
	}
}

func TestExecuteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"title":"recovered"}`))
	}))

	outcome := client.Execute(context.Background(), items.New("9"), filepath.Join(t.TempDir(), "t.csv"))
	if !outcome.Success {
		t.Fatalf("expected eventual success, got %+v", outcome)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected 3 calls, got %d", calls.Load())
	}
}

func TestExecuteHonoursRetryAfter(t *testing.T) {
	var calls atomic.Int32
	start := time.Now()
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.2")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"title":"ok"}`))
	}))

	outcome := client.Execute(context.Background(), items.New("9"), filepath.Join(t.TempDir(), "t.csv"))
	if !outcome.Success {
		t.Fatalf("expected success after throttle, got %+v", outcome)
	}
	if elapsed := time.Since(start); elapsed < 200*time.Millisecond {
		t.Fatalf("expected Retry-After pause, elapsed %s", elapsed)
	}
}

func TestExecuteNotFoundDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))

	outcome := client.Execute(context.Background(), items.New("gone"), filepath.Join(t.TempDir(), "t.csv"))
	if outcome.Success {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if calls.Load() != 1 {
		t.Fatalf("404 must not retry, got %d calls", calls.Load())
	}
	if !strings.Contains(outcome.Message, "404") {
		t.Fatalf("expected 404 in message, got %q", outcome.Message)
	}
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}), WithMaxAttempts(3))

	outcome := client.Execute(context.Background(), items.New("9"), filepath.Join(t.TempDir(), "t.csv"))
	if outcome.Success {
		t.Fatalf("expected failure, got %+v", outcome)
	}
	if calls.Load() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", calls.Load())
	}
	if !strings.HasPrefix(outcome.Message, executor.PrefixUnexpected) {
		t.Fatalf("expected unexpected-error prefix, got %q", outcome.Message)
	}
}

func TestExecuteDryRunSkipsNetworkAndOutput(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("dry run must not reach the server")
	}), WithDryRun(true))

	output := filepath.Join(t.TempDir(), "t.csv")
	outcome := client.Execute(context.Background(), items.New("9"), output)
	if !outcome.Success || !strings.HasPrefix(outcome.Message, "dry-run: GET") {
		t.Fatalf("unexpected dry-run outcome: %+v", outcome)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Fatalf("dry run must not create output, stat err = %v", err)
	}
}
