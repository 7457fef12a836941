package scratchapi

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

const (
	defaultBaseURL     = "https://api.scratch.mit.edu"
	defaultMaxAttempts = 5
	defaultBackoffBase = 750 * time.Millisecond
)

var outputHeader = []string{"project", "title"}

// Option configures the metadata client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithMaxAttempts bounds retries within one execution.
func WithMaxAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.maxAttempts = attempts
		}
	}
}

// WithBackoffBase sets the base delay for exponential backoff.
func WithBackoffBase(base time.Duration) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoffBase = base
		}
	}
}

// WithRateLimit paces requests across all workers at the given
// requests-per-second budget. Zero disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(c *Client) {
		if perSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithDryRun reports the request that would be issued without touching the
// network or the output CSV.
func WithDryRun(enabled bool) Option {
	return func(c *Client) { c.dryRun = enabled }
}

// Client fetches project titles from the metadata API.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	timeout     time.Duration
	maxAttempts int
	backoffBase time.Duration
	limiter     *rate.Limiter
	dryRun      bool
}

// NewClient constructs the HTTP adapter with a per-request timeout.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		httpClient:  &http.Client{},
		timeout:     timeout,
		maxAttempts: defaultMaxAttempts,
		backoffBase: defaultBackoffBase,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute fetches metadata for one project and appends a row to outputCSV.
func (c *Client) Execute(ctx context.Context, item items.Item, outputCSV string) executor.Outcome {
	url := fmt.Sprintf("%s/projects/%s", c.baseURL, item.Project)

	if c.dryRun {
		return executor.Outcome{
			Project:  item.Project,
			Success:  true,
			Message:  "dry-run: GET " + url,
			ExitCode: executor.ExitCodePtr(0),
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return executor.Failure(item.Project, "%s: %v", executor.PrefixUnexpected, err)
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		title, retryAfter, err := c.fetchTitle(ctx, url)
		if err == nil {
			if writeErr := appendResultRow(outputCSV, item.Project, title); writeErr != nil {
				return executor.Failure(item.Project, "%s: write result row: %v", executor.PrefixUnexpected, writeErr)
			}
			return executor.Outcome{Project: item.Project, Success: true, Message: title, ExitCode: executor.ExitCodePtr(0)}
		}
		if errors.Is(err, errNotFound) {
			return executor.Failure(item.Project, "%s: project not found (404)", executor.PrefixUnexpected)
		}
		lastErr = err
		if attempt == c.maxAttempts {
			break
		}
		if err := sleepContext(ctx, c.retryDelay(attempt, retryAfter)); err != nil {
			return executor.Failure(item.Project, "%s: %v", executor.PrefixUnexpected, err)
		}
	}

	prefix := executor.PrefixUnexpected
	if errors.Is(lastErr, context.DeadlineExceeded) {
		prefix = executor.PrefixTimeout
	}
	return executor.Failure(item.Project, "%s: %v", prefix, lastErr)
}

var (
	errNotFound  = errors.New("project not found")
	errThrottled = errors.New("throttled")
)

// fetchTitle performs a single request. A non-zero retryAfter carries the
// server's 429 Retry-After value.
func (c *Client) fetchTitle(ctx context.Context, url string) (string, time.Duration, error) {
	reqCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return "", 0, errNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", parseRetryAfter(resp.Header.Get("Retry-After")), errThrottled
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("decode response: %w", err)
	}
	return strings.TrimSpace(payload.Title), 0, nil
}

func (c *Client) retryDelay(attempt int, retryAfter time.Duration) time.Duration {
	if retryAfter > 0 {
		return retryAfter + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
	}
	backoff := c.backoffBase << (attempt - 1)
	return backoff + time.Duration(rand.Int63n(int64(250*time.Millisecond)))
}

func parseRetryAfter(value string) time.Duration {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// appendResultRow appends project,title to the CSV, writing the header when
// the file is new or empty. The write is flushed before returning so a
// crash cannot lose an acknowledged row.
func appendResultRow(path, project, title string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(outputHeader); err != nil {
			return err
		}
	}
	if err := writer.Write([]string{project, title}); err != nil {
		return err
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}
	return file.Sync()
}

var _ executor.Executor = (*Client)(nil)
