package litterbox

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"bssurvey/internal/executor"
	"bssurvey/internal/items"
)

var commandContext = exec.CommandContext

// Option configures the subprocess adapter.
type Option func(*Client)

// WithJavaBinary overrides the java executable name.
func WithJavaBinary(binary string) Option {
	return func(c *Client) {
		if binary != "" {
			c.javaBin = binary
		}
	}
}

// WithDryRun reports the command that would run instead of executing it.
// The temp list-file lifecycle still happens so dry runs exercise the same
// filesystem paths as real ones.
func WithDryRun(enabled bool) Option {
	return func(c *Client) { c.dryRun = enabled }
}

// Client executes the Litterbox analyzer jar for one project per invocation.
//
// Each call writes a one-line project list file under the temp directory,
// passes it to the jar via --project-list, and removes it on every exit
// path, including timeouts and launch failures.
type Client struct {
	javaBin    string
	jarPath    string
	resultsDir string
	tmpDir     string
	timeout    time.Duration
	dryRun     bool
}

// NewClient constructs the subprocess adapter.
func NewClient(jarPath, resultsDir, tmpDir string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		javaBin:    "java",
		jarPath:    jarPath,
		resultsDir: resultsDir,
		tmpDir:     tmpDir,
		timeout:    timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Execute runs the analyzer for one project, writing its CSV to outputCSV.
func (c *Client) Execute(ctx context.Context, item items.Item, outputCSV string) executor.Outcome {
	if err := os.MkdirAll(c.tmpDir, 0o755); err != nil {
		return executor.Failure(item.Project, "%s: create temp dir: %v", executor.PrefixUnexpected, err)
	}

	listFile := filepath.Join(c.tmpDir, fmt.Sprintf("project_%s.txt", item.Token))
	if err := os.WriteFile(listFile, []byte(item.Project+"\n"), 0o644); err != nil {
		return executor.Failure(item.Project, "%s: write project list: %v", executor.PrefixUnexpected, err)
	}
	defer func() {
		_ = os.Remove(listFile)
	}()

	args := []string{
		"-jar", c.jarPath, "check",
		"--project-list", listFile,
		"--path", c.resultsDir,
		"--output", outputCSV,
	}

	if c.dryRun {
		return executor.Outcome{
			Project:  item.Project,
			Success:  true,
			Message:  fmt.Sprintf("dry-run: %s %s", c.javaBin, strings.Join(args, " ")),
			ExitCode: executor.ExitCodePtr(0),
		}
	}

	execCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := commandContext(execCtx, c.javaBin, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	message := strings.TrimSpace(string(output))

	switch {
	case err == nil:
		return executor.Outcome{Project: item.Project, Success: true, Message: message, ExitCode: executor.ExitCodePtr(0)}
	case errors.Is(execCtx.Err(), context.DeadlineExceeded):
		return executor.Failure(item.Project, "%s after %s: %v", executor.PrefixTimeout, c.timeout, err)
	case errors.Is(err, exec.ErrNotFound):
		return executor.Failure(item.Project, "%s: %v", executor.PrefixNotFound, err)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out := executor.Outcome{
				Project:  item.Project,
				Success:  false,
				Message:  message,
				ExitCode: executor.ExitCodePtr(exitErr.ExitCode()),
			}
			if out.Message == "" {
				out.Message = err.Error()
			}
			return out
		}
		return executor.Failure(item.Project, "%s: %v", executor.PrefixUnexpected, err)
	}
}

var _ executor.Executor = (*Client)(nil)
