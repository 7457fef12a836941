package executor

import (
	"context"
	"fmt"

	"bssurvey/internal/items"
)

// Outcome describes the result of executing one project.
type Outcome struct {
	Project string
	Success bool
	// Message is human-readable detail: tool output on success or a
	// classified error description. Failure messages start with one of the
	// prefixes below.
	Message string
	// ExitCode is the external process exit code when one was observed.
	ExitCode *int
}

// Failure message prefixes used to classify per-project errors. The
// scheduler does not branch on them; they exist for logs and summaries.
const (
	PrefixTimeout    = "timeout"
	PrefixNotFound   = "executable not found"
	PrefixUnexpected = "unexpected error"
)

// Executor runs one project and writes its result rows to outputCSV.
//
// Implementations must respect ctx, bound each execution by their configured
// timeout, and never return per-project failures as anything other than a
// failed Outcome.
type Executor interface {
	Execute(ctx context.Context, item items.Item, outputCSV string) Outcome
}

// Func adapts a plain function to the Executor interface, used in tests.
type Func func(ctx context.Context, item items.Item, outputCSV string) Outcome

// Execute implements Executor.
func (f Func) Execute(ctx context.Context, item items.Item, outputCSV string) Outcome {
	return f(ctx, item, outputCSV)
}

// Failure builds a failed outcome with a formatted message.
func Failure(project, format string, args ...any) Outcome {
	return Outcome{Project: project, Success: false, Message: fmt.Sprintf(format, args...)}
}

// ExitCodePtr returns a pointer suitable for Outcome.ExitCode.
func ExitCodePtr(code int) *int { return &code }
