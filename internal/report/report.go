package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"bssurvey/internal/state"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailures = 1
	ExitNoItems  = 2
)

// Summary is the aggregated result of a run.
type Summary struct {
	DoneCount int
	// Failed lists still-failed identities, sorted, after reconciling
	// against the done set.
	Failed        []string
	LastProcessed string
	// Dual lists identities recorded in both sets; reported as done but
	// surfaced so operators can spot the stale failed entries.
	Dual []string
}

// Paths names the state files shown alongside the summary.
type Paths struct {
	Done          string
	Failed        string
	LastProcessed string
}

// Build reduces a state snapshot to a summary.
func Build(snap state.Snapshot) Summary {
	summary := Summary{
		DoneCount:     len(snap.Done),
		LastProcessed: snap.LastProcessed,
	}
	for project := range snap.Failed {
		if _, done := snap.Done[project]; done {
			summary.Dual = append(summary.Dual, project)
			continue
		}
		summary.Failed = append(summary.Failed, project)
	}
	sort.Strings(summary.Failed)
	sort.Strings(summary.Dual)
	return summary
}

// ExitCode maps the summary to the process exit status.
func (s Summary) ExitCode() int {
	if len(s.Failed) > 0 {
		return ExitFailures
	}
	return ExitOK
}

// Render writes the summary to w, as a table when pretty is set and as
// plain lines otherwise. Every still-failed identity is listed either way.
func Render(w io.Writer, s Summary, paths Paths, pretty bool) {
	if pretty {
		renderTable(w, s, paths)
	} else {
		renderPlain(w, s, paths)
	}
	for _, project := range s.Failed {
		fmt.Fprintf(w, "failed: %s\n", project)
	}
}

func renderPlain(w io.Writer, s Summary, paths Paths) {
	fmt.Fprintf(w, "ok: %d projects (%s)\n", s.DoneCount, paths.Done)
	fmt.Fprintf(w, "failed: %d projects (%s)\n", len(s.Failed), paths.Failed)
	if s.LastProcessed != "" {
		fmt.Fprintf(w, "last processed: %s (%s)\n", s.LastProcessed, paths.LastProcessed)
	}
	if len(s.Dual) > 0 {
		fmt.Fprintf(w, "recovered after earlier failure: %d\n", len(s.Dual))
	}
}

func renderTable(w io.Writer, s Summary, paths Paths) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"", "Count", "File"})
	tw.AppendRow(table.Row{"OK", s.DoneCount, paths.Done})
	tw.AppendRow(table.Row{"Failed", len(s.Failed), paths.Failed})
	if s.LastProcessed != "" {
		tw.AppendRow(table.Row{"Last processed", s.LastProcessed, paths.LastProcessed})
	}
	if len(s.Dual) > 0 {
		tw.AppendRow(table.Row{"Recovered", len(s.Dual), ""})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	tw.Render()
}
