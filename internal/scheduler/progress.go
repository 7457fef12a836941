package scheduler

import (
	"fmt"
	"os"

	"github.com/schollz/progressbar/v3"
)

// progress wraps the attempt progress bar; the zero value is a no-op so
// non-interactive runs skip rendering entirely.
type progress struct {
	bar *progressbar.ProgressBar
}

func (s *Scheduler) newProgress(total, attempt int) progress {
	if !s.opts.ShowProgress || total == 0 {
		return progress{}
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription(fmt.Sprintf("attempt %d/%d", attempt, s.maxAttempts())),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	return progress{bar: bar}
}

func (p progress) add(n int) {
	if p.bar != nil {
		_ = p.bar.Add(n)
	}
}

func (p progress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
