// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"bssurvey/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.ResultsDir = filepath.Join(base, "results")
	cfgVal.Paths.OutputDir = filepath.Join(base, "output")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.TmpDir = filepath.Join(base, "tmp")
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Litterbox.JarPath = filepath.Join(base, "litterbox.jar")
	cfgVal.Run.Workers = 2
	cfgVal.History.Enabled = false

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithExecutor sets the run executor on the test config.
func WithExecutor(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Executor = name
	}
}

// WithStrategy sets the dispatch strategy on the test config.
func WithStrategy(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Strategy = name
	}
}

// WithRetries sets the retry budget on the test config.
func WithRetries(n int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Run.Retries = n
	}
}

// WithHistory enables the run ledger on the test config.
func WithHistory() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.History.Enabled = true
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

// WriteCSV writes an item list CSV under the config base directory and
// returns its path.
func WriteCSV(t testing.TB, cfg *config.Config, body string) string {
	t.Helper()

	path := filepath.Join(BaseDir(cfg), "projects.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write csv %s: %v", path, err)
	}
	return path
}
