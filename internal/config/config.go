package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Executor names accepted by [run].executor.
const (
	ExecutorLitterbox = "litterbox"
	ExecutorMetadata  = "metadata"
)

// Dispatch strategy names accepted by [run].strategy.
const (
	StrategyPerItem   = "per-item"
	StrategyPerWorker = "per-worker"
)

// Paths contains directory configuration.
type Paths struct {
	// ResultsDir holds the downloaded project files the analyzer reads.
	ResultsDir string `toml:"results_dir"`
	// OutputDir receives result shards and the consolidated CSV.
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
	// TmpDir holds per-item scratch files; they are removed after each use.
	TmpDir string `toml:"tmp_dir"`
	// StateDir holds the resumable done/failed/last-processed files.
	StateDir string `toml:"state_dir"`
}

// Litterbox contains configuration for the analyzer subprocess executor.
type Litterbox struct {
	JarPath        string `toml:"jar_path"`
	JavaBin        string `toml:"java_bin"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Metadata contains configuration for the project metadata HTTP executor.
type Metadata struct {
	BaseURL           string  `toml:"base_url"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	MaxAttempts       int     `toml:"max_attempts"`
	BackoffBaseMillis int     `toml:"backoff_base_ms"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	// MaxWorkers caps concurrency for the network variant regardless of
	// [run].workers, as a courtesy to the external service.
	MaxWorkers int `toml:"max_workers"`
}

// Run contains scheduling configuration.
type Run struct {
	Executor    string `toml:"executor"`
	Workers     int    `toml:"workers"`
	Retries     int    `toml:"retries"`
	Strategy    string `toml:"strategy"`
	Consolidate bool   `toml:"consolidate"`
	ShardPrefix string `toml:"shard_prefix"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// History contains configuration for the run ledger.
type History struct {
	Enabled bool `toml:"enabled"`
}

// Config encapsulates all configuration values for bssurvey.
type Config struct {
	Paths     Paths     `toml:"paths"`
	Litterbox Litterbox `toml:"litterbox"`
	Metadata  Metadata  `toml:"metadata"`
	Run       Run       `toml:"run"`
	Logging   Logging   `toml:"logging"`
	History   History   `toml:"history"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/bssurvey/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. It reports the
// resolved path and whether a file actually existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("bssurvey.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates every directory a run needs.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{
		c.Paths.ResultsDir,
		c.Paths.OutputDir,
		c.Paths.LogDir,
		c.Paths.TmpDir,
		c.Paths.StateDir,
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// Timeout returns the per-item bound for the litterbox executor.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Litterbox.TimeoutSeconds) * time.Second
}

// MetadataTimeout returns the per-request bound for the metadata executor.
func (c *Config) MetadataTimeout() time.Duration {
	return time.Duration(c.Metadata.TimeoutSeconds) * time.Second
}

// MetadataBackoffBase returns the base delay for metadata retries.
func (c *Config) MetadataBackoffBase() time.Duration {
	return time.Duration(c.Metadata.BackoffBaseMillis) * time.Millisecond
}

// EffectiveWorkers returns the pool size after applying the network-variant
// courtesy cap.
func (c *Config) EffectiveWorkers() int {
	workers := c.Run.Workers
	if c.Run.Executor == ExecutorMetadata && c.Metadata.MaxWorkers > 0 && workers > c.Metadata.MaxWorkers {
		workers = c.Metadata.MaxWorkers
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if pathValue[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
