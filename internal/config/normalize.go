package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeLitterbox(); err != nil {
		return err
	}
	c.normalizeMetadata()
	c.normalizeRun()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.ResultsDir, err = expandPath(c.Paths.ResultsDir); err != nil {
		return fmt.Errorf("paths.results_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.TmpDir, err = expandPath(c.Paths.TmpDir); err != nil {
		return fmt.Errorf("paths.tmp_dir: %w", err)
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeLitterbox() error {
	if c.Litterbox.JarPath == "" {
		if value, ok := os.LookupEnv("LITTERBOX_JAR"); ok {
			c.Litterbox.JarPath = value
		}
	}
	c.Litterbox.JarPath = strings.TrimSpace(c.Litterbox.JarPath)
	if c.Litterbox.JarPath != "" {
		expanded, err := expandPath(c.Litterbox.JarPath)
		if err != nil {
			return fmt.Errorf("litterbox.jar_path: %w", err)
		}
		c.Litterbox.JarPath = expanded
	}
	c.Litterbox.JavaBin = strings.TrimSpace(c.Litterbox.JavaBin)
	if c.Litterbox.JavaBin == "" {
		c.Litterbox.JavaBin = defaultJavaBin
	}
	if c.Litterbox.TimeoutSeconds <= 0 {
		c.Litterbox.TimeoutSeconds = defaultTimeoutSeconds
	}
	return nil
}

func (c *Config) normalizeMetadata() {
	c.Metadata.BaseURL = strings.TrimSpace(strings.TrimRight(c.Metadata.BaseURL, "/"))
	if c.Metadata.BaseURL == "" {
		c.Metadata.BaseURL = defaultMetadataBaseURL
	}
	if c.Metadata.TimeoutSeconds <= 0 {
		c.Metadata.TimeoutSeconds = defaultMetadataTimeoutSeconds
	}
	if c.Metadata.MaxAttempts <= 0 {
		c.Metadata.MaxAttempts = defaultMetadataMaxAttempts
	}
	if c.Metadata.BackoffBaseMillis <= 0 {
		c.Metadata.BackoffBaseMillis = defaultMetadataBackoffMillis
	}
	if c.Metadata.RequestsPerSecond <= 0 {
		c.Metadata.RequestsPerSecond = defaultMetadataRatePerSecond
	}
}

func (c *Config) normalizeRun() {
	c.Run.Executor = strings.ToLower(strings.TrimSpace(c.Run.Executor))
	if c.Run.Executor == "" {
		c.Run.Executor = ExecutorLitterbox
	}
	c.Run.Strategy = strings.ToLower(strings.TrimSpace(c.Run.Strategy))
	if c.Run.Strategy == "" {
		c.Run.Strategy = defaultStrategy
	}
	c.Run.ShardPrefix = strings.TrimSpace(c.Run.ShardPrefix)
	if c.Run.ShardPrefix == "" {
		c.Run.ShardPrefix = defaultShardPrefix
	}
	if c.Run.Workers < 1 {
		c.Run.Workers = 1
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
