package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateRun(); err != nil {
		return err
	}
	if err := c.validateLitterbox(); err != nil {
		return err
	}
	if err := c.validateMetadata(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRun() error {
	switch c.Run.Executor {
	case ExecutorLitterbox, ExecutorMetadata:
	default:
		return fmt.Errorf("run.executor must be %q or %q", ExecutorLitterbox, ExecutorMetadata)
	}
	switch c.Run.Strategy {
	case StrategyPerItem, StrategyPerWorker:
	default:
		return fmt.Errorf("run.strategy must be %q or %q", StrategyPerItem, StrategyPerWorker)
	}
	if c.Run.Workers < 1 {
		return errors.New("run.workers must be at least 1")
	}
	if c.Run.Retries < 0 {
		return errors.New("run.retries must not be negative")
	}
	return nil
}

func (c *Config) validateLitterbox() error {
	if c.Run.Executor != ExecutorLitterbox {
		return nil
	}
	if c.Litterbox.JarPath == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/bssurvey/config.toml"
		}
		return fmt.Errorf("litterbox.jar_path is required. Set LITTERBOX_JAR env var or edit %s (create with 'bssurvey config init')", defaultPath)
	}
	if c.Litterbox.TimeoutSeconds <= 0 {
		return errors.New("litterbox.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateMetadata() error {
	if c.Metadata.TimeoutSeconds <= 0 {
		return errors.New("metadata.timeout_seconds must be positive")
	}
	if c.Metadata.MaxAttempts < 1 {
		return errors.New("metadata.max_attempts must be at least 1")
	}
	if c.Metadata.BackoffBaseMillis <= 0 {
		return errors.New("metadata.backoff_base_ms must be positive")
	}
	if c.Metadata.RequestsPerSecond <= 0 {
		return errors.New("metadata.requests_per_second must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be \"console\" or \"json\"")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be one of debug, info, warn, error")
	}
	return nil
}
