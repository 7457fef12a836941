package config

import "runtime"

const (
	defaultResultsDir = "~/.local/share/bssurvey/results"
	defaultOutputDir  = "~/.local/share/bssurvey/output"
	defaultLogDir     = "~/.local/share/bssurvey/logs"
	defaultTmpDir     = "~/.local/share/bssurvey/tmp"
	defaultStateDir   = "~/.local/share/bssurvey/state"

	defaultJavaBin = "java"
	// 27 minutes, sized to the slowest analyzer runs observed in practice.
	defaultTimeoutSeconds = 27 * 60

	defaultMetadataBaseURL        = "https://api.scratch.mit.edu"
	defaultMetadataTimeoutSeconds = 10
	defaultMetadataMaxAttempts    = 5
	defaultMetadataBackoffMillis  = 750
	defaultMetadataRatePerSecond  = 4.0
	defaultMetadataMaxWorkers     = 8

	defaultStrategy    = StrategyPerItem
	defaultShardPrefix = "litter_results"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ResultsDir: defaultResultsDir,
			OutputDir:  defaultOutputDir,
			LogDir:     defaultLogDir,
			TmpDir:     defaultTmpDir,
			StateDir:   defaultStateDir,
		},
		Litterbox: Litterbox{
			JavaBin:        defaultJavaBin,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Metadata: Metadata{
			BaseURL:           defaultMetadataBaseURL,
			TimeoutSeconds:    defaultMetadataTimeoutSeconds,
			MaxAttempts:       defaultMetadataMaxAttempts,
			BackoffBaseMillis: defaultMetadataBackoffMillis,
			RequestsPerSecond: defaultMetadataRatePerSecond,
			MaxWorkers:        defaultMetadataMaxWorkers,
		},
		Run: Run{
			Executor:    ExecutorLitterbox,
			Workers:     runtime.NumCPU(),
			Strategy:    defaultStrategy,
			ShardPrefix: defaultShardPrefix,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
		},
	}
}
