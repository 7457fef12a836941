// Package logging assembles the structured slog loggers used across
// bssurvey.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and writes a per-run log file alongside terminal output so a
// long batch leaves a durable record. Prefer these constructors over
// hand-rolled slog setup so every component emits lines with the same
// shape.
package logging
