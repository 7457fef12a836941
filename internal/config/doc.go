// Package config loads, normalizes, and validates bssurvey configuration.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// LITTERBOX_JAR. The Config type centralizes every knob the CLI needs so
// directories, executor parameters, and scheduling limits are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical enum values, and clear validation errors.
package config
