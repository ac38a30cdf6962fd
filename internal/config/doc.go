// Package config loads, normalizes, and validates vidconv configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDCONV_OUTPUT_DIR. The Config type centralizes every knob the CLI and the
// inbox watcher need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
