// Package logger builds configured slog.Logger instances.
//
// It standardizes how the module's operational surfaces log: JSON by
// default for aggregation, text for development, with static attributes
// for the component name. The registry accepts any *slog.Logger via
// permalink.WithLogger; this package just makes constructing one terse.
package logger
