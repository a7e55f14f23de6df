package config

import "errors"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed into
	// the config struct, e.g. a required variable is missing.
	ErrParsingConfig = errors.New("config: failed to parse environment")

	// ErrNilPointer is returned when Load is given a nil destination.
	ErrNilPointer = errors.New("config: nil config pointer")
)
