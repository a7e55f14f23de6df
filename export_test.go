package permalink

// WithClock is exported for tests that need deterministic timestamps.
var WithClock = withClock
