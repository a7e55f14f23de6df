// Package pg manages the PostgreSQL connection behind storage/postgres.
//
// It provides pool setup with retry, embedded-filesystem schema migrations
// via goose, a readiness probe, and error classification helpers. The
// duplicate-key helper is what lets the permalink store map a unique index
// violation to a value conflict without parsing error strings.
package pg
