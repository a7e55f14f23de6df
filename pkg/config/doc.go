// Package config loads environment-driven configuration structs.
//
// Configuration is declared as struct fields with `env` tags and loaded via
// Load or MustLoad. A .env file, when present, seeds the environment for
// local development. Loaded configs are cached per type, so packages can
// load their own config independently without re-reading the environment.
//
// The storage and connection packages of this module declare their Config
// structs in this style; see pkg/pg, pkg/mongodb and pkg/redis.
package config
