// Package postgres provides a PostgreSQL-backed permalink.Store.
//
// Entries live in the permalinks table with a unique index on (scope,
// value); a violation is translated into permalink.ErrDuplicateValue so the
// registry can detect concurrent writers and recompute. The schema ships as
// embedded goose migrations, applied with Migrate. pkg/pg provides the
// connection pool.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err := postgres.Migrate(ctx, pool, cfg, logger); err != nil { ... }
//	svc := permalink.NewService(postgres.New(pool))
package postgres
