package postgres

import (
	"context"
	"embed"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/permalink/pkg/pg"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate applies the embedded schema migrations. Run it once at startup
// before creating the store.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, migrations, "migrations", cfg, log)
}
