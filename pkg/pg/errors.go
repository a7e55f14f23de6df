package pg

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrConnectFailed     = errors.New("pg: failed to open connection")
	ErrParseConfig       = errors.New("pg: failed to parse connection config")
	ErrHealthcheckFailed = errors.New("pg: healthcheck failed")
	ErrMigrationFailed   = errors.New("pg: failed to apply migrations")
)

// IsNotFoundError reports whether a query came back empty.
func IsNotFoundError(err error) bool {
	return err != nil && errors.Is(err, pgx.ErrNoRows)
}

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE
// 23505), the signal the permalink stores translate into a value conflict.
func IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
