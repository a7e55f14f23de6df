package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/permalink"
	"github.com/dmitrymomot/permalink/pkg/pg"
)

// Store is a permalink.Store backed by PostgreSQL via pgx. Value uniqueness
// per scope is enforced by a unique index on (scope, value); the schema is
// applied with Migrate.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a store on the given pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// row mirrors the permalinks table.
type row struct {
	ID           uuid.UUID `db:"id"`
	Value        string    `db:"value"`
	Scope        []string  `db:"scope"`
	LinkableType string    `db:"linkable_type"`
	LinkableID   uuid.UUID `db:"linkable_id"`
	IsCurrent    bool      `db:"is_current"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func (r row) toPermalink() *permalink.Permalink {
	p := &permalink.Permalink{
		ID:        r.ID,
		Value:     r.Value,
		Scope:     permalink.Scope(r.Scope),
		Linkable:  permalink.Ref{Type: r.LinkableType, ID: r.LinkableID},
		Current:   r.IsCurrent,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if p.Scope == nil {
		p.Scope = permalink.Scope{}
	}
	p.MarkPersisted()
	return p
}

const columns = "id, value, scope, linkable_type, linkable_id, is_current, created_at, updated_at"

// Insert persists a new entry.
func (s *Store) Insert(ctx context.Context, p *permalink.Permalink) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO permalinks (`+columns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Value, []string(permalink.NormalizeScope(p.Scope)),
		p.Linkable.Type, p.Linkable.ID, p.Current, p.CreatedAt, p.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return permalink.ErrDuplicateValue
	}
	if err != nil {
		return err
	}
	p.MarkPersisted()
	return nil
}

// Update replaces a persisted entry.
func (s *Store) Update(ctx context.Context, p *permalink.Permalink) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE permalinks
		 SET value = $2, scope = $3, linkable_type = $4, linkable_id = $5,
		     is_current = $6, created_at = $7, updated_at = $8
		 WHERE id = $1`,
		p.ID, p.Value, []string(permalink.NormalizeScope(p.Scope)),
		p.Linkable.Type, p.Linkable.ID, p.Current, p.CreatedAt, p.UpdatedAt,
	)
	if pg.IsDuplicateKeyError(err) {
		return permalink.ErrDuplicateValue
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return permalink.ErrNotFound
	}
	p.MarkPersisted()
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, p *permalink.Permalink) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM permalinks WHERE id = $1`, p.ID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return permalink.ErrNotFound
	}
	return nil
}

// Find returns all entries matching the query.
func (s *Store) Find(ctx context.Context, q permalink.Query) ([]*permalink.Permalink, error) {
	sql, args := buildSelect(q)
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}

	collected, err := pgx.CollectRows(rows, pgx.RowToStructByName[row])
	if err != nil {
		return nil, err
	}
	result := make([]*permalink.Permalink, 0, len(collected))
	for _, r := range collected {
		result = append(result, r.toPermalink())
	}
	return result, nil
}

// FindOne returns the first match or permalink.ErrNotFound.
func (s *Store) FindOne(ctx context.Context, q permalink.Query) (*permalink.Permalink, error) {
	q.Limit = 1
	result, err := s.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, permalink.ErrNotFound
	}
	return result[0], nil
}

// UnsetCurrent demotes all current entries of the linkable within the scope
// except the given one, as one statement.
func (s *Store) UnsetCurrent(ctx context.Context, ref permalink.Ref, scope permalink.Scope, exceptID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE permalinks SET is_current = FALSE
		 WHERE linkable_type = $1 AND linkable_id = $2 AND scope = $3
		   AND is_current AND id <> $4`,
		ref.Type, ref.ID, []string(permalink.NormalizeScope(scope)), exceptID,
	)
	return err
}

// buildSelect translates a query into SQL. Conditions are ANDed; value
// patterns within one query are ORed, matching the anchored expressions
// produced by permalink.ValuePattern.
func buildSelect(q permalink.Query) (string, []any) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if q.Linkable != nil {
		where = append(where, "linkable_type = "+arg(q.Linkable.Type))
		where = append(where, "linkable_id = "+arg(q.Linkable.ID))
	}
	if q.Value != "" {
		where = append(where, "value = "+arg(q.Value))
	}
	if len(q.Values) > 0 {
		where = append(where, "value = ANY("+arg(q.Values)+")")
	}
	if len(q.ValuePatterns) > 0 {
		ors := make([]string, 0, len(q.ValuePatterns))
		for _, p := range q.ValuePatterns {
			ors = append(ors, "value ~ "+arg(p))
		}
		where = append(where, "("+strings.Join(ors, " OR ")+")")
	}
	if q.Scope != nil {
		where = append(where, "scope = "+arg([]string(q.Scope)))
	}
	if q.CurrentOnly {
		where = append(where, "is_current")
	}
	if q.ExcludeID != uuid.Nil {
		where = append(where, "id <> "+arg(q.ExcludeID))
	}

	var b strings.Builder
	b.WriteString("SELECT " + columns + " FROM permalinks")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	switch q.Sort {
	case permalink.NewestFirst:
		b.WriteString(" ORDER BY updated_at DESC")
	case permalink.OldestFirst:
		b.WriteString(" ORDER BY updated_at ASC")
	}
	if q.Limit > 0 {
		b.WriteString(" LIMIT " + arg(q.Limit))
	}
	return b.String(), args
}
