package postgres

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/permalink"
)

func TestBuildSelect(t *testing.T) {
	ref := permalink.Ref{Type: "asset", ID: uuid.New()}

	t.Run("empty query selects everything", func(t *testing.T) {
		sql, args := buildSelect(permalink.Query{})
		assert.Equal(t, "SELECT "+columns+" FROM permalinks", sql)
		assert.Empty(t, args)
	})

	t.Run("linkable with ordering and limit", func(t *testing.T) {
		sql, args := buildSelect(permalink.ForLinkable(ref).OrderBy(permalink.NewestFirst).WithLimit(1))
		assert.Equal(t,
			"SELECT "+columns+" FROM permalinks WHERE linkable_type = $1 AND linkable_id = $2 ORDER BY updated_at DESC LIMIT $3",
			sql)
		assert.Equal(t, []any{ref.Type, ref.ID, 1}, args)
	})

	t.Run("patterns are ORed", func(t *testing.T) {
		sql, args := buildSelect(permalink.Query{
			ValuePatterns: []string{permalink.ValuePattern("hey-joe"), permalink.ValuePattern("beautiful-day")},
		})
		assert.Contains(t, sql, "(value ~ $1 OR value ~ $2)")
		assert.Len(t, args, 2)
	})

	t.Run("value set uses ANY", func(t *testing.T) {
		sql, _ := buildSelect(permalink.Query{Values: []string{"music", "something"}})
		assert.Contains(t, sql, "value = ANY($1)")
	})

	t.Run("nil scope is not filtered, empty scope is", func(t *testing.T) {
		sql, _ := buildSelect(permalink.Query{})
		assert.NotContains(t, sql, "scope")

		sql, args := buildSelect(permalink.Query{Scope: permalink.Scope{}})
		assert.Contains(t, sql, "scope = $1")
		assert.Equal(t, []any{[]string{}}, args)
	})

	t.Run("currency and exclusion", func(t *testing.T) {
		id := uuid.New()
		sql, args := buildSelect(permalink.ForLinkable(ref).OnlyCurrent().Excluding(id))
		assert.Contains(t, sql, "is_current")
		assert.Contains(t, sql, "id <> $3")
		assert.Equal(t, []any{ref.Type, ref.ID, id}, args)
	})
}

func TestRowRoundTrip(t *testing.T) {
	r := row{
		ID:           uuid.New(),
		Value:        "hey-joe",
		Scope:        []string{"realm:rugby"},
		LinkableType: "asset",
		LinkableID:   uuid.New(),
		IsCurrent:    true,
	}

	p := r.toPermalink()
	require.NotNil(t, p)
	assert.Equal(t, r.ID, p.ID)
	assert.Equal(t, permalink.Scope{"realm:rugby"}, p.Scope)
	assert.True(t, p.Current)
	assert.False(t, p.IsNew())
}

func TestRowNilScopeNormalized(t *testing.T) {
	p := row{ID: uuid.New(), Value: "hey-joe"}.toPermalink()
	assert.NotNil(t, p.Scope)
	assert.True(t, p.Scope.Equal(permalink.Scope{}))
}
