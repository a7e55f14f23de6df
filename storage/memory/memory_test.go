package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/permalink"
	"github.com/dmitrymomot/permalink/storage/memory"
)

func entry(value string, ref permalink.Ref, scope permalink.Scope, current bool, updatedAt time.Time) *permalink.Permalink {
	return &permalink.Permalink{
		ID:        uuid.New(),
		Value:     value,
		Scope:     permalink.NormalizeScope(scope),
		Linkable:  ref,
		Current:   current,
		CreatedAt: updatedAt,
		UpdatedAt: updatedAt,
	}
}

func TestInsertUniqueness(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ref := permalink.Ref{Type: "asset", ID: uuid.New()}
	now := time.Now()

	require.NoError(t, store.Insert(ctx, entry("hey-joe", ref, nil, true, now)))

	t.Run("same value same scope rejected", func(t *testing.T) {
		err := store.Insert(ctx, entry("hey-joe", ref, nil, true, now))
		assert.ErrorIs(t, err, permalink.ErrDuplicateValue)
	})

	t.Run("same value different scope allowed", func(t *testing.T) {
		scoped := entry("hey-joe", ref, permalink.NewScope(map[string]string{"realm": "rugby"}), true, now)
		assert.NoError(t, store.Insert(ctx, scoped))
	})
}

func TestUpdateAndDeleteUnknown(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	unknown := entry("ghost", permalink.Ref{Type: "asset", ID: uuid.New()}, nil, true, time.Now())

	assert.ErrorIs(t, store.Update(ctx, unknown), permalink.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, unknown), permalink.ErrNotFound)
}

func TestFindFilters(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	asset := permalink.Ref{Type: "asset", ID: uuid.New()}
	category := permalink.Ref{Type: "category", ID: uuid.New()}
	base := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)

	old := entry("hey-joe", asset, nil, false, base)
	mid := entry("hey-joe-2", asset, nil, false, base.Add(time.Hour))
	cur := entry("something", asset, nil, true, base.Add(2*time.Hour))
	other := entry("else", category, nil, true, base)
	for _, e := range []*permalink.Permalink{old, mid, cur, other} {
		require.NoError(t, store.Insert(ctx, e))
	}

	t.Run("by linkable", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.ForLinkable(asset))
		require.NoError(t, err)
		assert.Len(t, got, 3)
	})

	t.Run("by pattern includes numbered variants", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.Query{ValuePatterns: []string{permalink.ValuePattern("hey-joe")}})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("by value set", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.Query{Values: []string{"something", "else"}})
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("current only", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.ForLinkable(asset).OnlyCurrent())
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "something", got[0].Value)
	})

	t.Run("excluding id", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.ForLinkable(asset).Excluding(cur.ID))
		require.NoError(t, err)
		assert.Len(t, got, 2)
	})

	t.Run("newest first with limit", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.ForLinkable(asset).OrderBy(permalink.NewestFirst).WithLimit(1))
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "something", got[0].Value)
	})

	t.Run("oldest first", func(t *testing.T) {
		got, err := store.Find(ctx, permalink.ForLinkable(asset).OrderBy(permalink.OldestFirst))
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "hey-joe", got[0].Value)
	})

	t.Run("find one not found", func(t *testing.T) {
		_, err := store.FindOne(ctx, permalink.Query{Value: "missing"})
		assert.ErrorIs(t, err, permalink.ErrNotFound)
	})
}

func TestUnsetCurrentScoped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ref := permalink.Ref{Type: "asset", ID: uuid.New()}
	scope := permalink.NewScope(map[string]string{"realm": "rugby"})
	now := time.Now()

	unscoped := entry("hey-joe", ref, nil, true, now)
	scoped := entry("hey-joe", ref, scope, true, now)
	promoted := entry("something", ref, nil, true, now)
	for _, e := range []*permalink.Permalink{unscoped, scoped, promoted} {
		require.NoError(t, store.Insert(ctx, e))
	}

	require.NoError(t, store.UnsetCurrent(ctx, ref, nil, promoted.ID))

	got, err := store.FindOne(ctx, permalink.Query{Value: "hey-joe", Scope: permalink.Scope{}})
	require.NoError(t, err)
	assert.False(t, got.Current, "unscoped sibling must be demoted")

	got, err = store.FindOne(ctx, permalink.Query{Value: "hey-joe", Scope: scope})
	require.NoError(t, err)
	assert.True(t, got.Current, "entry in a different scope must stay current")
}

func TestCloneIsolation(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	ref := permalink.Ref{Type: "asset", ID: uuid.New()}

	e := entry("hey-joe", ref, nil, true, time.Now())
	require.NoError(t, store.Insert(ctx, e))

	got, err := store.FindOne(ctx, permalink.Query{Value: "hey-joe"})
	require.NoError(t, err)
	got.Value = "mutated"

	again, err := store.FindOne(ctx, permalink.Query{Value: "hey-joe"})
	require.NoError(t, err)
	assert.Equal(t, "hey-joe", again.Value)
	assert.False(t, again.IsNew(), "loaded entries must not look new")
}
