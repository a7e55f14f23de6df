package mongodb

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/dmitrymomot/permalink"
)

func TestScopeFlattening(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		scope := permalink.NewScope(map[string]string{"realm": "rugby", "lang": "en"})
		assert.Equal(t, scope, splitScope(joinScope(scope)))
	})

	t.Run("unscoped", func(t *testing.T) {
		assert.Equal(t, "", joinScope(nil))
		assert.Equal(t, permalink.Scope{}, splitScope(""))
	})
}

func TestDocumentRoundTrip(t *testing.T) {
	now := time.Date(2024, 11, 4, 12, 0, 0, 0, time.UTC)
	p := &permalink.Permalink{
		ID:        uuid.New(),
		Value:     "hey-joe",
		Scope:     permalink.NewScope(map[string]string{"realm": "rugby"}),
		Linkable:  permalink.Ref{Type: "asset", ID: uuid.New()},
		Current:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	got, err := toDocument(p).toPermalink()
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.Value, got.Value)
	assert.Equal(t, p.Scope, got.Scope)
	assert.Equal(t, p.Linkable, got.Linkable)
	assert.True(t, got.Current)
	assert.False(t, got.IsNew(), "loaded entries must not look new")
}

func TestFilterFor(t *testing.T) {
	ref := permalink.Ref{Type: "asset", ID: uuid.New()}

	t.Run("empty query matches everything", func(t *testing.T) {
		assert.Empty(t, filterFor(permalink.Query{}))
	})

	t.Run("nil scope is not filtered", func(t *testing.T) {
		filter := filterFor(permalink.ForLinkable(ref))
		for _, e := range filter {
			assert.NotEqual(t, "scope", e.Key)
		}
	})

	t.Run("empty scope matches unscoped entries", func(t *testing.T) {
		filter := filterFor(permalink.Query{Scope: permalink.Scope{}})
		require.Len(t, filter, 1)
		assert.Equal(t, bson.E{Key: "scope", Value: ""}, filter[0])
	})

	t.Run("patterns become a regex disjunction", func(t *testing.T) {
		filter := filterFor(permalink.Query{ValuePatterns: []string{permalink.ValuePattern("hey-joe")}})
		require.Len(t, filter, 1)
		assert.Equal(t, "$or", filter[0].Key)
	})

	t.Run("exclusion and currency", func(t *testing.T) {
		id := uuid.New()
		filter := filterFor(permalink.ForLinkable(ref).OnlyCurrent().Excluding(id))
		keys := make([]string, 0, len(filter))
		for _, e := range filter {
			keys = append(keys, e.Key)
		}
		assert.Equal(t, []string{"linkable_type", "linkable_id", "current", "_id"}, keys)
	})
}
