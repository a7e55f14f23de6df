package permalink_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/permalink"
)

func TestDispatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	category := permalink.Ref{Type: "category", ID: uuid.New()}
	asset := permalink.Ref{Type: "asset", ID: uuid.New()}

	_, err := svc.Create(ctx, category, "Music")
	require.NoError(t, err)
	oldAsset, err := svc.Create(ctx, asset, "Hey Joe!")
	require.NoError(t, err)
	curAsset, err := svc.Create(ctx, asset, "Something Pretty")
	require.NoError(t, err)

	t.Run("relative path rejected", func(t *testing.T) {
		_, err := svc.Dispatch(ctx, "music")
		assert.ErrorIs(t, err, permalink.ErrPathNotAbsolute)
	})

	t.Run("single current segment", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/something-pretty")
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.False(t, d.Redirect)
		require.Len(t, d.Objects, 1)
		assert.Equal(t, curAsset.ID, d.Objects[0].ID)
	})

	t.Run("multi segment keeps order", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/music/something-pretty")
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.False(t, d.Redirect)
		require.Len(t, d.Objects, 2)
		assert.Equal(t, category, d.Objects[0].Linkable)
		assert.Equal(t, asset, d.Objects[1].Linkable)
	})

	t.Run("reversed segments keep reversed order", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/something-pretty/music")
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.False(t, d.Redirect)
		require.Len(t, d.Objects, 2)
		assert.Equal(t, asset, d.Objects[0].Linkable)
		assert.Equal(t, category, d.Objects[1].Linkable)
	})

	t.Run("stale segment triggers redirect", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/music/"+oldAsset.Value)
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.True(t, d.Redirect)
		assert.Equal(t, "/music/something-pretty", d.RedirectPath)
	})

	t.Run("unresolvable segment", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/music/unknown")
		require.NoError(t, err)
		assert.False(t, d.Found)
		assert.False(t, d.Redirect)
		require.Len(t, d.Objects, 2)
		assert.NotNil(t, d.Objects[0])
		assert.Nil(t, d.Objects[1])
	})

	t.Run("query string and extension stripped", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/music/something-pretty.html?page=2")
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.Equal(t, []string{"music", "something-pretty"}, d.Parts)
	})

	t.Run("root path resolves to nothing", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/")
		require.NoError(t, err)
		assert.True(t, d.Found)
		assert.Empty(t, d.Parts)
		assert.Empty(t, d.Objects)
	})
}

func TestDispatchClaimsOneSlotPerLinkable(t *testing.T) {
	ctx := context.Background()

	// Both segments belong to the same linkable; the leftmost segment
	// claims it, the other stays unresolved. Repeated against fresh
	// stores because the outcome must not depend on result order.
	for range 20 {
		svc, _ := newTestService(t)
		asset := assetRef()

		pretty, err := svc.Create(ctx, asset, "Pretty")
		require.NoError(t, err)
		cur, err := svc.Create(ctx, asset, "New")
		require.NoError(t, err)

		d, err := svc.Dispatch(ctx, "/"+pretty.Value+"/"+cur.Value)
		require.NoError(t, err)
		assert.False(t, d.Found)
		require.Len(t, d.Objects, 2)
		require.NotNil(t, d.Objects[0], "leftmost segment must win the claim")
		assert.Equal(t, pretty.ID, d.Objects[0].ID)
		assert.Nil(t, d.Objects[1])
	}
}

func TestDispatchScoped(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	scope := permalink.NewScope(map[string]string{"realm": "rugby"})

	scoped, err := svc.Create(ctx, assetRef(), "Hey Joe!", permalink.InScope(scope))
	require.NoError(t, err)
	_, err = svc.Create(ctx, assetRef(), "Hey Joe!")
	require.NoError(t, err)

	t.Run("scope restricts the match", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/hey-joe", permalink.DispatchScope(scope))
		require.NoError(t, err)
		require.True(t, d.Found)
		assert.Equal(t, scoped.ID, d.Objects[0].ID)
	})

	t.Run("foreign scope resolves nothing", func(t *testing.T) {
		d, err := svc.Dispatch(ctx, "/hey-joe", permalink.DispatchScope(permalink.NewScope(map[string]string{"realm": "hockey"})))
		require.NoError(t, err)
		assert.False(t, d.Found)
	})
}

func TestDispatchRedirectWithoutCurrent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t)
	asset := assetRef()

	stale, err := svc.Create(ctx, asset, "Hey Joe!")
	require.NoError(t, err)
	cur, err := svc.Create(ctx, asset, "Something")
	require.NoError(t, err)

	// Strip the current flag directly so the linkable has history but no
	// current entry left.
	demoted := reload(t, svc, asset, cur.Value)
	demoted.Current = false
	require.NoError(t, store.Update(ctx, demoted))

	d, err := svc.Dispatch(ctx, "/"+stale.Value)
	require.NoError(t, err)
	require.True(t, d.Found)
	assert.True(t, d.Redirect)
	assert.Equal(t, "/"+stale.Value, d.RedirectPath, "requested value is kept when no current entry exists")
}
