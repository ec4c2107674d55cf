package sdk_test

import (
	"context"
	"testing"

	"github.com/intraboard/board/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	identity *sdk.Identity
	menus    []sdk.MenuNode
	clears   int
}

func (c *memoryCache) LoadIdentity() (*sdk.Identity, error) { return c.identity, nil }
func (c *memoryCache) SaveIdentity(identity sdk.Identity) error {
	c.identity = &identity
	return nil
}
func (c *memoryCache) LoadMenus() ([]sdk.MenuNode, error) { return c.menus, nil }
func (c *memoryCache) SaveMenus(menus []sdk.MenuNode) error {
	c.menus = menus
	return nil
}
func (c *memoryCache) ClearSession() error {
	c.identity, c.menus = nil, nil
	c.clears++
	return nil
}

func TestSessionContext_Lifecycle(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{
		role: sdk.RoleUser,
		menus: []sdk.MenuNode{
			{ID: 1, Path: sdk.CategoryPath, SortOrder: 1},
			{ID: 2, Path: "/a", ParentID: ptr(int64(1))},
		},
	}
	cache := &memoryCache{}
	client := sdk.NewClient(backend.server(t).URL)
	session := sdk.NewSessionContext(client, cache)

	_, err := session.Identity(ctx, false)
	assert.ErrorIs(t, err, sdk.ErrNotAuthenticated)

	cache.menus = []sdk.MenuNode{{ID: 77, Path: "/stale"}}
	me, err := session.Login(ctx, sdk.LoginInput{Username: "kim", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "kim", me.Username)
	require.NotNil(t, cache.identity)
	assert.Nil(t, cache.menus, "login discards menus cached by an earlier session")

	tree, err := session.MenuTree(ctx, false)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 1)
	assert.Equal(t, []int64{2}, menuIDs(tree.Categories[0].Children))

	_, err = session.MenuTree(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, int32(1), backend.menuCalls.Load(), "menus are cached")
	assert.Equal(t, int32(1), backend.meCalls.Load(), "identity is cached")

	_, err = session.Menus(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, int32(2), backend.menuCalls.Load())

	require.NoError(t, session.Logout(ctx))
	assert.Nil(t, cache.identity)
	assert.Nil(t, cache.menus)

	_, err = session.Identity(ctx, false)
	assert.ErrorIs(t, err, sdk.ErrNotAuthenticated)
}

func TestSessionContext_RestoresFromDurableCache(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{role: sdk.RoleAdmin}
	cache := &memoryCache{
		identity: &sdk.Identity{ID: 1, Username: "kim", Role: sdk.RoleAdmin},
		menus:    []sdk.MenuNode{{ID: 5, Path: sdk.CategoryPath}},
	}
	session := sdk.NewSessionContext(sdk.NewClient(backend.server(t).URL), cache)

	tree, err := session.MenuTree(ctx, false)
	require.NoError(t, err)
	require.Len(t, tree.Categories, 1, "admin sees empty categories")
	assert.Equal(t, int32(0), backend.meCalls.Load())
	assert.Equal(t, int32(0), backend.menuCalls.Load())
}

func TestSessionContext_SessionEndTearsDown(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{role: sdk.RoleUser}
	store := sdk.NewMemoryTokenStore()
	// A stale token with no refresh token cannot be renewed.
	require.NoError(t, store.Set(ctx, "expired", ""))
	cache := &memoryCache{identity: &sdk.Identity{ID: 1, Username: "kim"}}
	session := sdk.NewSessionContext(sdk.NewClient(backend.server(t).URL, sdk.WithTokenStore(store)), cache)

	_, err := session.Identity(ctx, true)
	require.Error(t, err)
	assert.True(t, sdk.IsSessionEnded(err))
	assert.Nil(t, cache.identity)
	assert.Equal(t, 1, cache.clears)
}
