package menu

import (
	"slices"
	"testing"

	"github.com/intraboard/board/cmd/boardctl/internal/localstate"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrders(t *testing.T) {
	orders, err := parseOrders([]string{"3=0", " 2 = 1 ", "5=-1"})
	require.NoError(t, err)
	assert.Equal(t, []sdk.MenuOrder{{ID: 3, SortOrder: 0}, {ID: 2, SortOrder: 1}, {ID: 5, SortOrder: -1}}, orders)

	for _, bad := range [][]string{{"3"}, {"x=1"}, {"0=1"}, {"3=first"}, {"3=1", "3=2"}} {
		_, err := parseOrders(bad)
		assert.Error(t, err, "%v", bad)
	}
}

func TestBuildTree(t *testing.T) {
	parent := int64(1)
	tree := sdk.ResolveMenuTree([]sdk.MenuNode{
		{ID: 1, Name: "Work", Path: sdk.CategoryPath, SortOrder: 2},
		{ID: 2, Name: "Notices", Path: "/notices", ParentID: &parent},
		{ID: 3, Name: "Home", Path: "/home", SortOrder: 1},
	}, sdk.RoleUser)

	root := buildTree(tree, localstate.Prefs{})
	require.Len(t, root.Children, 3)
	assert.Contains(t, root.Children[0].Text, "Dashboard")
	assert.Contains(t, root.Children[1].Text, "Home")
	assert.Equal(t, "Work", root.Children[2].Text)
	require.Len(t, root.Children[2].Children, 1)

	collapsed := buildTree(tree, localstate.Prefs{CollapsedCategories: []int64{1}})
	assert.Contains(t, collapsed.Children[2].Text, "collapsed")
	assert.Empty(t, collapsed.Children[2].Children)
}

func TestMenuKind(t *testing.T) {
	assert.Equal(t, "category", menuKind(sdk.MenuNode{Path: sdk.CategoryPath}))
	assert.Equal(t, "menu", menuKind(sdk.MenuNode{Path: "/x"}))
	assert.Equal(t, "hidden", menuKind(sdk.MenuNode{Path: "x"}))
	assert.Equal(t, "-", formatParent(nil))
}

func TestMenuInput(t *testing.T) {
	set := func(name, path string, category bool, parent int64, inactive bool) {
		createName, createPath, createCategory = name, path, category
		createParent, createInactive = parent, inactive
		createBoard, createOrder, createIcon = 0, 0, ""
	}
	t.Cleanup(func() { set("", "", false, 0, false) })

	set("Work", "", true, 0, false)
	input, err := menuInput(false, false)
	require.NoError(t, err)
	assert.Equal(t, sdk.CategoryPath, input.Path)
	assert.True(t, input.IsActive)
	assert.Nil(t, input.ParentID)

	set("Notices", "/notices", false, 4, true)
	input, err = menuInput(true, false)
	require.NoError(t, err)
	require.NotNil(t, input.ParentID)
	assert.Equal(t, int64(4), *input.ParentID)
	assert.Nil(t, input.BoardID)
	assert.False(t, input.IsActive)

	set("Work", "", true, 1, false)
	_, err = menuInput(true, false)
	assert.Error(t, err, "categories have no parent")

	set("Work", "/x", true, 0, false)
	_, err = menuInput(false, false)
	assert.Error(t, err, "category with a path")

	set("NoPath", "", false, 0, false)
	_, err = menuInput(false, false)
	assert.Error(t, err)

	set("", "/x", false, 0, false)
	_, err = menuInput(false, false)
	assert.Error(t, err)
}

func TestMenuPatch(t *testing.T) {
	reset := func() {
		updateName, updatePath, updateIcon = "", "", ""
		updateParent, updateBoard, updateOrder = 0, 0, 0
		updateNoParent, updateActive = false, true
	}
	changedOnly := func(names ...string) func(string) bool {
		return func(name string) bool { return slices.Contains(names, name) }
	}
	t.Cleanup(reset)

	reset()
	_, err := menuPatch(changedOnly())
	assert.Error(t, err, "no flags means nothing to update")

	reset()
	updateParent = 4
	patch, err := menuPatch(changedOnly("parent"))
	require.NoError(t, err)
	require.NotNil(t, patch.ParentID)
	assert.Equal(t, int64(4), *patch.ParentID)
	assert.Nil(t, patch.Name)
	assert.Nil(t, patch.IsActive)

	reset()
	updateNoParent, updateActive = true, false
	patch, err = menuPatch(changedOnly("active"))
	require.NoError(t, err)
	assert.True(t, patch.ClearParent)
	require.NotNil(t, patch.IsActive)
	assert.False(t, *patch.IsActive)

	reset()
	updateParent, updateNoParent = 4, true
	_, err = menuPatch(changedOnly("parent"))
	assert.Error(t, err)

	reset()
	updatePath = "boards/x"
	_, err = menuPatch(changedOnly("path"))
	assert.Error(t, err)

	reset()
	updatePath = " " + sdk.CategoryPath + " "
	patch, err = menuPatch(changedOnly("path"))
	require.NoError(t, err)
	assert.Equal(t, sdk.CategoryPath, *patch.Path)
}
