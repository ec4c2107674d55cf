package sdk_test

import (
	"testing"

	"github.com/intraboard/board/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func menuIDs(nodes []sdk.MenuNode) []int64 {
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	return ids
}

func TestResolveMenuTree_Hierarchy(t *testing.T) {
	menus := []sdk.MenuNode{
		{ID: 1, Name: "Work", Path: sdk.CategoryPath, SortOrder: 10},
		{ID: 2, Name: "A", Path: "/a", ParentID: ptr(int64(1)), SortOrder: 5},
		{ID: 3, Name: "B", Path: "/b", SortOrder: 1},
	}

	tree := sdk.ResolveMenuTree(menus, sdk.RoleUser)
	assert.Equal(t, []int64{3}, menuIDs(tree.Uncategorized))
	require.Len(t, tree.Categories, 1)
	assert.Equal(t, int64(1), tree.Categories[0].Category.ID)
	assert.Equal(t, []int64{2}, menuIDs(tree.Categories[0].Children))
}

func TestResolveMenuTree_EmptyCategoryVisibility(t *testing.T) {
	menus := []sdk.MenuNode{
		{ID: 1, Name: "Empty", Path: sdk.CategoryPath, SortOrder: 10},
		{ID: 3, Name: "B", Path: "/b", SortOrder: 1},
	}

	tests := []struct {
		role         sdk.Role
		wantSections int
	}{
		{role: sdk.RoleAdmin, wantSections: 1},
		{role: sdk.RoleManager, wantSections: 0},
		{role: sdk.RoleUser, wantSections: 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			tree := sdk.ResolveMenuTree(menus, tt.role)
			require.Len(t, tree.Categories, tt.wantSections)
			if tt.wantSections > 0 {
				assert.NotNil(t, tree.Categories[0].Children)
				assert.Empty(t, tree.Categories[0].Children)
			}
		})
	}
}

func TestResolveMenuTree_EdgeCases(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		tree := sdk.ResolveMenuTree(nil, sdk.RoleAdmin)
		assert.NotNil(t, tree.Uncategorized)
		assert.NotNil(t, tree.Categories)
		assert.Empty(t, tree.Uncategorized)
		assert.Empty(t, tree.Categories)
	})

	t.Run("dangling parent falls back to uncategorized", func(t *testing.T) {
		tree := sdk.ResolveMenuTree([]sdk.MenuNode{
			{ID: 2, Path: "/a", ParentID: ptr(int64(99))},
		}, sdk.RoleUser)
		assert.Equal(t, []int64{2}, menuIDs(tree.Uncategorized))
	})

	t.Run("parent pointing at a navigable item is not a category", func(t *testing.T) {
		tree := sdk.ResolveMenuTree([]sdk.MenuNode{
			{ID: 1, Path: "/x", SortOrder: 1},
			{ID: 2, Path: "/a", ParentID: ptr(int64(1)), SortOrder: 2},
		}, sdk.RoleUser)
		assert.Equal(t, []int64{1, 2}, menuIDs(tree.Uncategorized))
		assert.Empty(t, tree.Categories)
	})

	t.Run("non-navigable paths are dropped", func(t *testing.T) {
		tree := sdk.ResolveMenuTree([]sdk.MenuNode{
			{ID: 1, Path: "https://example.com"},
			{ID: 2, Path: ""},
			{ID: 3, Path: "  /trimmed  "},
		}, sdk.RoleUser)
		assert.Equal(t, []int64{3}, menuIDs(tree.Uncategorized))
	})

	t.Run("padded category sentinel is still a category", func(t *testing.T) {
		tree := sdk.ResolveMenuTree([]sdk.MenuNode{
			{ID: 1, Path: " __category__ "},
			{ID: 2, Path: "/a", ParentID: ptr(int64(1))},
		}, sdk.RoleUser)
		require.Len(t, tree.Categories, 1)
		assert.Equal(t, []int64{2}, menuIDs(tree.Categories[0].Children))
	})

	t.Run("ties break on id", func(t *testing.T) {
		tree := sdk.ResolveMenuTree([]sdk.MenuNode{
			{ID: 9, Path: "/c", SortOrder: 1},
			{ID: 4, Path: "/b", SortOrder: 1},
			{ID: 7, Path: "/a", SortOrder: 0},
		}, sdk.RoleUser)
		assert.Equal(t, []int64{7, 4, 9}, menuIDs(tree.Uncategorized))
	})

	t.Run("input is not mutated", func(t *testing.T) {
		menus := []sdk.MenuNode{{ID: 2, Path: "/b", SortOrder: 2}, {ID: 1, Path: "/a", SortOrder: 1}}
		sdk.ResolveMenuTree(menus, sdk.RoleUser)
		assert.Equal(t, []int64{2, 1}, menuIDs(menus))
	})
}

func TestMenuTree_Compact(t *testing.T) {
	menus := []sdk.MenuNode{
		{ID: 1, Path: sdk.CategoryPath, SortOrder: 0},
		{ID: 2, Path: "/a", ParentID: ptr(int64(1)), SortOrder: 3},
		{ID: 3, Path: "/b", SortOrder: 1},
		{ID: 4, Path: "/c", ParentID: ptr(int64(1)), SortOrder: 2},
	}

	compact := sdk.ResolveMenuTree(menus, sdk.RoleUser).Compact()
	assert.Equal(t, []int64{sdk.DashboardMenuID, 3, 4, 2}, menuIDs(compact))
	assert.Equal(t, "/dashboard", compact[0].Path)
	require.NotNil(t, compact[0].Icon)
	assert.Equal(t, "LayoutDashboard", *compact[0].Icon)
}

func TestFilterMenus(t *testing.T) {
	menus := []sdk.MenuNode{
		{ID: 1, Name: "Work", Path: sdk.CategoryPath, IsActive: true},
		{ID: 2, Name: "Notices", Path: "/boards/notice", ParentID: ptr(int64(1)), IsActive: true},
		{ID: 3, Name: "Archive", Path: "/archive", IsActive: false},
	}

	tests := []struct {
		name    string
		expr    string
		want    []int64
		wantErr bool
	}{
		{name: "empty keeps everything", expr: "", want: []int64{1, 2, 3}},
		{name: "categories", expr: "category == true", want: []int64{1}},
		{name: "navigable and active", expr: "navigable == true and is_active == true", want: []int64{2}},
		{name: "by parent", expr: "parent_id == 1", want: []int64{2}},
		{name: "path regex", expr: `path matches "^/boards"`, want: []int64{2}},
		{name: "invalid expression", expr: "name ===", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sdk.FilterMenus(menus, tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, menuIDs(got))
		})
	}
}

func genMenus() *rapid.Generator[[]sdk.MenuNode] {
	return rapid.Custom(func(t *rapid.T) []sdk.MenuNode {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		menus := make([]sdk.MenuNode, 0, n)
		for i := 0; i < n; i++ {
			node := sdk.MenuNode{
				ID:        int64(i + 1),
				Path:      rapid.SampledFrom([]string{sdk.CategoryPath, "/a", "/b", "ext", ""}).Draw(t, "path"),
				SortOrder: rapid.IntRange(-3, 3).Draw(t, "sort"),
			}
			if rapid.Bool().Draw(t, "hasParent") {
				parent := rapid.Int64Range(1, int64(n)+2).Draw(t, "parent")
				node.ParentID = &parent
			}
			menus = append(menus, node)
		}
		return menus
	})
}

func TestResolveMenuTree_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		menus := genMenus().Draw(t, "menus")
		role := rapid.SampledFrom([]sdk.Role{sdk.RoleAdmin, sdk.RoleManager, sdk.RoleUser}).Draw(t, "role")
		tree := sdk.ResolveMenuTree(menus, role)

		ordered := func(nodes []sdk.MenuNode) {
			for i := 1; i < len(nodes); i++ {
				a, b := nodes[i-1], nodes[i]
				if a.SortOrder > b.SortOrder || (a.SortOrder == b.SortOrder && a.ID > b.ID) {
					t.Fatalf("nodes %d and %d out of order", a.ID, b.ID)
				}
			}
		}

		seen := map[int64]bool{}
		ordered(tree.Uncategorized)
		for _, item := range tree.Uncategorized {
			if !item.IsNavigable() {
				t.Fatalf("non-navigable node %d in uncategorized", item.ID)
			}
			seen[item.ID] = true
		}

		categories := make([]sdk.MenuNode, 0, len(tree.Categories))
		for _, section := range tree.Categories {
			categories = append(categories, section.Category)
			ordered(section.Children)
			if role != sdk.RoleAdmin && len(section.Children) == 0 {
				t.Fatalf("empty category %d shown to %s", section.Category.ID, role)
			}
			for _, child := range section.Children {
				if child.ParentID == nil || *child.ParentID != section.Category.ID {
					t.Fatalf("child %d filed under wrong category", child.ID)
				}
				if seen[child.ID] {
					t.Fatalf("node %d appears twice", child.ID)
				}
				seen[child.ID] = true
			}
		}
		ordered(categories)

		navigable := 0
		for _, m := range menus {
			if m.IsNavigable() {
				navigable++
			}
		}
		if navigable != len(seen) {
			t.Fatalf("expected %d navigable nodes placed, got %d", navigable, len(seen))
		}
	})
}
