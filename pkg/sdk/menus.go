package sdk

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-bexpr"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CategoryPath is the reserved path marking a grouping node.
const CategoryPath = "__category__"

// DashboardMenuID is the id of the synthetic dashboard entry. Real menu ids start at 1.
const DashboardMenuID int64 = 0

// MenuNode is a single navigation record. ParentID is a weak reference to a
// category id; a missing or dangling reference degrades the node to uncategorized.
type MenuNode struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	Icon      *string   `json:"icon"`
	ParentID  *int64    `json:"parent_id"`
	BoardID   *int64    `json:"board_id"`
	SortOrder int       `json:"sort_order"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at,omitzero"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// IsCategory reports whether the node is a grouping pseudo-node.
func (m MenuNode) IsCategory() bool {
	return normalizeMenuPath(m.Path) == CategoryPath
}

// IsNavigable reports whether the node can be activated.
func (m MenuNode) IsNavigable() bool {
	return !m.IsCategory() && strings.HasPrefix(normalizeMenuPath(m.Path), "/")
}

// DashboardMenu returns the synthetic entry that always heads the top level.
// It has no backing record.
func DashboardMenu() MenuNode {
	icon := "LayoutDashboard"
	return MenuNode{
		ID:       DashboardMenuID,
		Name:     "Dashboard",
		Path:     "/dashboard",
		Icon:     &icon,
		IsActive: true,
	}
}

// CategorySection is a category and its navigable children in display order.
type CategorySection struct {
	Category MenuNode   `json:"category"`
	Children []MenuNode `json:"children"`
}

// MenuTree is the resolved navigation structure for one viewer.
// The dashboard entry is not included; callers prepend DashboardMenu.
type MenuTree struct {
	Uncategorized []MenuNode        `json:"uncategorized"`
	Categories    []CategorySection `json:"categories"`
}

// Compact returns the flat list used when the sidebar is collapsed: the
// dashboard followed by every navigable item in display order.
func (t MenuTree) Compact() []MenuNode {
	items := make([]MenuNode, 0, 1+len(t.Uncategorized))
	items = append(items, DashboardMenu())
	items = append(items, t.Uncategorized...)
	for _, section := range t.Categories {
		items = append(items, section.Children...)
	}
	SortMenus(items[1:])
	return items
}

// ResolveMenuTree turns flat menu records into the hierarchy shown to role.
// It is deterministic and keeps no state between calls.
func ResolveMenuTree(menus []MenuNode, role Role) MenuTree {
	sorted := append([]MenuNode(nil), menus...)
	SortMenus(sorted)

	var categories, items []MenuNode
	for _, menu := range sorted {
		switch {
		case menu.IsCategory():
			categories = append(categories, menu)
		case menu.IsNavigable():
			items = append(items, menu)
		}
	}

	categoryIndex := make(map[int64]int, len(categories))
	for i, category := range categories {
		categoryIndex[category.ID] = i
	}

	children := make([][]MenuNode, len(categories))
	tree := MenuTree{
		Uncategorized: []MenuNode{},
		Categories:    []CategorySection{},
	}
	for _, item := range items {
		if item.ParentID != nil {
			if i, ok := categoryIndex[*item.ParentID]; ok {
				children[i] = append(children[i], item)
				continue
			}
		}
		tree.Uncategorized = append(tree.Uncategorized, item)
	}

	for i, category := range categories {
		if role != RoleAdmin && len(children[i]) == 0 {
			continue
		}
		section := CategorySection{Category: category, Children: children[i]}
		if section.Children == nil {
			section.Children = []MenuNode{}
		}
		tree.Categories = append(tree.Categories, section)
	}

	return tree
}

// SortMenus orders menus in place by sort order, then id.
func SortMenus(menus []MenuNode) {
	sort.SliceStable(menus, func(i, j int) bool {
		if menus[i].SortOrder != menus[j].SortOrder {
			return menus[i].SortOrder < menus[j].SortOrder
		}
		return menus[i].ID < menus[j].ID
	})
}

func normalizeMenuPath(path string) string {
	return strings.TrimSpace(path)
}

// menuFilterView is the shape bexpr expressions are evaluated against.
type menuFilterView struct {
	ID        int64  `bexpr:"id"`
	Name      string `bexpr:"name"`
	Path      string `bexpr:"path"`
	ParentID  int64  `bexpr:"parent_id"`
	SortOrder int    `bexpr:"sort_order"`
	IsActive  bool   `bexpr:"is_active"`
	Category  bool   `bexpr:"category"`
	Navigable bool   `bexpr:"navigable"`
}

const filterCacheSize = 64

var (
	filterCacheOnce sync.Once
	filterCache     *lru.Cache[string, *bexpr.Evaluator]
)

func menuEvaluator(expr string) (*bexpr.Evaluator, error) {
	filterCacheOnce.Do(func() {
		filterCache, _ = lru.New[string, *bexpr.Evaluator](filterCacheSize)
	})
	if evaluator, ok := filterCache.Get(expr); ok {
		return evaluator, nil
	}
	evaluator, err := bexpr.CreateEvaluator(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	filterCache.Add(expr, evaluator)
	return evaluator, nil
}

// FilterMenus returns the menus matching a bexpr expression such as
// `category == false and path matches "^/boards"`. An empty expression keeps all menus.
// ParentID is 0 when the node has no parent.
func FilterMenus(menus []MenuNode, expr string) ([]MenuNode, error) {
	if strings.TrimSpace(expr) == "" {
		return append([]MenuNode(nil), menus...), nil
	}

	evaluator, err := menuEvaluator(expr)
	if err != nil {
		return nil, err
	}

	out := make([]MenuNode, 0, len(menus))
	for _, menu := range menus {
		view := menuFilterView{
			ID:        menu.ID,
			Name:      menu.Name,
			Path:      normalizeMenuPath(menu.Path),
			SortOrder: menu.SortOrder,
			IsActive:  menu.IsActive,
			Category:  menu.IsCategory(),
			Navigable: menu.IsNavigable(),
		}
		if menu.ParentID != nil {
			view.ParentID = *menu.ParentID
		}
		ok, err := evaluator.Evaluate(view)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate filter on menu %d: %w", menu.ID, err)
		}
		if ok {
			out = append(out, menu)
		}
	}
	return out, nil
}
