package menu

import (
	"fmt"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/localstate"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
)

// menuLabel formats a navigable entry.
func menuLabel(m sdk.MenuNode) string {
	return fmt.Sprintf("%s  %s", m.Name, pterm.Gray(strings.TrimSpace(m.Path)))
}

// buildTree converts a resolved menu tree into a pterm tree. Collapsed
// categories show their child count instead of their children.
func buildTree(tree sdk.MenuTree, prefs localstate.Prefs) pterm.TreeNode {
	root := pterm.TreeNode{Text: "Menu"}
	root.Children = append(root.Children, pterm.TreeNode{Text: menuLabel(sdk.DashboardMenu())})
	for _, item := range tree.Uncategorized {
		root.Children = append(root.Children, pterm.TreeNode{Text: menuLabel(item)})
	}
	for _, section := range tree.Categories {
		node := pterm.TreeNode{Text: section.Category.Name}
		if prefs.IsCategoryCollapsed(section.Category.ID) {
			node.Text = fmt.Sprintf("%s (%d, collapsed)", section.Category.Name, len(section.Children))
		} else {
			for _, child := range section.Children {
				node.Children = append(node.Children, pterm.TreeNode{Text: menuLabel(child)})
			}
		}
		root.Children = append(root.Children, node)
	}
	return root
}

func menuKind(m sdk.MenuNode) string {
	switch {
	case m.IsCategory():
		return "category"
	case m.IsNavigable():
		return "menu"
	default:
		return "hidden"
	}
}

func formatParent(id *int64) string {
	if id == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *id)
}
