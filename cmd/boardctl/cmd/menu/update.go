package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	updateName     string
	updatePath     string
	updateIcon     string
	updateParent   int64
	updateNoParent bool
	updateBoard    int64
	updateOrder    int
	updateActive   bool
)

var updateCmd = &cobra.Command{
	Use:   "update <menu-id>",
	Short: "Change fields of a menu or category",
	Long: `Changes only the fields given as flags. Use --parent to move a menu into a
category and --no-parent to move it to the top level.`,
	Example: `  boardctl menu update 7 --parent 4
  boardctl menu update 7 --no-parent --active=false`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		menuID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || menuID <= 0 {
			return fmt.Errorf("invalid menu id %q", args[0])
		}
		patch, err := menuPatch(cmd.Flags().Changed)
		if err != nil {
			return err
		}

		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		menu, err := s.Client().UpdateMenu(ctx, menuID, patch)
		if err != nil {
			return fmt.Errorf("failed to update menu %d: %w", menuID, err)
		}

		refreshMenus(ctx, s)
		pterm.Success.Printf("Updated %s %d (%s, parent %s)\n", menuKind(*menu), menu.ID, menu.Name, formatParent(menu.ParentID))
		return nil
	},
}

// menuPatch builds a patch from the flags the user set.
func menuPatch(changed func(string) bool) (sdk.MenuPatch, error) {
	var patch sdk.MenuPatch
	if changed("parent") && updateNoParent {
		return patch, fmt.Errorf("--parent and --no-parent are mutually exclusive")
	}
	if changed("name") {
		name := strings.TrimSpace(updateName)
		if name == "" {
			return patch, fmt.Errorf("--name cannot be empty")
		}
		patch.Name = &name
	}
	if changed("path") {
		path := strings.TrimSpace(updatePath)
		if path != sdk.CategoryPath && !strings.HasPrefix(path, "/") {
			return patch, fmt.Errorf("--path must start with / or be %s", sdk.CategoryPath)
		}
		patch.Path = &path
	}
	if changed("icon") {
		icon := updateIcon
		patch.Icon = &icon
	}
	if changed("parent") {
		parent := updateParent
		patch.ParentID = &parent
	}
	patch.ClearParent = updateNoParent
	if changed("board") {
		board := updateBoard
		patch.BoardID = &board
	}
	if changed("order") {
		order := updateOrder
		patch.SortOrder = &order
	}
	if changed("active") {
		active := updateActive
		patch.IsActive = &active
	}
	if patch.IsEmpty() {
		return patch, fmt.Errorf("nothing to update; pass at least one field flag")
	}
	return patch, nil
}

func init() {
	updateCmd.Flags().StringVar(&updateName, "name", "", "New display name")
	updateCmd.Flags().StringVar(&updatePath, "path", "", "New navigation path")
	updateCmd.Flags().StringVar(&updateIcon, "icon", "", "New icon name")
	updateCmd.Flags().Int64Var(&updateParent, "parent", 0, "Category id to move the menu under")
	updateCmd.Flags().BoolVar(&updateNoParent, "no-parent", false, "Move the menu out of its category")
	updateCmd.Flags().Int64Var(&updateBoard, "board", 0, "Board id the menu opens")
	updateCmd.Flags().IntVar(&updateOrder, "order", 0, "Sort order")
	updateCmd.Flags().BoolVar(&updateActive, "active", true, "Whether the menu is shown")
}
