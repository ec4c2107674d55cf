package menu

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	createName     string
	createPath     string
	createCategory bool
	createParent   int64
	createBoard    int64
	createIcon     string
	createOrder    int
	createInactive bool
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a menu or category",
	Example: `  boardctl menu create --category --name Work
  boardctl menu create --name Notices --path /boards/notice --parent 4 --board 1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		input, err := menuInput(cmd.Flags().Changed("parent"), cmd.Flags().Changed("board"))
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

		menu, err := s.Client().CreateMenu(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to create menu: %w", err)
		}

		refreshMenus(ctx, s)
		pterm.Success.Printf("Created %s %d (%s)\n", menuKind(*menu), menu.ID, menu.Name)
		return nil
	},
}

func menuInput(hasParent, hasBoard bool) (sdk.MenuInput, error) {
	input := sdk.MenuInput{
		Name:      createName,
		Path:      createPath,
		SortOrder: createOrder,
		IsActive:  !createInactive,
	}
	if createCategory {
		if createPath != "" && createPath != sdk.CategoryPath {
			return sdk.MenuInput{}, fmt.Errorf("--category and --path are mutually exclusive")
		}
		if hasParent {
			return sdk.MenuInput{}, fmt.Errorf("categories cannot have a parent")
		}
		input.Path = sdk.CategoryPath
	}
	if input.Name == "" {
		return sdk.MenuInput{}, fmt.Errorf("--name is required")
	}
	if input.Path == "" {
		return sdk.MenuInput{}, fmt.Errorf("--path is required (or use --category)")
	}
	if hasParent {
		parent := createParent
		input.ParentID = &parent
	}
	if hasBoard {
		board := createBoard
		input.BoardID = &board
	}
	if createIcon != "" {
		input.Icon = &createIcon
	}
	return input, nil
}

func init() {
	createCmd.Flags().StringVar(&createName, "name", "", "Display name")
	createCmd.Flags().StringVar(&createPath, "path", "", "Navigation path, starting with /")
	createCmd.Flags().BoolVar(&createCategory, "category", false, "Create a category instead of a menu")
	createCmd.Flags().Int64Var(&createParent, "parent", 0, "Category id to file the menu under")
	createCmd.Flags().Int64Var(&createBoard, "board", 0, "Board id the menu opens")
	createCmd.Flags().StringVar(&createIcon, "icon", "", "Icon name")
	createCmd.Flags().IntVar(&createOrder, "order", 0, "Sort order")
	createCmd.Flags().BoolVar(&createInactive, "inactive", false, "Create the menu deactivated")
}
