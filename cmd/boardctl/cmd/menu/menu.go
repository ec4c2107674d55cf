package menu

import (
	"context"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// MenuCmd is the parent command for menu operations
var MenuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Browse and administer navigation menus",
	Long:  `Commands for viewing the navigation tree and managing menu records.`,
}

func init() {
	MenuCmd.AddCommand(treeCmd)
	MenuCmd.AddCommand(listCmd)
	MenuCmd.AddCommand(createCmd)
	MenuCmd.AddCommand(updateCmd)
	MenuCmd.AddCommand(deleteCmd)
	MenuCmd.AddCommand(reorderCmd)
	MenuCmd.AddCommand(collapseCmd)
}

func session(ctx context.Context) (*sdk.SessionContext, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.Session(ctx)
}

// refreshMenus reloads the cached menu list after an admin change.
func refreshMenus(ctx context.Context, s *sdk.SessionContext) {
	if _, err := s.Menus(ctx, true); err != nil {
		pterm.Warning.Printf("Menu cache not refreshed: %v\n", err)
	}
}
