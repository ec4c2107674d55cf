package menu

import (
	"context"
	"fmt"
	"strconv"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <menu-id>",
	Short: "Delete a category or deactivate a menu",
	Long: `Deletes a category, or deactivates a regular menu. A category that still
contains menus cannot be deleted; move or delete its menus first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		menuID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || menuID <= 0 {
			return fmt.Errorf("invalid menu id %q", args[0])
		}

		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		if err := s.Client().DeleteMenu(ctx, menuID); err != nil {
			if sdk.IsResourceInUse(err) {
				return fmt.Errorf("menu %d still has child menus; move them with 'boardctl menu update <id> --no-parent' or delete them first (%w)", menuID, err)
			}
			return fmt.Errorf("failed to delete menu %d: %w", menuID, err)
		}

		refreshMenus(ctx, s)
		pterm.Success.Printf("Menu %d deleted\n", menuID)
		return nil
	},
}
