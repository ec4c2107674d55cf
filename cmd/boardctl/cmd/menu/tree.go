package menu

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	treeCompact bool
	treeRefresh bool
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the navigation tree for the signed-in user",
	Long: `Shows the menus visible to the signed-in user, grouped by category.
When the sidebar is collapsed (see 'boardctl prefs sidebar') or --compact is
set, a flat list of every navigable entry is shown instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		state, err := cfg.ClientProvider.LocalState()
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		tree, err := s.MenuTree(ctx, treeRefresh)
		if err != nil {
			return fmt.Errorf("failed to load menus: %w", err)
		}

		prefs := state.LoadPrefs()
		if treeCompact || prefs.SidebarCollapsed {
			for _, item := range tree.Compact() {
				fmt.Println(menuLabel(item))
			}
			return nil
		}

		return pterm.DefaultTree.WithRoot(buildTree(tree, prefs)).Render()
	},
}

func init() {
	treeCmd.Flags().BoolVar(&treeCompact, "compact", false, "Flat list without categories")
	treeCmd.Flags().BoolVar(&treeRefresh, "refresh", false, "Reload menus from the server instead of the cache")
}
