package menu

import (
	"fmt"
	"strconv"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var collapseCmd = &cobra.Command{
	Use:   "collapse <category-id>",
	Short: "Toggle whether a category is collapsed in 'menu tree'",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		categoryID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid category id %q", args[0])
		}

		cfg := config.MustFromContext(cmd.Context())
		state, err := cfg.ClientProvider.LocalState()
		if err != nil {
			return err
		}
		collapsed, err := state.ToggleCategory(categoryID)
		if err != nil {
			return err
		}

		if collapsed {
			pterm.Info.Printf("Category %d collapsed\n", categoryID)
		} else {
			pterm.Info.Printf("Category %d expanded\n", categoryID)
		}
		return nil
	},
}
