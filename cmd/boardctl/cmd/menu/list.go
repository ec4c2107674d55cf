package menu

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	listFilter string
	listAdmin  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List menu records",
	Long: `Lists menu records in display order. --admin lists every record including
inactive ones (requires MANAGE_MENUS). --filter takes a bexpr expression over
id, name, path, parent_id, sort_order, is_active, category and navigable.`,
	Example: `  boardctl menu list --filter 'category == true'
  boardctl menu list --admin --filter 'is_active == false'`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		var menus []sdk.MenuNode
		if listAdmin {
			menus, err = s.Client().ListAdminMenus(ctx)
		} else {
			menus, err = s.Menus(ctx, false)
		}
		if err != nil {
			return fmt.Errorf("failed to list menus: %w", err)
		}

		menus, err = sdk.FilterMenus(menus, listFilter)
		if err != nil {
			return err
		}
		sdk.SortMenus(menus)

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tPATH\tPARENT\tORDER\tACTIVE\tKIND")
		for _, m := range menus {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%t\t%s\n",
				m.ID, m.Name, m.Path, formatParent(m.ParentID), m.SortOrder, m.IsActive, menuKind(m))
		}
		w.Flush()
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listFilter, "filter", "", "bexpr filter expression (e.g. navigable == true)")
	listCmd.Flags().BoolVar(&listAdmin, "admin", false, "List all records, including inactive ones")
}
