package role

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Show the role permission matrix",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		client, err := sdkClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		matrix, err := client.GetRoleMatrix(ctx)
		if err != nil {
			return fmt.Errorf("failed to load role matrix: %w", err)
		}
		printMatrix(os.Stdout, sdk.Normalize(matrix))
		return nil
	},
}

// grantCell renders one role's access: rw, r or -.
func grantCell(read, write []sdk.Role, role sdk.Role) string {
	switch sdk.GrantStateOf(read, write, role) {
	case sdk.GrantReadWrite:
		return "rw"
	case sdk.GrantRead:
		return "r"
	default:
		return "-"
	}
}

func roleCells(order, read, write []sdk.Role) string {
	cells := make([]string, 0, len(order))
	for _, role := range order {
		cells = append(cells, grantCell(read, write, role))
	}
	return strings.Join(cells, "\t")
}

func printMatrix(out io.Writer, matrix sdk.PermissionMatrix) {
	order := matrix.RoleOrder()
	header := make([]string, 0, len(order))
	for _, role := range order {
		header = append(header, string(role))
	}

	pterm.DefaultSection.WithWriter(out).Println("System permissions")
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ROLE\tNAME\tPERMISSIONS")
	for _, role := range matrix.Roles {
		perms := "-"
		if len(role.SystemPermissions) > 0 {
			perms = strings.Join(role.SystemPermissions, ", ")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", role.RoleCode, role.RoleName, perms)
	}
	w.Flush()

	pterm.DefaultSection.WithWriter(out).Println("Menus")
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tMENU\tCATEGORY\t%s\n", strings.Join(header, "\t"))
	for _, menu := range matrix.Menus {
		category := "-"
		if menu.CategoryName != nil {
			category = *menu.CategoryName
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", menu.MenuID, menu.MenuName, category, roleCells(order, menu.ReadRoles, menu.WriteRoles))
	}
	w.Flush()

	pterm.DefaultSection.WithWriter(out).Println("Boards")
	w = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tKEY\tBOARD\t%s\n", strings.Join(header, "\t"))
	for _, board := range matrix.Boards {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", board.BoardID, board.BoardKey, board.BoardName, roleCells(order, board.ReadRoles, board.WriteRoles))
	}
	w.Flush()
}
