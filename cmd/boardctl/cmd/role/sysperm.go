package role

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	syspermRole string
	syspermName string
)

var syspermCmd = &cobra.Command{
	Use:   "sysperm",
	Short: "Toggle a system permission for a role",
	Long: fmt.Sprintf(`Toggles a system permission for a role. Known permissions: %s.
ADMIN cannot lose MANAGE_ROLES.`, strings.Join(sdk.SystemPermissions, ", ")),
	Example: `  boardctl role sysperm --role MANAGER --perm MODERATE_CONTENT`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if syspermRole == "" || syspermName == "" {
			return errors.New("--role and --perm are required")
		}
		perm := strings.ToUpper(syspermName)
		if !slices.Contains(sdk.SystemPermissions, perm) {
			return fmt.Errorf("unknown permission %q", syspermName)
		}
		role := sdk.Role(strings.ToUpper(syspermRole))

		cfg := config.MustFromContext(cmd.Context())
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		saved, err := editMatrix(ctx, func(editor *sdk.MatrixEditor) error {
			_, err := editor.ToggleSystemPermission(role, perm)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to update system permission: %w", err)
		}

		for _, entry := range saved.Roles {
			if entry.RoleCode == role {
				pterm.Success.Printf("%s permissions: %s\n", role, strings.Join(entry.SystemPermissions, ", "))
			}
		}
		return nil
	},
}

func init() {
	syspermCmd.Flags().StringVar(&syspermRole, "role", "", "Role code")
	syspermCmd.Flags().StringVar(&syspermName, "perm", "", "System permission name")
}
