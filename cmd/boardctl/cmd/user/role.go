package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var roleCmd = &cobra.Command{
	Use:     "role <user-id> <role>",
	Short:   "Assign a role to a user",
	Example: `  boardctl user role 12 MANAGER`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, err := parseUserID(args[0])
		if err != nil {
			return err
		}
		role := sdk.Role(strings.ToUpper(strings.TrimSpace(args[1])))

		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		user, err := s.Client().SetUserRole(ctx, userID, role)
		if err != nil {
			return fmt.Errorf("failed to assign role: %w", err)
		}
		pterm.Success.Printf("Assigned role '%s' to user '%s'\n", user.Role, user.Username)

		self, err := refreshSelf(ctx, s, userID)
		if err != nil {
			pterm.Warning.Printf("Your cached identity was not refreshed: %v\n", err)
		} else if self {
			pterm.Info.Println("Your own role changed; menus were reloaded")
		}
		return nil
	},
}
