package auth

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear local session data",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		if err := s.Logout(ctx); err != nil {
			// The local session is gone either way.
			pterm.Warning.Printf("Server did not confirm logout: %v\n", err)
		}

		fmt.Println("Logged out successfully")
		return nil
	},
}
