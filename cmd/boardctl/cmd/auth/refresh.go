package auth

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Exchange the refresh token for a new token pair",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		if _, err := s.Client().Session().Renew(ctx); err != nil {
			return fmt.Errorf("failed to refresh session: %w", err)
		}
		pterm.Success.Println("Session renewed")
		return nil
	},
}
