package auth

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	loginUsername string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with username and password",
	Long: `Signs in and stores the issued access and refresh tokens in the configured
token store. Missing values are prompted for unless --non-interactive is set.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if err := prompt(cmd.Context(), &loginUsername, "Username", false); err != nil {
			return err
		}
		if err := prompt(cmd.Context(), &loginPassword, "Password", true); err != nil {
			return err
		}

		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		me, err := s.Login(ctx, sdk.LoginInput{Username: loginUsername, Password: loginPassword})
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		pterm.Success.Printf("Logged in as %s (%s)\n", me.Username, me.Role)
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password")
}
