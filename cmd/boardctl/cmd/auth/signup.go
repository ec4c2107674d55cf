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
	signupUsername string
	signupEmail    string
	signupPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Register a new account and sign in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		if err := prompt(cmd.Context(), &signupUsername, "Username", false); err != nil {
			return err
		}
		if err := prompt(cmd.Context(), &signupEmail, "Email", false); err != nil {
			return err
		}
		if err := prompt(cmd.Context(), &signupPassword, "Password", true); err != nil {
			return err
		}

		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		me, err := s.Signup(ctx, sdk.SignupInput{
			Username: signupUsername,
			Email:    signupEmail,
			Password: signupPassword,
		})
		if err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		pterm.Success.Printf("Account created. Logged in as %s (%s)\n", me.Username, me.Role)
		return nil
	},
}

func init() {
	signupCmd.Flags().StringVarP(&signupUsername, "username", "u", "", "Username (3-50 characters)")
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "Email address")
	signupCmd.Flags().StringVarP(&signupPassword, "password", "p", "", "Password (at least 8 characters)")
}
