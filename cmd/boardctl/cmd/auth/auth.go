package auth

import (
	"context"
	"errors"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// AuthCmd is the parent command for auth operations
var AuthCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Commands for signing in and out and inspecting the current session.`,
}

func init() {
	AuthCmd.AddCommand(loginCmd)
	AuthCmd.AddCommand(signupCmd)
	AuthCmd.AddCommand(logoutCmd)
	AuthCmd.AddCommand(statusCmd)
	AuthCmd.AddCommand(refreshCmd)
}

func session(ctx context.Context) (*sdk.SessionContext, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.Session(ctx)
}

// prompt asks for a missing value unless prompts are disabled.
func prompt(ctx context.Context, value *string, label string, secret bool) error {
	if *value != "" {
		return nil
	}
	if config.MustFromContext(ctx).NonInteractive {
		return errors.New(label + " is required in non-interactive mode")
	}
	input := pterm.DefaultInteractiveTextInput
	if secret {
		input = *input.WithMask("*")
	}
	result, err := input.Show(label)
	if err != nil {
		return err
	}
	*value = result
	return nil
}
