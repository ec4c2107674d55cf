package user

import (
	"context"
	"fmt"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var lockCmd = &cobra.Command{
	Use:   "lock <user-id>",
	Short: "Lock a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLock(cmd, args[0], true)
	},
}

var unlockCmd = &cobra.Command{
	Use:   "unlock <user-id>",
	Short: "Unlock a user account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setLock(cmd, args[0], false)
	},
}

func setLock(cmd *cobra.Command, arg string, locked bool) error {
	userID, err := parseUserID(arg)
	if err != nil {
		return err
	}

	cfg := config.MustFromContext(cmd.Context())
	s, err := session(cmd.Context())
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
	defer cancel()

	if locked {
		if me, err := s.Identity(ctx, false); err == nil && me.ID == userID {
			return fmt.Errorf("refusing to lock your own account")
		}
	}

	user, err := s.Client().SetUserLock(ctx, userID, locked)
	if err != nil {
		return fmt.Errorf("failed to update lock for user %d: %w", userID, err)
	}

	if user.IsLocked {
		pterm.Success.Printf("User '%s' locked\n", user.Username)
	} else {
		pterm.Success.Printf("User '%s' unlocked\n", user.Username)
	}
	return nil
}
