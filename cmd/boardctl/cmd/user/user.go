package user

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/spf13/cobra"
)

// UserCmd is the parent command for user administration
var UserCmd = &cobra.Command{
	Use:   "user",
	Short: "Administer user accounts",
	Long:  `Commands for listing accounts, assigning roles, and locking accounts.`,
}

func init() {
	UserCmd.AddCommand(listCmd)
	UserCmd.AddCommand(roleCmd)
	UserCmd.AddCommand(lockCmd)
	UserCmd.AddCommand(unlockCmd)
}

func session(ctx context.Context) (*sdk.SessionContext, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.Session(ctx)
}

func parseUserID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid user id %q", arg)
	}
	return id, nil
}

func printUsers(out io.Writer, page sdk.UserPage) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tROLE\tLOCKED\tACTIVE\tCREATED")
	for _, u := range page.Items {
		created := "-"
		if !u.CreatedAt.IsZero() {
			created = u.CreatedAt.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\t%t\t%s\n", u.ID, u.Username, u.Email, u.Role, u.IsLocked, u.IsActive, created)
	}
	w.Flush()
}

// refreshSelf reloads the cached identity and menus when the change touched
// the signed-in account, so the menu tree follows the new role.
func refreshSelf(ctx context.Context, s *sdk.SessionContext, userID int64) (bool, error) {
	me, err := s.Identity(ctx, false)
	if err != nil || me.ID != userID {
		return false, nil
	}
	if _, err := s.Identity(ctx, true); err != nil {
		return true, err
	}
	if _, err := s.Menus(ctx, true); err != nil {
		return true, err
	}
	return true, nil
}
