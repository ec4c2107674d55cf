package user

import (
	"context"
	"fmt"
	"os"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/spf13/cobra"
)

var (
	listSearch   string
	listPage     int
	listPageSize int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List user accounts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		s, err := session(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		page, err := s.Client().ListUsers(ctx, sdk.UserQuery{
			Search:   listSearch,
			Page:     listPage,
			PageSize: listPageSize,
		})
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}

		if len(page.Items) == 0 {
			fmt.Println("No users found")
			return nil
		}
		printUsers(os.Stdout, page)
		fmt.Printf("\nPage %d, %d of %d users\n", page.Page, len(page.Items), page.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listSearch, "search", "", "Match username or email")
	listCmd.Flags().IntVar(&listPage, "page", 0, "Page number, starting at 1")
	listCmd.Flags().IntVar(&listPageSize, "page-size", 0, "Users per page (max 100)")
}
