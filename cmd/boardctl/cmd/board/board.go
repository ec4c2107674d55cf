package board

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/spf13/cobra"
)

// BoardCmd is the parent command for board operations
var BoardCmd = &cobra.Command{
	Use:   "board",
	Short: "Browse boards and download attachments",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List boards readable by the signed-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustFromContext(cmd.Context())
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		boards, err := client.ListBoards(ctx)
		if err != nil {
			return fmt.Errorf("failed to list boards: %w", err)
		}
		printBoards(os.Stdout, boards)
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <board-id>",
	Short: "Show one board",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		boardID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid board id %q", args[0])
		}

		cfg := config.MustFromContext(cmd.Context())
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		board, err := client.GetBoard(ctx, boardID)
		if err != nil {
			return fmt.Errorf("failed to get board %d: %w", boardID, err)
		}
		printBoards(os.Stdout, []sdk.Board{*board})
		if board.Description != nil && *board.Description != "" {
			fmt.Println()
			fmt.Println(*board.Description)
		}
		return nil
	},
}

func joinRoles(roles []sdk.Role) string {
	if len(roles) == 0 {
		return "-"
	}
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	return strings.Join(names, ",")
}

func printBoards(out io.Writer, boards []sdk.Board) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tKEY\tNAME\tREAD\tWRITE\tACTIVE")
	for _, b := range boards {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%t\n", b.ID, b.Key, b.Name, joinRoles(b.ReadRoles), joinRoles(b.WriteRoles), b.IsActive)
	}
	w.Flush()
}

func init() {
	BoardCmd.AddCommand(listCmd)
	BoardCmd.AddCommand(getCmd)
	BoardCmd.AddCommand(downloadCmd)
}
