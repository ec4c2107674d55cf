package menu

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var reorderCmd = &cobra.Command{
	Use:     "reorder <id=order>...",
	Short:   "Set the sort order of several menus in one call",
	Example: `  boardctl menu reorder 3=0 2=1 5=2`,
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orders, err := parseOrders(args)
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

		if err := s.Client().ReorderMenus(ctx, orders); err != nil {
			return fmt.Errorf("failed to reorder menus: %w", err)
		}

		refreshMenus(ctx, s)
		pterm.Success.Printf("Reordered %d menus\n", len(orders))
		return nil
	},
}

// parseOrders parses id=order pairs. A repeated id is rejected.
func parseOrders(args []string) ([]sdk.MenuOrder, error) {
	seen := make(map[int64]bool, len(args))
	orders := make([]sdk.MenuOrder, 0, len(args))
	for _, arg := range args {
		rawID, rawOrder, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("invalid pair %q: expected id=order", arg)
		}
		id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid menu id in %q", arg)
		}
		order, err := strconv.Atoi(strings.TrimSpace(rawOrder))
		if err != nil {
			return nil, fmt.Errorf("invalid sort order in %q", arg)
		}
		if seen[id] {
			return nil, fmt.Errorf("menu %d listed twice", id)
		}
		seen[id] = true
		orders = append(orders, sdk.MenuOrder{ID: id, SortOrder: order})
	}
	return orders, nil
}
