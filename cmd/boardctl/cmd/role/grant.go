package role

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	grantMenu  int64
	grantBoard int64
	grantRole  string
	grantRead  bool
	grantWrite bool
)

var grantCmd = &cobra.Command{
	Use:   "grant",
	Short: "Toggle a role's read or write access to a menu or board",
	Long: `Toggles one bit of a role's access. Write always implies read: granting
write also grants read, and revoking read also revokes write.`,
	Example: `  boardctl role grant --menu 4 --role USER --read
  boardctl role grant --board 2 --role MANAGER --write`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := parseGrantRequest(cmd.Flags().Changed("menu"), cmd.Flags().Changed("board"))
		if err != nil {
			return err
		}

		cfg := config.MustFromContext(cmd.Context())
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		var state sdk.GrantState
		_, err = editMatrix(ctx, func(editor *sdk.MatrixEditor) error {
			var applyErr error
			state, applyErr = req.apply(editor)
			return applyErr
		})
		if err != nil {
			return fmt.Errorf("failed to update grant: %w", err)
		}

		pterm.Success.Printf("%s on %s %d is now %s\n", req.role, req.kind, req.id, state)
		return nil
	},
}

type grantRequest struct {
	kind   string
	id     int64
	role   sdk.Role
	target sdk.GrantTarget
}

func parseGrantRequest(hasMenu, hasBoard bool) (grantRequest, error) {
	var req grantRequest
	switch {
	case hasMenu == hasBoard:
		return req, errors.New("exactly one of --menu or --board is required")
	case hasMenu:
		req.kind, req.id = "menu", grantMenu
	default:
		req.kind, req.id = "board", grantBoard
	}
	switch {
	case grantRead == grantWrite:
		return req, errors.New("exactly one of --read or --write is required")
	case grantRead:
		req.target = sdk.GrantTargetRead
	default:
		req.target = sdk.GrantTargetWrite
	}
	if grantRole == "" {
		return req, errors.New("--role is required")
	}
	req.role = sdk.Role(strings.ToUpper(grantRole))
	return req, nil
}

// apply toggles the requested bit and reports the resulting state.
func (r grantRequest) apply(editor *sdk.MatrixEditor) (sdk.GrantState, error) {
	if r.kind == "menu" {
		if _, err := editor.ToggleMenuGrant(r.id, r.role, r.target); err != nil {
			return sdk.GrantNone, err
		}
		return editor.MenuGrant(r.id, r.role)
	}
	if _, err := editor.ToggleBoardGrant(r.id, r.role, r.target); err != nil {
		return sdk.GrantNone, err
	}
	return editor.BoardGrant(r.id, r.role)
}

func init() {
	grantCmd.Flags().Int64Var(&grantMenu, "menu", 0, "Menu id")
	grantCmd.Flags().Int64Var(&grantBoard, "board", 0, "Board id")
	grantCmd.Flags().StringVar(&grantRole, "role", "", "Role code (ADMIN, MANAGER, USER)")
	grantCmd.Flags().BoolVar(&grantRead, "read", false, "Toggle read access")
	grantCmd.Flags().BoolVar(&grantWrite, "write", false, "Toggle write access")
}
