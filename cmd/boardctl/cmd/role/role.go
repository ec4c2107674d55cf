package role

import (
	"context"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/spf13/cobra"
)

// RoleCmd is the parent command for role operations
var RoleCmd = &cobra.Command{
	Use:   "role",
	Short: "Manage roles and permissions",
	Long: `Commands for viewing and editing the role permission matrix. Every edit
loads the whole matrix, applies one change, and saves the whole matrix back.`,
}

func init() {
	RoleCmd.AddCommand(matrixCmd)
	RoleCmd.AddCommand(grantCmd)
	RoleCmd.AddCommand(syspermCmd)
}

func sdkClient(ctx context.Context) (*sdk.Client, error) {
	cfg := config.MustFromContext(ctx)
	return cfg.ClientProvider.SDKClient(ctx)
}

// editMatrix loads the matrix, applies edit, and saves the result.
func editMatrix(ctx context.Context, edit func(*sdk.MatrixEditor) error) (sdk.PermissionMatrix, error) {
	client, err := sdkClient(ctx)
	if err != nil {
		return sdk.PermissionMatrix{}, err
	}
	return loadEditSave(ctx, client, client, edit)
}

type matrixLoader interface {
	GetRoleMatrix(ctx context.Context) (sdk.PermissionMatrix, error)
}

func loadEditSave(ctx context.Context, loader matrixLoader, saver sdk.MatrixSaver, edit func(*sdk.MatrixEditor) error) (sdk.PermissionMatrix, error) {
	matrix, err := loader.GetRoleMatrix(ctx)
	if err != nil {
		return sdk.PermissionMatrix{}, err
	}
	editor := sdk.NewMatrixEditor(matrix)
	if err := edit(editor); err != nil {
		return sdk.PermissionMatrix{}, err
	}
	return editor.Save(ctx, saver)
}
