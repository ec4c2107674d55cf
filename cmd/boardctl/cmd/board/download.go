package board

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/intraboard/board/cmd/boardctl/internal/config"
	"github.com/intraboard/board/pkg/sdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var downloadOutput string

var downloadCmd = &cobra.Command{
	Use:   "download <attachment-id>",
	Short: "Download a post attachment",
	Long: `Downloads an attachment to a file (default attachment-<id>) or to stdout
with --output -.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		attachmentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil || attachmentID <= 0 {
			return fmt.Errorf("invalid attachment id %q", args[0])
		}

		cfg := config.MustFromContext(cmd.Context())
		client, err := cfg.ClientProvider.SDKClient(cmd.Context())
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Timeout)
		defer cancel()

		if downloadOutput == "-" {
			_, err := client.DownloadAttachment(ctx, attachmentID, os.Stdout)
			return err
		}

		target := downloadOutput
		if target == "" {
			target = fmt.Sprintf("attachment-%d", attachmentID)
		}
		n, err := downloadToFile(ctx, client, attachmentID, target)
		if err != nil {
			return fmt.Errorf("failed to download attachment %d: %w", attachmentID, err)
		}
		pterm.Success.Printf("Saved %d bytes to %s\n", n, target)
		return nil
	},
}

type attachmentDownloader interface {
	DownloadAttachment(ctx context.Context, attachmentID int64, w io.Writer) (int64, error)
}

var _ attachmentDownloader = (*sdk.Client)(nil)

// downloadToFile writes into a temp file next to target and renames it on
// success. A failed download leaves no partial file.
func downloadToFile(ctx context.Context, d attachmentDownloader, attachmentID int64, target string) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".download-*")
	if err != nil {
		return 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := d.DownloadAttachment(ctx, attachmentID, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return 0, err
	}
	return n, nil
}

func init() {
	downloadCmd.Flags().StringVarP(&downloadOutput, "output", "o", "", "Output file, or - for stdout")
}
