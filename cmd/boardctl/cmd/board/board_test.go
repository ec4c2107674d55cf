package board

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/intraboard/board/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintBoards(t *testing.T) {
	var buf bytes.Buffer
	printBoards(&buf, []sdk.Board{
		{ID: 1, Key: "notice", Name: "Notices", ReadRoles: []sdk.Role{sdk.RoleAdmin, sdk.RoleUser}, WriteRoles: []sdk.Role{sdk.RoleAdmin}, IsActive: true},
		{ID: 2, Key: "free", Name: "Free"},
	})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "READ")
	assert.Contains(t, lines[1], "ADMIN,USER")
	assert.Contains(t, lines[2], "-")
}

type fakeDownloader struct {
	content string
	err     error
}

func (f fakeDownloader) DownloadAttachment(ctx context.Context, attachmentID int64, w io.Writer) (int64, error) {
	n, _ := io.WriteString(w, f.content)
	return int64(n), f.err
}

func TestDownloadToFile(t *testing.T) {
	dir := t.TempDir()

	target := filepath.Join(dir, "report.pdf")
	n, err := downloadToFile(context.Background(), fakeDownloader{content: "pdf-bytes"}, 3, target)
	require.NoError(t, err)
	assert.Equal(t, int64(len("pdf-bytes")), n)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(data))

	failed := filepath.Join(dir, "broken.pdf")
	_, err = downloadToFile(context.Background(), fakeDownloader{content: "half", err: errors.New("connection reset")}, 4, failed)
	require.Error(t, err)
	_, statErr := os.Stat(failed)
	assert.True(t, os.IsNotExist(statErr))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files are cleaned up")
}
