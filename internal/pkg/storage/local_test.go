package storage

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/config"
)

func TestLocal_PutOpenDelete(t *testing.T) {
	ctx := context.Background()
	disk, err := NewLocal(t.TempDir(), "/uploads/")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "invoice.pdf", strings.NewReader("content")))

	ok, err := disk.Exists(ctx, "invoice.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := disk.Open(ctx, "invoice.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "content", string(data))

	assert.Equal(t, "/uploads/invoice.pdf", disk.URL("invoice.pdf"))

	require.NoError(t, disk.Delete(ctx, "invoice.pdf"))
	require.NoError(t, disk.Delete(ctx, "invoice.pdf"))

	_, err = disk.Open(ctx, "invoice.pdf")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestLocal_StaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	disk, err := NewLocal(root, "/uploads")
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "../../escape.txt", strings.NewReader("x")))
	ok, err := disk.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = disk.Open(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestNew_UnsupportedDisk(t *testing.T) {
	_, err := New(context.Background(), &config.StorageConfig{Disk: "ftp"})
	assert.ErrorIs(t, err, ErrUnsupportedDisk)
}
