package service

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockbook/inventory-api/internal/pkg/storage"
)

func newAttachmentService(t *testing.T) *AttachmentService {
	t.Helper()

	disk, err := storage.NewLocal(t.TempDir(), "/uploads")
	require.NoError(t, err)

	return NewAttachmentService(disk, AttachmentConfig{
		AllowedExtensions: []string{"pdf", ".PNG"},
		MaxSize:           10,
		PublicPrefix:      "/uploads/",
	})
}

func TestAttachmentService_UploadOpenDelete(t *testing.T) {
	ctx := context.Background()
	svc := newAttachmentService(t)

	att, err := svc.Upload(ctx, "../My Quote.PDF", 5, strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "My_Quote.PDF", att.FileName)
	assert.Equal(t, int64(5), att.FileSize)
	assert.True(t, strings.HasPrefix(att.FilePath, "/uploads/"))
	assert.True(t, strings.HasSuffix(att.FilePath, "_My_Quote.PDF"))

	name := strings.TrimPrefix(att.FilePath, "/uploads/")
	rc, download, err := svc.Open(ctx, name)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
	assert.Equal(t, "My_Quote.PDF", download)

	require.NoError(t, svc.Delete(ctx, att.FilePath))
	_, _, err = svc.Open(ctx, name)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestAttachmentService_Rejects(t *testing.T) {
	ctx := context.Background()
	svc := newAttachmentService(t)

	_, err := svc.Upload(ctx, "", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = svc.Upload(ctx, "script.sh", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = svc.Upload(ctx, "noext", 1, strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTypeNotAllowed)

	_, err = svc.Upload(ctx, "big.png", 11, strings.NewReader("01234567890"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, _, err = svc.Open(ctx, "../etc/passwd")
	assert.ErrorIs(t, err, ErrInvalidFileName)

	assert.ErrorIs(t, svc.Delete(ctx, ""), ErrInvalidFileName)
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "report_2024.pdf", secureFilename("report 2024.pdf"))
	assert.Equal(t, "passwd", secureFilename("../../etc/passwd"))
	assert.Equal(t, "evil.txt", secureFilename(`C:\tmp\evil.txt`))
	assert.Equal(t, "file", secureFilename("..."))
}
