// Package storage stores uploaded attachments on the local filesystem or an
// S3-compatible bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/stockbook/inventory-api/internal/config"
)

const (
	DiskLocal = "local"
	DiskS3    = "s3"
)

var (
	ErrFileNotFound    = errors.New("file not found")
	ErrUnsupportedDisk = errors.New("unsupported storage disk")
	ErrInvalidPath     = errors.New("invalid file path")
)

// Disk is implemented by every storage driver.
type Disk interface {
	// Put writes r to path, replacing any existing file.
	Put(ctx context.Context, path string, r io.Reader) error
	// Open returns the content of path. Caller must close it.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes path. Deleting a missing file is not an error.
	Delete(ctx context.Context, path string) error
	Exists(ctx context.Context, path string) (bool, error)
	// URL returns the public URL of path.
	URL(path string) string
}

// New builds the disk selected by conf.Disk.
func New(ctx context.Context, conf *config.StorageConfig) (Disk, error) {
	switch conf.Disk {
	case "", DiskLocal:
		return NewLocal(conf.LocalRoot, conf.BaseURL)
	case DiskS3:
		return NewS3(ctx, conf)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDisk, conf.Disk)
	}
}
