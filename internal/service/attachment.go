package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/stockbook/inventory-api/internal/domain"
	"github.com/stockbook/inventory-api/internal/pkg/storage"
)

var (
	ErrNoFile             = errors.New("no selected file")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrFileTooLarge       = errors.New("file too large")
	ErrInvalidFileName    = errors.New("invalid filename")
	ErrFileNotFound       = storage.ErrFileNotFound
)

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

type AttachmentConfig struct {
	AllowedExtensions []string
	MaxSize           int64
	// PublicPrefix is prepended to stored names to build FilePath.
	PublicPrefix string
}

type AttachmentService struct {
	disk storage.Disk
	conf AttachmentConfig
}

func NewAttachmentService(disk storage.Disk, conf AttachmentConfig) *AttachmentService {
	conf.PublicPrefix = "/" + strings.Trim(conf.PublicPrefix, "/")
	exts := make([]string, 0, len(conf.AllowedExtensions))
	for _, ext := range conf.AllowedExtensions {
		exts = append(exts, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}
	conf.AllowedExtensions = exts

	return &AttachmentService{
		disk: disk,
		conf: conf,
	}
}

// Upload stores r under a unique name derived from filename.
func (s *AttachmentService) Upload(ctx context.Context, filename string, size int64, r io.Reader) (domain.Attachment, error) {
	if filename == "" {
		return domain.Attachment{}, ErrNoFile
	}
	if !s.allowed(filename) {
		return domain.Attachment{}, fmt.Errorf("%w, allowed types: %s", ErrFileTypeNotAllowed, strings.Join(s.conf.AllowedExtensions, ", "))
	}
	if s.conf.MaxSize > 0 && size > s.conf.MaxSize {
		return domain.Attachment{}, ErrFileTooLarge
	}

	name := secureFilename(filename)
	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + name
	if err := s.disk.Put(ctx, stored, r); err != nil {
		return domain.Attachment{}, fmt.Errorf("s.disk.Put -> %w", err)
	}

	return domain.Attachment{
		FilePath: s.conf.PublicPrefix + "/" + stored,
		FileName: name,
		FileSize: size,
	}, nil
}

// Open returns a stored file by its stored name and the name to offer for
// download.
func (s *AttachmentService) Open(ctx context.Context, name string) (io.ReadCloser, string, error) {
	if name == "" || strings.Contains(name, "..") || strings.ContainsAny(name, `/\`) {
		return nil, "", ErrInvalidFileName
	}

	rc, err := s.disk.Open(ctx, name)
	if err != nil {
		return nil, "", fmt.Errorf("s.disk.Open -> %w", err)
	}

	download := name
	if _, original, ok := strings.Cut(name, "_"); ok {
		download = original
	}

	return rc, download, nil
}

// Delete removes the file behind a public path returned by Upload.
func (s *AttachmentService) Delete(ctx context.Context, filePath string) error {
	name := path.Base(strings.TrimSpace(filePath))
	if name == "" || name == "." || name == "/" || name == ".." {
		return ErrInvalidFileName
	}

	if err := s.disk.Delete(ctx, name); err != nil {
		return fmt.Errorf("s.disk.Delete -> %w", err)
	}

	return nil
}

func (s *AttachmentService) allowed(filename string) bool {
	dot := strings.LastIndex(filename, ".")
	if dot < 0 {
		return false
	}

	return slices.Contains(s.conf.AllowedExtensions, strings.ToLower(filename[dot+1:]))
}

// secureFilename keeps the base name with only ASCII letters, digits, dots,
// dashes and underscores.
func secureFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.ReplaceAll(base, " ", "_")
	base = unsafeFileChars.ReplaceAllString(base, "")
	base = strings.Trim(base, "._")
	if base == "" {
		return "file"
	}

	return base
}
