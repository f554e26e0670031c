package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Skotchmaster/storefront/internal/blob"
)

var allowedImageExt = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".svg": true,
}

type FileService struct {
	Store    BlobStore
	MaxBytes int64
}

func (s *FileService) Upload(ctx context.Context, name string, size int64, r io.Reader) (*blob.File, error) {
	if s.Store == nil {
		return nil, errors.New("file storage is not configured")
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedImageExt[ext] {
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrValidation, ext)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if s.MaxBytes > 0 && size > s.MaxBytes {
		return nil, fmt.Errorf("%w: file exceeds %d bytes", ErrValidation, s.MaxBytes)
	}

	f, err := s.Store.Upload(ctx, name, r)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *FileService) Delete(ctx context.Context, publicID string) error {
	if s.Store == nil {
		return errors.New("file storage is not configured")
	}
	publicID = strings.TrimSpace(publicID)
	if publicID == "" {
		return fmt.Errorf("%w: file id is required", ErrValidation)
	}
	if err := s.Store.Delete(ctx, publicID); err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return fmt.Errorf("%w: file %s", ErrNotFound, publicID)
		}
		return err
	}
	return nil
}
