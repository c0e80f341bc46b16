// Package media serves the media upload endpoint.
package media

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/mediaupload/service/internal/storage"
	"github.com/mediaupload/service/internal/upload"
)

// Service hands uploaded files to the configured storage provider.
type Service struct {
	store  storage.Uploader
	folder string
	log    *zap.Logger
}

// NewService creates a new media Service storing files under folder.
func NewService(store storage.Uploader, folder string, log *zap.Logger) *Service {
	return &Service{store: store, folder: folder, log: log}
}

// Upload streams f to the provider and returns the provider's descriptor unchanged.
func (s *Service) Upload(ctx context.Context, f *upload.File) (storage.Descriptor, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %q: %w: %w", f.Filename, storage.ErrInvalidInput, err)
	}
	defer rc.Close()

	d, err := s.store.Upload(ctx, storage.File{
		Filename:    f.Filename,
		ContentType: f.ContentType,
		Size:        f.Size,
		Reader:      rc,
	}, storage.Options{Folder: s.folder})
	if err != nil {
		return nil, fmt.Errorf("upload %q: %w", f.Filename, err)
	}

	s.log.Info("media uploaded",
		zap.String("filename", f.Filename),
		zap.Int64("size", f.Size),
		zap.String("folder", s.folder),
	)
	return d, nil
}
