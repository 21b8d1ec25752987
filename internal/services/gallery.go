package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/savoria-catering/apiserver/internal/storage"
	"github.com/savoria-catering/apiserver/pkg/logger"
	"github.com/savoria-catering/apiserver/types"
)

var (
	// ErrInvalidImage is returned when an upload fails basic validation.
	ErrInvalidImage = errors.New("invalid image")

	// ErrStorageDisabled is returned when no object storage backend is
	// configured.
	ErrStorageDisabled = errors.New("object storage not configured")
)

// GalleryRepository defines persistence operations for gallery records.
type GalleryRepository interface {
	Create(ctx context.Context, image types.GalleryImage) (types.GalleryImage, error)
	Get(ctx context.Context, id int) (types.GalleryImage, error)
	List(ctx context.Context, offset, limit int) ([]types.GalleryImage, int, error)
	Delete(ctx context.Context, id int) error
}

// GalleryService stores image binaries in object storage and their metadata
// in the gallery repository.
type GalleryService struct {
	repo    GalleryRepository
	storage *storage.Storage
}

func NewGalleryService(repo GalleryRepository, objectStorage *storage.Storage) *GalleryService {
	return &GalleryService{repo: repo, storage: objectStorage}
}

// Upload streams the image into object storage under a fresh key, then
// records it. The object is removed again if the record cannot be written.
func (s *GalleryService) Upload(ctx context.Context, title, filename, contentType string, size int64, r io.Reader) (types.GalleryImage, error) {
	if s.storage == nil {
		return types.GalleryImage{}, ErrStorageDisabled
	}
	title = strings.TrimSpace(title)
	if title == "" || size <= 0 {
		return types.GalleryImage{}, ErrInvalidImage
	}

	key := "gallery/" + uuid.NewString() + strings.ToLower(path.Ext(filename))
	if err := s.storage.Put(ctx, key, r, size, contentType); err != nil {
		return types.GalleryImage{}, fmt.Errorf("store object: %w", err)
	}

	image, err := s.repo.Create(ctx, types.GalleryImage{
		Title:       title,
		ObjectKey:   key,
		ContentType: contentType,
		SizeBytes:   size,
	})
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			logger.Get().Error().Err(delErr).Str("key", key).Msg("failed to remove orphaned gallery object")
		}
		return types.GalleryImage{}, fmt.Errorf("create gallery record: %w", err)
	}
	return image, nil
}

func (s *GalleryService) List(ctx context.Context, offset, limit int) ([]types.GalleryImage, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.repo.List(ctx, offset, limit)
}

func (s *GalleryService) Get(ctx context.Context, id int) (types.GalleryImage, error) {
	return s.repo.Get(ctx, id)
}

// Open returns the image record together with a reader over its binary
// content. The caller owns closing the reader.
func (s *GalleryService) Open(ctx context.Context, id int) (types.GalleryImage, io.ReadCloser, error) {
	if s.storage == nil {
		return types.GalleryImage{}, nil, ErrStorageDisabled
	}

	image, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.GalleryImage{}, nil, err
	}

	reader, err := s.storage.Get(ctx, image.ObjectKey)
	if err != nil {
		return types.GalleryImage{}, nil, fmt.Errorf("open object: %w", err)
	}
	return image, reader, nil
}

// Delete removes the record and then the stored object. A failed object
// delete is logged but does not resurrect the record.
func (s *GalleryService) Delete(ctx context.Context, id int) error {
	image, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	if s.storage != nil {
		if err := s.storage.Delete(ctx, image.ObjectKey); err != nil {
			logger.Get().Error().Err(err).Str("key", image.ObjectKey).Msg("failed to delete gallery object")
		}
	}
	return nil
}
