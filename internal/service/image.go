package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Brodino96/TasteTracker/internal/domain"
	"github.com/Brodino96/TasteTracker/internal/storage"
	apperrors "github.com/Brodino96/TasteTracker/pkg/errors"
)

// ImageService validates and stores uploaded images.
type ImageService struct {
	storage storage.Storage
	logger  *slog.Logger
}

// NewImageService creates a new image service.
func NewImageService(st storage.Storage, logger *slog.Logger) *ImageService {
	return &ImageService{storage: st, logger: logger}
}

// Upload stores img under "<owner>/<uuid>.<ext>".
func (s *ImageService) Upload(ctx context.Context, owner string, img *domain.ImageUpload) (*domain.StoredImage, error) {
	if !domain.IsValidImageOwner(owner) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%s: %q", domain.ErrInvalidImageOwner, owner))
	}
	if err := img.Validate(); err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	res, err := s.storage.Upload(ctx, &storage.UploadInput{
		Key:         storage.NewKey(owner, img.Extension()),
		ContentType: img.ContentType,
		Size:        img.Size,
		Data:        img.Data,
	})
	if err != nil {
		return nil, apperrors.Upstream("image upload failed", err)
	}

	s.logger.InfoContext(ctx, "image uploaded",
		slog.String("key", res.Key),
		slog.String("content_type", img.ContentType),
		slog.Int64("size", img.Size),
	)
	return &domain.StoredImage{Key: res.Key, URL: res.URL}, nil
}

// Discard deletes an image and only logs a failure. Used for replaced
// images and for rolling back uploads whose record was never written.
func (s *ImageService) Discard(ctx context.Context, key, reason string) {
	if key == "" {
		return
	}
	if err := s.storage.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to delete image",
			slog.String("key", key),
			slog.String("reason", reason),
			slog.String("error", err.Error()),
		)
		return
	}
	s.logger.InfoContext(ctx, "image deleted",
		slog.String("key", key),
		slog.String("reason", reason),
	)
}
