package repository

import (
	"context"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/storage"
)

// imageRepository implements ImageRepository on top of a storage backend
type imageRepository struct {
	fetcher      storage.ImageFetcher
	validator    URLValidator
	fetchTimeout time.Duration
}

// NewImageRepository creates an image repository. A fetchTimeout <= 0 leaves
// the caller's deadline as the only bound.
func NewImageRepository(fetcher storage.ImageFetcher, validator URLValidator, fetchTimeout time.Duration) ImageRepository {
	return &imageRepository{
		fetcher:      fetcher,
		validator:    validator,
		fetchTimeout: fetchTimeout,
	}
}

// FetchImage retrieves an image from a URL
func (r *imageRepository) FetchImage(ctx context.Context, imageURL string) (*storage.DecodedImage, error) {
	if r.fetchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.fetchTimeout)
		defer cancel()
	}
	return r.fetcher.FetchImage(ctx, imageURL)
}

// ValidateImageURL validates if the provided URL is acceptable
func (r *imageRepository) ValidateImageURL(imageURL string) error {
	return r.validator.ValidateImageURL(imageURL)
}
