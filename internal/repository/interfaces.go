package repository

import (
	"context"

	"github.com/anime-shed/photo-inspector-go/internal/storage"
)

// ImageRepository defines the interface for image data access operations
type ImageRepository interface {
	// FetchImage retrieves and decodes an image from a URL
	FetchImage(ctx context.Context, imageURL string) (*storage.DecodedImage, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// URLValidator checks image URLs before any network access
type URLValidator interface {
	ValidateImageURL(imageURL string) error
}
