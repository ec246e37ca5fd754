package repository

import (
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"
)

var (
	// ErrInvalidImageURL indicates an invalid image URL
	ErrInvalidImageURL = validation.ErrInvalidURL

	// ErrImageNotFound indicates the image was not found
	ErrImageNotFound = storage.ErrImageNotFound
)
