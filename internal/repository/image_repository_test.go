package repository

import (
	"context"
	"errors"
	"image"
	"testing"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"
)

type fakeFetcher struct {
	deadline time.Time
	hasDL    bool
	err      error
}

func (f *fakeFetcher) FetchImage(ctx context.Context, imageURL string) (*storage.DecodedImage, error) {
	f.deadline, f.hasDL = ctx.Deadline()
	if f.err != nil {
		return nil, f.err
	}
	return &storage.DecodedImage{Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Format: "png"}, nil
}

func TestImageRepository_FetchTimeout(t *testing.T) {
	fetcher := &fakeFetcher{}
	repo := NewImageRepository(fetcher, validation.NewURLValidator(), time.Second)

	if _, err := repo.FetchImage(context.Background(), "https://example.com/a.png"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !fetcher.hasDL {
		t.Fatal("Expected the fetch context to carry a deadline")
	}
	if until := time.Until(fetcher.deadline); until > time.Second {
		t.Errorf("Expected deadline within 1s, got %v", until)
	}
}

func TestImageRepository_NoTimeout(t *testing.T) {
	fetcher := &fakeFetcher{}
	repo := NewImageRepository(fetcher, validation.NewURLValidator(), 0)

	repo.FetchImage(context.Background(), "https://example.com/a.png")
	if fetcher.hasDL {
		t.Error("Expected no deadline when fetch timeout is disabled")
	}
}

func TestImageRepository_PropagatesErrors(t *testing.T) {
	repo := NewImageRepository(&fakeFetcher{err: storage.ErrImageNotFound}, validation.NewURLValidator(), time.Second)

	_, err := repo.FetchImage(context.Background(), "https://example.com/missing.png")
	if !errors.Is(err, ErrImageNotFound) {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}
}

func TestImageRepository_ValidateImageURL(t *testing.T) {
	repo := NewImageRepository(&fakeFetcher{}, validation.NewURLValidatorWithOptions([]string{"https"}, nil), 0)

	if err := repo.ValidateImageURL("https://example.com/a.jpg"); err != nil {
		t.Errorf("Expected valid URL, got %v", err)
	}
	if err := repo.ValidateImageURL("http://example.com/a.jpg"); !errors.Is(err, ErrInvalidImageURL) {
		t.Errorf("Expected ErrInvalidImageURL, got %v", err)
	}
}
