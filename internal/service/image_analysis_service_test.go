package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"
)

// fakeRepository serves images from memory keyed by URL
type fakeRepository struct {
	images map[string]image.Image
	errs   map[string]error
}

func (f *fakeRepository) FetchImage(ctx context.Context, imageURL string) (*storage.DecodedImage, error) {
	if err, ok := f.errs[imageURL]; ok {
		return nil, err
	}
	img, ok := f.images[imageURL]
	if !ok {
		return nil, fmt.Errorf("client error: status code 404: %w", storage.ErrImageNotFound)
	}
	return &storage.DecodedImage{Image: img, Format: "png", Bytes: 123}, nil
}

func (f *fakeRepository) ValidateImageURL(imageURL string) error {
	return validation.NewURLValidator().ValidateImageURL(imageURL)
}

// blockingAnalyzer never finishes before release is closed
type blockingAnalyzer struct {
	release chan struct{}
}

func (b *blockingAnalyzer) AnalyzePixels(buf analyzer.PixelBuffer, opts analyzer.AnalysisOptions) (*models.PhotoAnalysis, error) {
	<-b.release
	return &models.PhotoAnalysis{}, nil
}

func (b *blockingAnalyzer) AnalyzeImage(img image.Image, opts analyzer.AnalysisOptions) (*models.PhotoAnalysis, error) {
	<-b.release
	return &models.PhotoAnalysis{}, nil
}

func solid(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

type testEnv struct {
	svc       ImageAnalysisService
	pool      *analyzer.WorkerPool
	publisher *observer.EventPublisher
	metrics   *observer.MetricsObserver
}

func newTestEnv(t *testing.T, repo *fakeRepository, a analyzer.ImageAnalyzer, settings Settings) *testEnv {
	t.Helper()
	pool := analyzer.NewWorkerPool(2)
	pool.Start()
	t.Cleanup(pool.Close)

	publisher := observer.NewEventPublisher()
	metrics := observer.NewMetricsObserver()
	publisher.Subscribe(metrics)

	if a == nil {
		a = analyzer.NewImageAnalyzer()
	}
	return &testEnv{
		svc:       NewImageAnalysisService(repo, a, pool, publisher, settings),
		pool:      pool,
		publisher: publisher,
		metrics:   metrics,
	}
}

func TestAnalyzeImageURL_Success(t *testing.T) {
	repo := &fakeRepository{images: map[string]image.Image{
		"https://example.com/warm.png": solid(40, 20, color.RGBA{200, 150, 80, 255}),
	}}
	env := newTestEnv(t, repo, nil, Settings{MaxImageEdge: 10, AnalysisTimeout: 5 * time.Second})

	res, err := env.svc.AnalyzeImageURL(context.Background(), "https://example.com/warm.png", analyzer.DefaultOptions())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if res.Source.URL != "https://example.com/warm.png" || res.Source.Format != "png" {
		t.Errorf("Unexpected source %+v", res.Source)
	}
	if res.Source.OriginalWidth != 40 || res.Source.OriginalHeight != 20 || !res.Source.Downscaled {
		t.Errorf("Expected downscale from 40x20, got %+v", res.Source)
	}
	if d := res.Analysis.Dimensions; d.Width != 10 || d.Height != 5 {
		t.Errorf("Expected 10x5 analysis, got %dx%d", d.Width, d.Height)
	}
	if res.Analysis.Colors.Dominant != "#c89650" {
		t.Errorf("Expected dominant #c89650, got %s", res.Analysis.Colors.Dominant)
	}
	if res.Analysis.WhiteBalance.ColorBias.Direction != "warm" {
		t.Errorf("Expected warm bias, got %s", res.Analysis.WhiteBalance.ColorBias.Direction)
	}
	if _, err := time.Parse(time.RFC3339, res.Timestamp); err != nil {
		t.Errorf("Expected RFC3339 timestamp, got %q", res.Timestamp)
	}

	env.publisher.Wait()
	snap := env.metrics.Snapshot()
	if snap.TotalAnalyses != 1 || snap.SuccessfulAnalyses != 1 || snap.BytesFetched != 123 {
		t.Errorf("Unexpected metrics %+v", snap)
	}
}

func TestAnalyzeImageURL_Errors(t *testing.T) {
	repo := &fakeRepository{
		images: map[string]image.Image{},
		errs: map[string]error{
			"https://example.com/big.png":     fmt.Errorf("fetch: %w", storage.ErrImageTooLarge),
			"https://example.com/corrupt.png": fmt.Errorf("%w: bad header", storage.ErrDecodeFailed),
			"https://example.com/slow.png":    fmt.Errorf("fetch: %w", context.DeadlineExceeded),
			"https://example.com/down.png":    fmt.Errorf("dial tcp: connection refused"),
		},
	}
	env := newTestEnv(t, repo, nil, Settings{MaxImageEdge: 50, AnalysisTimeout: time.Second})

	tests := []struct {
		url        string
		wantType   apperrors.ErrorType
		wantStatus int
	}{
		{"ftp://example.com/a.png", apperrors.ErrorTypeValidation, http.StatusBadRequest},
		{"https://example.com/missing.png", apperrors.ErrorTypeNotFound, http.StatusNotFound},
		{"https://example.com/big.png", apperrors.ErrorTypePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{"https://example.com/corrupt.png", apperrors.ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"https://example.com/slow.png", apperrors.ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"https://example.com/down.png", apperrors.ErrorTypeNetwork, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			_, err := env.svc.AnalyzeImageURL(context.Background(), tt.url, analyzer.DefaultOptions())
			if !apperrors.IsType(err, tt.wantType) {
				t.Errorf("Expected %s error, got %v", tt.wantType, err)
			}
			if got := StatusCode(err); got != tt.wantStatus {
				t.Errorf("Expected status %d, got %d", tt.wantStatus, got)
			}
		})
	}

	env.publisher.Wait()
	snap := env.metrics.Snapshot()
	if snap.FailedAnalyses != int64(len(tests)) {
		t.Errorf("Expected %d failures, got %d", len(tests), snap.FailedAnalyses)
	}
	if snap.FetchFailures != int64(len(tests)-1) {
		t.Errorf("Expected %d fetch failures, got %d", len(tests)-1, snap.FetchFailures)
	}
}

func TestAnalyzeImageURL_AnalysisTimeout(t *testing.T) {
	repo := &fakeRepository{images: map[string]image.Image{
		"https://example.com/a.png": solid(4, 4, color.RGBA{1, 2, 3, 255}),
	}}
	blocker := &blockingAnalyzer{release: make(chan struct{})}
	defer close(blocker.release)

	env := newTestEnv(t, repo, blocker, Settings{MaxImageEdge: 50, AnalysisTimeout: 20 * time.Millisecond})

	_, err := env.svc.AnalyzeImageURL(context.Background(), "https://example.com/a.png", analyzer.DefaultOptions())
	if !apperrors.IsType(err, apperrors.ErrorTypeTimeout) {
		t.Errorf("Expected timeout error, got %v", err)
	}
}

func TestAnalyzeImageURL_PoolClosed(t *testing.T) {
	repo := &fakeRepository{images: map[string]image.Image{
		"https://example.com/a.png": solid(4, 4, color.RGBA{1, 2, 3, 255}),
	}}
	env := newTestEnv(t, repo, nil, Settings{MaxImageEdge: 50, AnalysisTimeout: time.Second})
	env.pool.Close()

	_, err := env.svc.AnalyzeImageURL(context.Background(), "https://example.com/a.png", analyzer.DefaultOptions())
	if StatusCode(err) != http.StatusServiceUnavailable {
		t.Errorf("Expected 503, got %v", err)
	}
}

func TestAnalyzeUpload(t *testing.T) {
	env := newTestEnv(t, &fakeRepository{}, nil, Settings{MaxImageEdge: 400, AnalysisTimeout: 5 * time.Second})

	var buf bytes.Buffer
	if err := png.Encode(&buf, solid(8, 8, color.RGBA{255, 255, 255, 255})); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	size := int64(buf.Len())

	res, err := env.svc.AnalyzeUpload(context.Background(), &buf, "white.png", analyzer.DefaultOptions().WithoutHistograms())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Source.Filename != "white.png" || res.Source.Bytes != size || res.Source.Downscaled {
		t.Errorf("Unexpected source %+v", res.Source)
	}
	if res.Analysis.Colors.Dominant != "#ffffff" || res.Analysis.Brightness.Average != 255 {
		t.Errorf("Unexpected analysis %+v", res.Analysis.Colors)
	}
	if res.Analysis.Brightness.Histogram != nil {
		t.Error("Expected histograms to be omitted")
	}

	_, err = env.svc.AnalyzeUpload(context.Background(), strings.NewReader("not an image"), "notes.txt", analyzer.DefaultOptions())
	if !apperrors.IsType(err, apperrors.ErrorTypeProcessing) {
		t.Errorf("Expected processing error for garbage upload, got %v", err)
	}
}

func TestAnalyzeBatch(t *testing.T) {
	repo := &fakeRepository{images: map[string]image.Image{
		"https://example.com/gray.png":  solid(6, 6, color.RGBA{128, 128, 128, 255}),
		"https://example.com/white.png": solid(6, 6, color.RGBA{255, 255, 255, 255}),
	}}
	env := newTestEnv(t, repo, nil, Settings{MaxImageEdge: 50, AnalysisTimeout: 5 * time.Second, BatchConcurrency: 2})

	urls := []string{
		"https://example.com/gray.png",
		"https://example.com/missing.png",
		"https://example.com/white.png",
		"not a url",
	}
	out := env.svc.AnalyzeBatch(context.Background(), urls, analyzer.DefaultOptions())

	if len(out.Items) != len(urls) {
		t.Fatalf("Expected %d items, got %d", len(urls), len(out.Items))
	}
	if out.Succeeded != 2 || out.Failed != 2 {
		t.Errorf("Expected 2 successes and 2 failures, got %d/%d", out.Succeeded, out.Failed)
	}
	for i, item := range out.Items {
		if item.URL != urls[i] {
			t.Errorf("Item %d: expected URL %s, got %s", i, urls[i], item.URL)
		}
	}
	if out.Items[0].Result == nil || out.Items[0].Result.Analysis.Colors.Dominant != "#808080" {
		t.Errorf("Unexpected first item %+v", out.Items[0])
	}
	if out.Items[1].Error == nil || out.Items[1].Error.Type != string(apperrors.ErrorTypeNotFound) {
		t.Errorf("Expected not found for second item, got %+v", out.Items[1].Error)
	}
	if out.Items[3].Error == nil || out.Items[3].Error.Type != string(apperrors.ErrorTypeValidation) {
		t.Errorf("Expected validation error for fourth item, got %+v", out.Items[3].Error)
	}
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(apperrors.NewValidationError("bad url", nil))
	if resp.Error != "Bad Request" || resp.Message != "bad url" || resp.Type != "validation" {
		t.Errorf("Unexpected response %+v", resp)
	}

	resp = ToErrorResponse(storage.ErrImageNotFound)
	if resp.Type != "not_found" {
		t.Errorf("Expected not_found, got %+v", resp)
	}
}
