package service

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/repository"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/pkg/models"

	"github.com/sirupsen/logrus"
)

// ImageAnalysisService fetches or receives images and runs the photo analysis engine on them
type ImageAnalysisService interface {
	// AnalyzeImageURL fetches a remote image and analyzes it
	AnalyzeImageURL(ctx context.Context, imageURL string, options analyzer.AnalysisOptions) (*models.AnalysisResponse, error)

	// AnalyzeUpload decodes an uploaded image and analyzes it
	AnalyzeUpload(ctx context.Context, r io.Reader, filename string, options analyzer.AnalysisOptions) (*models.AnalysisResponse, error)

	// AnalyzeBatch analyzes several URLs. Item failures are reported per item.
	AnalyzeBatch(ctx context.Context, imageURLs []string, options analyzer.AnalysisOptions) *models.BatchAnalysisResponse

	// Common validation
	ValidateImageURL(imageURL string) error
}

// Settings tunes the service
type Settings struct {
	// MaxImageEdge bounds the longest edge handed to the engine
	MaxImageEdge int
	// AnalysisTimeout bounds queueing plus analysis of one image
	AnalysisTimeout time.Duration
	// BatchConcurrency bounds concurrent fetches within one batch
	BatchConcurrency int
}

type imageAnalysisService struct {
	imageRepo repository.ImageRepository
	analyzer  analyzer.ImageAnalyzer
	pool      *analyzer.WorkerPool
	events    observer.Subject
	settings  Settings
}

// NewImageAnalysisService creates a new image analysis service. events may be nil.
func NewImageAnalysisService(
	imageRepository repository.ImageRepository,
	imageAnalyzer analyzer.ImageAnalyzer,
	pool *analyzer.WorkerPool,
	events observer.Subject,
	settings Settings,
) ImageAnalysisService {
	if settings.BatchConcurrency <= 0 {
		settings.BatchConcurrency = 4
	}
	return &imageAnalysisService{
		imageRepo: imageRepository,
		analyzer:  imageAnalyzer,
		pool:      pool,
		events:    events,
		settings:  settings,
	}
}

func (s *imageAnalysisService) AnalyzeImageURL(ctx context.Context, imageURL string, options analyzer.AnalysisOptions) (*models.AnalysisResponse, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: imageURL})

	if err := s.ValidateImageURL(imageURL); err != nil {
		return nil, s.fail(ctx, imageURL, start, err)
	}

	img, err := s.imageRepo.FetchImage(ctx, imageURL)
	if err != nil {
		appErr := mapError(err)
		s.publish(ctx, observer.AnalysisEvent{
			EventType:    observer.ImageFetchFailed,
			Source:       imageURL,
			ErrorMessage: err.Error(),
			Metadata:     map[string]interface{}{observer.MetaErrorType: string(appErr.Type)},
		})
		return nil, s.fail(ctx, imageURL, start, appErr)
	}
	s.publishFetched(ctx, imageURL, img)

	return s.run(ctx, models.SourceInfo{URL: imageURL}, img, options, start)
}

func (s *imageAnalysisService) AnalyzeUpload(ctx context.Context, r io.Reader, filename string, options analyzer.AnalysisOptions) (*models.AnalysisResponse, error) {
	start := time.Now()
	s.publish(ctx, observer.AnalysisEvent{EventType: observer.AnalysisStarted, Source: filename})

	img, err := storage.DecodeImage(r)
	if err != nil {
		return nil, s.fail(ctx, filename, start, err)
	}
	s.publishFetched(ctx, filename, img)

	return s.run(ctx, models.SourceInfo{Filename: filename}, img, options, start)
}

func (s *imageAnalysisService) AnalyzeBatch(ctx context.Context, imageURLs []string, options analyzer.AnalysisOptions) *models.BatchAnalysisResponse {
	start := time.Now()
	items := make([]models.BatchItem, len(imageURLs))

	sem := make(chan struct{}, s.settings.BatchConcurrency)
	var wg sync.WaitGroup
	for i, u := range imageURLs {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			items[i].URL = u

			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				items[i].Error = ToErrorResponse(mapError(ctx.Err()))
				return
			}

			res, err := s.AnalyzeImageURL(ctx, u, options)
			if err != nil {
				items[i].Error = ToErrorResponse(err)
				return
			}
			items[i].Result = res
		}(i, u)
	}
	wg.Wait()

	out := &models.BatchAnalysisResponse{Items: items, ProcessingTimeMs: time.Since(start).Milliseconds()}
	for _, item := range items {
		if item.Error != nil {
			out.Failed++
		} else {
			out.Succeeded++
		}
	}
	return out
}

// ValidateImageURL validates the image URL
func (s *imageAnalysisService) ValidateImageURL(imageURL string) error {
	return s.imageRepo.ValidateImageURL(imageURL)
}

// run analyzes a decoded image on the worker pool and builds the response
func (s *imageAnalysisService) run(ctx context.Context, source models.SourceInfo, img *storage.DecodedImage, options analyzer.AnalysisOptions, start time.Time) (*models.AnalysisResponse, error) {
	sourceName := source.URL
	if sourceName == "" {
		sourceName = source.Filename
	}

	bounds := img.Image.Bounds()
	source.Format = img.Format
	source.Bytes = img.Bytes
	source.OriginalWidth = bounds.Dx()
	source.OriginalHeight = bounds.Dy()

	if options.Logger == nil {
		options.Logger = logger.WithFields(logrus.Fields{"component": "analyzer", "source": sourceName})
	}

	analysis, err := s.analyze(ctx, img, options)
	if err != nil {
		return nil, s.fail(ctx, sourceName, start, err)
	}
	source.Downscaled = analysis.Dimensions.Width != source.OriginalWidth || analysis.Dimensions.Height != source.OriginalHeight

	elapsed := time.Since(start)
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisCompleted,
		Source:         sourceName,
		ProcessingTime: elapsed,
		Success:        true,
		Metadata: map[string]interface{}{
			observer.MetaToneKey:     analysis.ToneAnalysis.Key,
			observer.MetaDominant:    analysis.Colors.Dominant,
			observer.MetaTemperature: analysis.Colors.Temperature,
		},
	})

	return &models.AnalysisResponse{
		Source:           source,
		Timestamp:        start.UTC().Format(time.RFC3339),
		ProcessingTimeMs: elapsed.Milliseconds(),
		Analysis:         analysis,
	}, nil
}

// analyze normalizes and analyzes img on the shared pool under the analysis timeout
func (s *imageAnalysisService) analyze(ctx context.Context, img *storage.DecodedImage, options analyzer.AnalysisOptions) (*models.PhotoAnalysis, error) {
	if s.settings.AnalysisTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.settings.AnalysisTimeout)
		defer cancel()
	}

	type outcome struct {
		analysis *models.PhotoAnalysis
		err      error
	}
	done := make(chan outcome, 1)

	job := func() {
		if err := ctx.Err(); err != nil {
			done <- outcome{err: err}
			return
		}
		normalized := storage.Normalize(img.Image, s.settings.MaxImageEdge)
		analysis, err := s.analyzer.AnalyzeImage(normalized, options)
		done <- outcome{analysis: analysis, err: err}
	}

	if err := s.pool.SubmitContext(ctx, job); err != nil {
		return nil, err
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-done:
		return o.analysis, o.err
	}
}

func (s *imageAnalysisService) fail(ctx context.Context, source string, start time.Time, err error) *apperrors.AppError {
	appErr := mapError(err)
	s.publish(ctx, observer.AnalysisEvent{
		EventType:      observer.AnalysisFailed,
		Source:         source,
		ProcessingTime: time.Since(start),
		ErrorMessage:   err.Error(),
		Metadata:       map[string]interface{}{observer.MetaErrorType: string(appErr.Type)},
	})
	return appErr
}

func (s *imageAnalysisService) publishFetched(ctx context.Context, source string, img *storage.DecodedImage) {
	b := img.Image.Bounds()
	s.publish(ctx, observer.AnalysisEvent{
		EventType: observer.ImageFetched,
		Source:    source,
		Success:   true,
		Metadata: map[string]interface{}{
			observer.MetaFormat: img.Format,
			observer.MetaBytes:  img.Bytes,
			observer.MetaWidth:  b.Dx(),
			observer.MetaHeight: b.Dy(),
		},
	})
}

func (s *imageAnalysisService) publish(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = time.Now()
	s.events.NotifyObservers(ctx, event)
}

// mapError turns storage, pool and context failures into AppErrors
func mapError(err error) *apperrors.AppError {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr
	}
	switch {
	case errors.Is(err, storage.ErrImageNotFound):
		return apperrors.NewNotFoundError("image not found", err)
	case errors.Is(err, storage.ErrImageTooLarge):
		return apperrors.NewPayloadTooLargeError("image too large", err)
	case errors.Is(err, storage.ErrDecodeFailed):
		return apperrors.NewProcessingError("unsupported or corrupt image", err)
	case errors.Is(err, analyzer.ErrPoolClosed):
		return apperrors.NewUnavailableError("analysis workers are shut down", err)
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("analysis timed out", err)
	case errors.Is(err, context.Canceled):
		return apperrors.NewTimeoutError("request cancelled", err)
	default:
		return apperrors.NewNetworkError("failed to fetch image", err)
	}
}
