package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	"github.com/anime-shed/photo-inspector-go/internal/factory"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/repository"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/internal/transport"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"

	"github.com/sirupsen/logrus"
)

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	imageFetcher         storage.ImageFetcher
	imageAnalyzer        analyzer.ImageAnalyzer
	imageRepository      repository.ImageRepository
	imageAnalysisService service.ImageAnalysisService
	pool                 *analyzer.WorkerPool
	publisher            *observer.EventPublisher
	metrics              *observer.MetricsObserver
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	components := factory.NewComponentFactory(cfg)

	imageFetcher, err := components.StorageFactory.CreateStorage(factory.StorageType(cfg.StorageBackend))
	if err != nil {
		return nil, fmt.Errorf("failed to create image fetcher: %w", err)
	}
	imageAnalyzer, err := components.AnalyzerFactory.CreateAnalyzer(factory.StandardAnalyzer)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	if len(cfg.AllowedImageHosts) == 0 && cfg.StorageBackend == config.StorageHTTP {
		logger.Warn("ALLOWED_IMAGE_HOSTS is empty, images may be fetched from any host")
	}
	validator := validation.NewURLValidatorWithOptions([]string{"http", "https"}, cfg.AllowedImageHosts)
	imageRepository := repository.NewImageRepository(imageFetcher, validator, cfg.ImageFetchTimeout)

	pool := analyzer.NewWorkerPool(cfg.AnalysisWorkers)
	pool.Start()

	metrics := observer.NewMetricsObserver()
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	imageAnalysisService := service.NewImageAnalysisService(imageRepository, imageAnalyzer, pool, publisher, service.Settings{
		MaxImageEdge:     cfg.MaxImageEdge,
		AnalysisTimeout:  cfg.AnalysisTimeout,
		BatchConcurrency: cfg.MaxBatchSize,
	})
	handler := transport.NewHandler(imageAnalysisService, metrics, pool, cfg)

	logger.WithFields(logrus.Fields{
		"storage":        cfg.StorageBackend,
		"workers":        pool.GetStats().Workers,
		"max_image_edge": cfg.MaxImageEdge,
		"allowed_hosts":  len(cfg.AllowedImageHosts),
	}).Info("Container initialized")

	return &Container{
		config:               cfg,
		imageFetcher:         imageFetcher,
		imageAnalyzer:        imageAnalyzer,
		imageRepository:      imageRepository,
		imageAnalysisService: imageAnalysisService,
		pool:                 pool,
		publisher:            publisher,
		metrics:              metrics,
		handler:              handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Service returns the analysis service
func (c *Container) Service() service.ImageAnalysisService {
	return c.imageAnalysisService
}

// Metrics returns the counters behind /stats
func (c *Container) Metrics() observer.MetricsSnapshot {
	return c.metrics.Snapshot()
}

// Close stops the worker pool and flushes pending observer notifications
func (c *Container) Close() {
	c.pool.Close()
	c.pool.Wait()
	c.publisher.Wait()
}
