package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/config"
	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/observer"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/internal/strategy"
	"github.com/anime-shed/photo-inspector-go/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Version is reported by /health
const Version = "1.0.0"

// MetricsSource exposes observer counters for /stats
type MetricsSource interface {
	Snapshot() observer.MetricsSnapshot
}

// PoolSource exposes worker pool counters for /stats
type PoolSource interface {
	GetStats() analyzer.PoolStats
}

type handler struct {
	svc     service.ImageAnalysisService
	metrics MetricsSource
	pool    PoolSource
	cfg     *config.Config
}

func NewHandler(svc service.ImageAnalysisService, metrics MetricsSource, pool PoolSource, cfg *config.Config) http.Handler {
	r := gin.New()

	// Add middleware
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	h := &handler{svc: svc, metrics: metrics, pool: pool, cfg: cfg}

	// Configure routes
	r.GET("/health", healthCheck)
	r.GET("/stats", h.stats)
	r.POST("/analyze", h.analyzeURL)
	r.POST("/analyze/upload", h.analyzeUpload)
	r.POST("/analyze/batch", h.analyzeBatch)

	return r
}

func (h *handler) analyzeURL(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	opts, err := h.options(c, req.AnalysisOptionsRequest)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid analysis options", err)
		return
	}

	res, err := h.svc.AnalyzeImageURL(ctx, req.URL, opts)
	if err != nil {
		respondServiceError(c, "photo analysis failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"url":                req.URL,
		"processing_time_ms": res.ProcessingTimeMs,
		"tone":               res.Analysis.ToneAnalysis.Key,
		"dominant":           res.Analysis.Colors.Dominant,
		"temperature":        res.Analysis.Colors.Temperature,
	}).Info("Photo analysis completed successfully")

	c.JSON(http.StatusOK, res)
}

func (h *handler) analyzeUpload(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	file, err := c.FormFile("image")
	if err != nil {
		if isBodyTooLarge(err) {
			respondServiceError(c, "upload rejected", apperrors.NewPayloadTooLargeError("upload exceeds request size limit", err))
			return
		}
		respondError(c, http.StatusBadRequest, "multipart field 'image' is required", err)
		return
	}

	var optReq models.AnalysisOptionsRequest
	if err := c.ShouldBind(&optReq); err != nil {
		respondError(c, http.StatusBadRequest, "invalid analysis options", err)
		return
	}
	opts, err := h.options(c, optReq)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid analysis options", err)
		return
	}

	f, err := file.Open()
	if err != nil {
		respondServiceError(c, "upload unreadable", apperrors.NewInternalError("failed to open upload", err))
		return
	}
	defer f.Close()

	res, err := h.svc.AnalyzeUpload(ctx, f, file.Filename, opts)
	if err != nil {
		respondServiceError(c, "photo analysis failed", err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	var req models.BatchAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}
	if len(req.URLs) > h.cfg.MaxBatchSize {
		respondError(c, http.StatusBadRequest, "batch too large",
			fmt.Errorf("%d urls submitted, limit is %d", len(req.URLs), h.cfg.MaxBatchSize))
		return
	}

	opts, err := h.options(c, req.AnalysisOptionsRequest)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid analysis options", err)
		return
	}

	c.JSON(http.StatusOK, h.svc.AnalyzeBatch(ctx, req.URLs, opts))
}

func (h *handler) stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"analyses": h.metrics.Snapshot(),
		"pool":     h.pool.GetStats(),
	})
}

// options merges body options with query parameters; the query string wins.
// Explicit fields override the preset.
func (h *handler) options(c *gin.Context, req models.AnalysisOptionsRequest) (analyzer.AnalysisOptions, error) {
	if err := c.ShouldBindQuery(&req); err != nil {
		return analyzer.AnalysisOptions{}, err
	}

	preset, err := strategy.Lookup(req.Preset)
	if err != nil {
		return analyzer.AnalysisOptions{}, err
	}
	opts := strategy.NewAnalysisContext(preset).Options()

	source, err := analyzer.ParseTemperatureSource(req.TemperatureSource)
	if err != nil {
		return opts, err
	}
	opts.TemperatureSource = source
	if req.Debug {
		opts.IncludeDebug = true
	}
	if req.IncludeHistograms != nil {
		opts.IncludeHistograms = *req.IncludeHistograms
	}
	return opts, nil
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": Version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

// Middleware and helper functions
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":             c.Request.Method,
			"path":               c.Request.URL.Path,
			"status":             c.Writer.Status(),
			"ip":                 c.ClientIP(),
			"user_agent":         c.Request.UserAgent(),
			"processing_time_ms": time.Since(start).Milliseconds(),
		}).Info("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

// isBodyTooLarge detects MaxBytesReader failures, which multipart parsing does not always wrap
func isBodyTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large")
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func respondServiceError(c *gin.Context, message string, err error) {
	body := service.ToErrorResponse(err)
	code := service.StatusCode(err)

	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"error_type":  body.Type,
		"path":        c.Request.URL.Path,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, body)
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
