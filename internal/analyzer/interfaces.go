package analyzer

import (
	"image"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// ImageAnalyzer defines the main interface for photographic analysis
type ImageAnalyzer interface {
	// AnalyzePixels analyzes an already validated RGB buffer
	AnalyzePixels(buf PixelBuffer, options AnalysisOptions) (*models.PhotoAnalysis, error)

	// AnalyzeImage flattens a decoded image and analyzes it
	AnalyzeImage(img image.Image, options AnalysisOptions) (*models.PhotoAnalysis, error)
}
