package models

// AnalysisOptionsRequest carries per-request engine options.
// Fields bind from JSON bodies, multipart forms and query strings alike.
type AnalysisOptionsRequest struct {
	Preset            string `json:"preset,omitempty" form:"preset"`
	Debug             bool   `json:"debug,omitempty" form:"debug"`
	TemperatureSource string `json:"temperatureSource,omitempty" form:"temperatureSource" binding:"omitempty,oneof=subject scene"`
	IncludeHistograms *bool  `json:"includeHistograms,omitempty" form:"includeHistograms"`
}

// AnalysisRequest represents a request for analysis of a remote image
type AnalysisRequest struct {
	URL string `json:"url" binding:"required,url"`
	AnalysisOptionsRequest
}

// BatchAnalysisRequest analyzes several remote images with shared options
type BatchAnalysisRequest struct {
	URLs []string `json:"urls" binding:"required,min=1,dive,required"`
	AnalysisOptionsRequest
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Type    string `json:"type,omitempty"`
}

// SourceInfo describes where the analyzed pixels came from
type SourceInfo struct {
	URL            string `json:"url,omitempty"`
	Filename       string `json:"filename,omitempty"`
	Format         string `json:"format"`
	Bytes          int64  `json:"bytes"`
	OriginalWidth  int    `json:"originalWidth"`
	OriginalHeight int    `json:"originalHeight"`
	Downscaled     bool   `json:"downscaled"`
}

// AnalysisResponse wraps one PhotoAnalysis with request metadata
type AnalysisResponse struct {
	Source           SourceInfo     `json:"source"`
	Timestamp        string         `json:"timestamp"`
	ProcessingTimeMs int64          `json:"processingTimeMs"`
	Analysis         *PhotoAnalysis `json:"analysis"`
}

// BatchItem is the outcome for one URL of a batch, in request order
type BatchItem struct {
	URL    string            `json:"url"`
	Result *AnalysisResponse `json:"result,omitempty"`
	Error  *ErrorResponse    `json:"error,omitempty"`
}

// BatchAnalysisResponse collects per-item outcomes. A failed item never fails the batch.
type BatchAnalysisResponse struct {
	Items            []BatchItem `json:"items"`
	Succeeded        int         `json:"succeeded"`
	Failed           int         `json:"failed"`
	ProcessingTimeMs int64       `json:"processingTimeMs"`
}
