package analyzer

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// TemperatureSource selects the buffer the temperature heuristics run on
type TemperatureSource string

const (
	// TemperatureFromSubject broadcasts the dominant color (default, numerically compatible)
	TemperatureFromSubject TemperatureSource = "subject"
	// TemperatureFromScene runs both heuristics on the full pixel buffer
	TemperatureFromScene TemperatureSource = "scene"
)

// ParseTemperatureSource accepts "", "subject" or "scene"
func ParseTemperatureSource(s string) (TemperatureSource, error) {
	switch TemperatureSource(s) {
	case "", TemperatureFromSubject:
		return TemperatureFromSubject, nil
	case TemperatureFromScene:
		return TemperatureFromScene, nil
	default:
		return "", fmt.Errorf("unknown temperature source %q (want %q or %q)", s, TemperatureFromSubject, TemperatureFromScene)
	}
}

// AnalysisOptions provides per-call configuration for the analyzer
type AnalysisOptions struct {
	TemperatureSource TemperatureSource

	// Output toggles
	IncludeDebug      bool
	IncludeHistograms bool

	// Logger scopes diagnostic lines to the calling request
	Logger *logrus.Entry
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		TemperatureSource: TemperatureFromSubject,
		IncludeDebug:      false,
		IncludeHistograms: true,
	}
}

// WithDebug returns options that keep the diagnostic trail in the result
func (opts AnalysisOptions) WithDebug() AnalysisOptions {
	opts.IncludeDebug = true
	return opts
}

// WithSceneTemperature estimates temperature from the whole image
func (opts AnalysisOptions) WithSceneTemperature() AnalysisOptions {
	opts.TemperatureSource = TemperatureFromScene
	return opts
}

// WithoutHistograms drops the 256-bin arrays from the result
func (opts AnalysisOptions) WithoutHistograms() AnalysisOptions {
	opts.IncludeHistograms = false
	return opts
}

// WithLogger attaches a call-scoped logging entry
func (opts AnalysisOptions) WithLogger(entry *logrus.Entry) AnalysisOptions {
	opts.Logger = entry
	return opts
}
