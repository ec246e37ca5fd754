package analyzer

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// ContrastMetrics holds four contrast formulas and their weighted composite, each in [0,1]
type ContrastMetrics struct {
	Global    float64
	RMS       float64
	Michelson float64
	Weber     float64
	Composite float64
}

// binValues holds the luminance value of each histogram bin
var binValues = func() []float64 {
	v := make([]float64, histogramBins)
	for i := range v {
		v[i] = float64(i)
	}
	return v
}()

// CalculateContrast derives contrast metrics from brightness stats and the luminance histogram.
// Zero denominators yield 0 rather than NaN or Inf.
func CalculateContrast(stats BrightnessStats, luminance [histogramBins]int, pixelCount int) ContrastMetrics {
	spread := stats.Max - stats.Min

	var m ContrastMetrics
	if spread > 0 {
		m.Global = spread / maxChannel
	}
	if pixelCount > 0 {
		m.RMS = luminanceStdDev(luminance) / maxChannel
	}
	if denom := stats.Max + stats.Min; denom > 0 && spread > 0 {
		m.Michelson = spread / denom
	}
	if stats.Average > 0 && spread > 0 {
		// normalized once more so it sits on the same scale as the others
		m.Weber = math.Min((spread/stats.Average)/maxChannel, 1)
	}

	m.Global = clamp(m.Global, 0, 1)
	m.RMS = clamp(m.RMS, 0, 1)
	m.Michelson = clamp(m.Michelson, 0, 1)
	m.Composite = CompositeGlobalWeight*m.Global +
		CompositeRMSWeight*m.RMS +
		CompositeMichelsonWeight*m.Michelson +
		CompositeWeberWeight*m.Weber
	return m
}

// luminanceStdDev is the population standard deviation of the histogram
func luminanceStdDev(luminance [histogramBins]int) float64 {
	weights := make([]float64, histogramBins)
	var total float64
	for i, c := range luminance {
		weights[i] = float64(c)
		total += weights[i]
	}
	if total == 0 {
		return 0
	}

	_, variance := stat.PopMeanVariance(binValues, weights)
	if variance <= 0 || math.IsNaN(variance) {
		return 0
	}
	return math.Sqrt(variance)
}
