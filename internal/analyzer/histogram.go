package analyzer

import "math"

// Histogram holds per-channel and luminance counts for one image.
// Every channel sums to the pixel count.
type Histogram struct {
	Red       [histogramBins]int
	Green     [histogramBins]int
	Blue      [histogramBins]int
	Luminance [histogramBins]int
}

// BrightnessStats summarizes per-pixel luminance, (r+g+b)/3
type BrightnessStats struct {
	Average float64
	Min     float64
	Max     float64
}

// BuildHistogram scans buf once and returns its histograms and brightness stats.
// Luminance bins use the rounded channel mean; average, min and max use the same value.
func BuildHistogram(buf PixelBuffer) (Histogram, BrightnessStats) {
	var hist Histogram
	n := buf.Len()
	if n == 0 {
		return hist, BrightnessStats{}
	}

	minLum, maxLum := histogramBins-1, 0
	var total int64
	for i := 0; i < n; i++ {
		r, g, b := buf.At(i)
		hist.Red[r]++
		hist.Green[g]++
		hist.Blue[b]++

		lum := luminanceBin(r, g, b)
		hist.Luminance[lum]++
		total += int64(lum)
		if lum < minLum {
			minLum = lum
		}
		if lum > maxLum {
			maxLum = lum
		}
	}

	return hist, BrightnessStats{
		Average: float64(total) / float64(n),
		Min:     float64(minLum),
		Max:     float64(maxLum),
	}
}

func luminanceBin(r, g, b uint8) int {
	return int(math.Round(brightness(r, g, b)))
}

// centroid returns the count-weighted mean bin index, or fallback for an empty histogram
func centroid(counts *[histogramBins]int, fallback float64) float64 {
	var sum, weighted float64
	for i, c := range counts {
		sum += float64(c)
		weighted += float64(i) * float64(c)
	}
	if sum == 0 {
		return fallback
	}
	return weighted / sum
}
