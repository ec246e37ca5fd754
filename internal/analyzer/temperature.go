package analyzer

import "math"

// ColorTemperature holds both Kelvin estimates and their rounded mean.
// All values lie in [TemperatureMin, TemperatureMax].
type ColorTemperature struct {
	WhitePatch      int
	HistogramCenter int
	Final           int
}

// EstimateTemperature runs the white-patch and histogram-centroid heuristics on buf
func EstimateTemperature(buf PixelBuffer) ColorTemperature {
	wp := int(math.Round(whitePatchTemperature(buf)))
	hc := int(math.Round(histogramCenterTemperature(buf)))
	return ColorTemperature{
		WhitePatch:      wp,
		HistogramCenter: hc,
		Final:           int(math.Round(float64(wp+hc) / 2)),
	}
}

// whitePatchTemperature treats pixels brighter than WhitePatchBrightnessMin as
// a neutral reflector and maps their red/blue ratio to Kelvin.
func whitePatchTemperature(buf PixelBuffer) float64 {
	var sumR, sumB float64
	count := 0
	for i := 0; i < buf.Len(); i++ {
		r, g, b := buf.At(i)
		if brightness(r, g, b) > WhitePatchBrightnessMin {
			sumR += float64(r)
			sumB += float64(b)
			count++
		}
	}
	if count == 0 {
		return TemperatureDefault
	}

	meanR := sumR / float64(count)
	meanB := sumB / float64(count)
	ratio := meanR / math.Max(meanB, 1)

	var temp float64
	switch {
	case ratio > WhitePatchWarmRatio:
		temp = math.Max(TemperatureMin, 4000-(ratio-1)*1500)
	case ratio < WhitePatchCoolRatio:
		temp = math.Min(TemperatureMax, 6000+(1-ratio)*2000)
	default:
		temp = 5000 + (ratio-1)*1000
	}
	return clamp(temp, TemperatureMin, TemperatureMax)
}

// histogramCenterTemperature compares the red and blue histogram centroids.
// A red-heavy distribution reads as a warm, low-Kelvin scene.
func histogramCenterTemperature(buf PixelBuffer) float64 {
	hist, _ := BuildHistogram(buf)
	redCenter := centroid(&hist.Red, HistogramCentroidFallback)
	blueCenter := centroid(&hist.Blue, HistogramCentroidFallback)

	ratio := redCenter / math.Max(blueCenter, 1)
	return clamp(5000-(ratio-1)*2000, TemperatureMin, TemperatureMax)
}

// WarmCoolIndex is a quick warm/cool lean of c in [-1,1], from its normalized channel proportions
func WarmCoolIndex(c RGB) float64 {
	sum := float64(c.R) + float64(c.G) + float64(c.B)
	if sum == 0 {
		return 0
	}
	r, g, b := float64(c.R)/sum, float64(c.G)/sum, float64(c.B)/sum
	return clamp((r+0.5*g-b)/(r+0.5*g+b+0.001), -1, 1)
}
