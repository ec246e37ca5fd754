package analyzer

import (
	"math"
	"sort"
)

// MidGray is returned when no pixel can inform the dominant color
var MidGray = RGB{R: 128, G: 128, B: 128}

// DominantTier records which sampling tier produced the dominant color
type DominantTier string

const (
	TierWeighted     DominantTier = "saturation_weighted"
	TierTopSaturated DominantTier = "top_saturated"
	TierSparse       DominantTier = "sparse_colorful"
	TierBrightRegion DominantTier = "bright_region"
	TierImageMean    DominantTier = "image_mean"
	TierMidGray      DominantTier = "mid_gray"
)

type samplePixel struct {
	r, g, b    uint8
	saturation float64
}

// extractDominantColor picks a representative subject color from buf and
// reports the tier that produced it.
func extractDominantColor(buf PixelBuffer) (RGB, DominantTier) {
	n := buf.Len()
	if n == 0 {
		return MidGray, TierMidGray
	}

	vivid := make([]samplePixel, 0, n/4)
	var brightSum [3]float64
	var allSum [3]float64
	brightCount := 0

	for i := 0; i < n; i++ {
		r, g, b := buf.At(i)
		allSum[0] += float64(r)
		allSum[1] += float64(g)
		allSum[2] += float64(b)

		lum := brightness(r, g, b)
		hi, lo := maxMin(r, g, b)
		s := saturation(hi, lo)

		if isColorful(s, lum, hi, lo) {
			vivid = append(vivid, samplePixel{r: r, g: g, b: b, saturation: s})
		}
		if lum > BrightRegionMin && lum < BrightRegionMax {
			brightSum[0] += float64(r)
			brightSum[1] += float64(g)
			brightSum[2] += float64(b)
			brightCount++
		}
	}

	switch {
	case len(vivid) > 0 && float64(len(vivid)) >= ColorfulShareForWeights*float64(n):
		sortBySaturation(vivid)
		weighted := weightedAverage(vivid)
		top := topAverage(vivid, TopSaturatedShareRich)
		// the weighted mean drifts toward gray when saturation is spread out
		if saturationSpread(top) > saturationSpread(weighted) {
			return top, TierTopSaturated
		}
		return weighted, TierWeighted
	case len(vivid) > 0:
		sortBySaturation(vivid)
		return topAverage(vivid, TopSaturatedShareSparse), TierSparse
	case brightCount > 0:
		return meanColor(brightSum, brightCount), TierBrightRegion
	default:
		// only an overexposed frame keeps its own mean; dark or empty scenes read as mid-gray
		mean := meanColor(allSum, n)
		if brightness(mean.R, mean.G, mean.B) >= BrightRegionMax {
			return mean, TierImageMean
		}
		return MidGray, TierMidGray
	}
}

func saturation(hi, lo uint8) float64 {
	if hi == 0 {
		return 0
	}
	return float64(hi-lo) / float64(hi)
}

func isColorful(s, lum float64, hi, lo uint8) bool {
	return s > ColorfulSaturationMin &&
		lum > ColorfulBrightnessMin && lum < ColorfulBrightnessMax &&
		int(hi) > ColorfulMaxChannelMin &&
		int(lo) < ColorfulMinChannelMax &&
		int(hi)-int(lo) > ColorfulChannelSpread
}

// sortBySaturation orders most saturated first; ties keep scan order
func sortBySaturation(px []samplePixel) {
	sort.SliceStable(px, func(i, j int) bool {
		return px[i].saturation > px[j].saturation
	})
}

func weightedAverage(px []samplePixel) RGB {
	var r, g, b, weights float64
	for _, p := range px {
		w := p.saturation * p.saturation
		r += float64(p.r) * w
		g += float64(p.g) * w
		b += float64(p.b) * w
		weights += w
	}
	if weights == 0 {
		return MidGray
	}
	return RGB{R: toChannel(r / weights), G: toChannel(g / weights), B: toChannel(b / weights)}
}

// topAverage averages the most saturated share of px, at least TopSaturatedMinCount pixels.
// px must already be sorted by saturation.
func topAverage(px []samplePixel, share float64) RGB {
	count := int(math.Ceil(float64(len(px)) * share))
	if count < TopSaturatedMinCount {
		count = TopSaturatedMinCount
	}
	if count > len(px) {
		count = len(px)
	}

	var sum [3]float64
	for _, p := range px[:count] {
		sum[0] += float64(p.r)
		sum[1] += float64(p.g)
		sum[2] += float64(p.b)
	}
	return meanColor(sum, count)
}

func meanColor(sum [3]float64, count int) RGB {
	if count == 0 {
		return MidGray
	}
	n := float64(count)
	return RGB{R: toChannel(sum[0] / n), G: toChannel(sum[1] / n), B: toChannel(sum[2] / n)}
}

// saturationSpread is the largest pairwise channel difference
func saturationSpread(c RGB) int {
	rg := absInt(int(c.R) - int(c.G))
	gb := absInt(int(c.G) - int(c.B))
	rb := absInt(int(c.R) - int(c.B))
	return maxInt(rg, maxInt(gb, rb))
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
