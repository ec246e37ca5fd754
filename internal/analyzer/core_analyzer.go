package analyzer

import (
	"image"
	"math"

	"github.com/anime-shed/photo-inspector-go/pkg/models"
)

// Result holds the unrounded output of every pipeline stage
type Result struct {
	Width, Height int
	Histogram     Histogram
	Brightness    BrightnessStats
	Dominant      RGB
	DominantTier  DominantTier
	Temperature   ColorTemperature
	WarmCoolIndex float64
	Contrast      ContrastMetrics
	WhiteBalance  WhiteBalance
	Tone          ToneClassification
	Debug         []string
}

// coreAnalyzer implements ImageAnalyzer. It holds no state between calls.
type coreAnalyzer struct{}

// NewImageAnalyzer creates a new image analyzer
func NewImageAnalyzer() ImageAnalyzer {
	return &coreAnalyzer{}
}

// AnalyzeImage flattens img and runs the pipeline on it
func (ca *coreAnalyzer) AnalyzeImage(img image.Image, options AnalysisOptions) (*models.PhotoAnalysis, error) {
	return ca.AnalyzePixels(FromImage(img), options)
}

// AnalyzePixels runs the full pipeline and converts the result to the output contract
func (ca *coreAnalyzer) AnalyzePixels(buf PixelBuffer, options AnalysisOptions) (*models.PhotoAnalysis, error) {
	result, err := Analyze(buf, options)
	if err != nil {
		return nil, err
	}
	return result.ToModel(options.IncludeHistograms), nil
}

// Analyze runs histogram, dominant color, temperature, contrast, white balance
// and tone classification over buf. The histogram feeds every later stage.
func Analyze(buf PixelBuffer, options AnalysisOptions) (*Result, error) {
	buf, err := NewPixelBuffer(buf.Pix, buf.Width, buf.Height)
	if err != nil {
		return nil, err
	}
	tr := newTrace(options.Logger, options.IncludeDebug)
	n := buf.Len()

	hist, stats := BuildHistogram(buf)
	tr.addf("histogram", "%d pixels, brightness avg %.2f min %.0f max %.0f", n, stats.Average, stats.Min, stats.Max)

	dominant, tier := extractDominantColor(buf)
	tr.addf("dominant_color", "%s via %s", dominant.Hex(), tier)

	source, tempSource := TemperatureFromSubject, broadcastColor(dominant, n)
	if options.TemperatureSource == TemperatureFromScene {
		source, tempSource = TemperatureFromScene, buf
	}
	temperature := EstimateTemperature(tempSource)
	tr.addf("temperature", "white patch %dK, histogram center %dK, final %dK (%s)",
		temperature.WhitePatch, temperature.HistogramCenter, temperature.Final, source)

	contrast := CalculateContrast(stats, hist.Luminance, n)
	tr.addf("contrast", "global %.3f rms %.3f michelson %.3f weber %.4f composite %.3f",
		contrast.Global, contrast.RMS, contrast.Michelson, contrast.Weber, contrast.Composite)

	wb := analyzeWhiteBalance(buf, temperature.Final, dominant, tr)

	tone := ClassifyTone(hist.Luminance, stats, contrast.Global)
	tr.addf("tone", "%s (%s) notation %s", tone.Type, tone.Key, tone.Notation)

	return &Result{
		Width:         buf.Width,
		Height:        buf.Height,
		Histogram:     hist,
		Brightness:    stats,
		Dominant:      dominant,
		DominantTier:  tier,
		Temperature:   temperature,
		WarmCoolIndex: WarmCoolIndex(dominant),
		Contrast:      contrast,
		WhiteBalance:  wb,
		Tone:          tone,
		Debug:         tr.Lines(),
	}, nil
}

// ToModel applies output rounding and builds the serializable result
func (r *Result) ToModel(includeHistograms bool) *models.PhotoAnalysis {
	out := &models.PhotoAnalysis{
		Dimensions: models.Dimensions{Width: r.Width, Height: r.Height},
		Brightness: models.BrightnessAnalysis{
			Average: int(math.Round(r.Brightness.Average)),
			Min:     int(r.Brightness.Min),
			Max:     int(r.Brightness.Max),
		},
		Colors: models.ColorAnalysis{
			Dominant:    r.Dominant.Hex(),
			Temperature: r.Temperature.Final,
			TemperatureMethods: models.TemperatureMethods{
				WhitePatch:      r.Temperature.WhitePatch,
				HistogramCenter: r.Temperature.HistogramCenter,
			},
			WarmCoolIndex: round2(r.WarmCoolIndex),
		},
		WhiteBalance: models.WhiteBalanceAnalysis{
			ColorBias: models.ColorBias{
				Overall:   r.WhiteBalance.Bias.Overall,
				Degree:    round2(r.WhiteBalance.Bias.Degree),
				Direction: string(r.WhiteBalance.Bias.Direction),
			},
			WhiteBalanceAssessment: models.WhiteBalanceAssessment{
				IsCorrect:           r.WhiteBalance.Assessment.IsCorrect,
				SuggestedAdjustment: r.WhiteBalance.Assessment.SuggestedAdjustment,
				Suggestion:          r.WhiteBalance.Assessment.Suggestion,
				Confidence:          r.WhiteBalance.Assessment.Confidence,
			},
			NeutralGrayDeviation: models.NeutralGrayDeviation{
				RedDeviation:  round2(r.WhiteBalance.Deviation.RedDeviation),
				BlueDeviation: round2(r.WhiteBalance.Deviation.BlueDeviation),
				Severity:      string(r.WhiteBalance.Deviation.Severity),
			},
			Debug: r.Debug,
		},
		Contrast: models.ContrastAnalysis{
			Global:    round2(r.Contrast.Global),
			RMS:       round2(r.Contrast.RMS),
			Michelson: round2(r.Contrast.Michelson),
			Weber:     round2(r.Contrast.Weber),
			Composite: round2(r.Contrast.Composite),
		},
		ToneAnalysis: models.ToneAnalysis{
			Type:           r.Tone.Type,
			Key:            r.Tone.Key,
			Confidence:     r.Tone.Confidence,
			ShadowRatio:    round2(r.Tone.Shares.Low / 100),
			MidtoneRatio:   round2(r.Tone.Shares.Mid / 100),
			HighlightRatio: round2(r.Tone.Shares.High / 100),
			Factors:        r.Tone.Factors,
			Notation:       r.Tone.Notation,
			Zones: models.ToneZones{
				Low:  int(math.Round(r.Tone.Shares.Low)),
				Mid:  int(math.Round(r.Tone.Shares.Mid)),
				High: int(math.Round(r.Tone.Shares.High)),
			},
		},
	}

	if includeHistograms {
		out.Brightness.Histogram = r.Histogram.Luminance[:]
		out.Brightness.RGBHistograms = &models.RGBHistograms{
			Red:   r.Histogram.Red[:],
			Green: r.Histogram.Green[:],
			Blue:  r.Histogram.Blue[:],
		}
	}
	return out
}
