package models

// PhotoAnalysis is the complete result of one photographic analysis.
// Ratios and metrics carry two decimals; counts, levels and percentages are integers.
type PhotoAnalysis struct {
	Dimensions   Dimensions           `json:"dimensions"`
	Brightness   BrightnessAnalysis   `json:"brightness"`
	Colors       ColorAnalysis        `json:"colors"`
	WhiteBalance WhiteBalanceAnalysis `json:"whiteBalance"`
	Contrast     ContrastAnalysis     `json:"contrast"`
	ToneAnalysis ToneAnalysis         `json:"toneAnalysis"`
}

// Dimensions of the analyzed (possibly downscaled) buffer
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// BrightnessAnalysis holds luminance statistics and histograms
type BrightnessAnalysis struct {
	Average       int            `json:"average"`
	Min           int            `json:"min"`
	Max           int            `json:"max"`
	Histogram     []int          `json:"histogram,omitempty"`
	RGBHistograms *RGBHistograms `json:"rgbHistograms,omitempty"`
}

// RGBHistograms are the 256-bin per-channel histograms
type RGBHistograms struct {
	Red   []int `json:"red"`
	Green []int `json:"green"`
	Blue  []int `json:"blue"`
}

// ColorAnalysis holds the dominant color and temperature estimates
type ColorAnalysis struct {
	Dominant           string             `json:"dominant"`
	Temperature        int                `json:"temperature"`
	TemperatureMethods TemperatureMethods `json:"temperatureMethods"`
	WarmCoolIndex      float64            `json:"warmCoolIndex"`
}

// TemperatureMethods are the two independent Kelvin estimates
type TemperatureMethods struct {
	WhitePatch      int `json:"whitePatch"`
	HistogramCenter int `json:"histogramCenter"`
}

// WhiteBalanceAnalysis reports neutral-gray bias and a correction hint
type WhiteBalanceAnalysis struct {
	ColorBias              ColorBias              `json:"colorBias"`
	WhiteBalanceAssessment WhiteBalanceAssessment `json:"whiteBalanceAssessment"`
	NeutralGrayDeviation   NeutralGrayDeviation   `json:"neutralGrayDeviation"`
	Debug                  []string               `json:"debug,omitempty"`
}

// ColorBias describes the cast direction and magnitude
type ColorBias struct {
	Overall   string  `json:"overall"`
	Degree    float64 `json:"degree"`
	Direction string  `json:"direction"`
}

// WhiteBalanceAssessment is the correctness verdict.
// SuggestedAdjustment is a signed Kelvin shift; negative cools the rendering.
type WhiteBalanceAssessment struct {
	IsCorrect           bool    `json:"isCorrect"`
	SuggestedAdjustment int     `json:"suggestedAdjustment"`
	Suggestion          string  `json:"suggestion"`
	Confidence          float64 `json:"confidence"`
}

// NeutralGrayDeviation is the per-channel offset of the neutral reference
type NeutralGrayDeviation struct {
	RedDeviation  float64 `json:"redDeviation"`
	BlueDeviation float64 `json:"blueDeviation"`
	Severity      string  `json:"severity"`
}

// ContrastAnalysis holds the four contrast metrics and their composite
type ContrastAnalysis struct {
	Global    float64 `json:"global"`
	RMS       float64 `json:"rms"`
	Michelson float64 `json:"michelson"`
	Weber     float64 `json:"weber"`
	Composite float64 `json:"composite"`
}

// ToneAnalysis is the zone-system tone classification
type ToneAnalysis struct {
	Type           string    `json:"type"`
	Key            string    `json:"key"`
	Confidence     float64   `json:"confidence"`
	ShadowRatio    float64   `json:"shadowRatio"`
	MidtoneRatio   float64   `json:"midtoneRatio"`
	HighlightRatio float64   `json:"highlightRatio"`
	Factors        []string  `json:"factors"`
	Notation       string    `json:"notation"`
	Zones          ToneZones `json:"zones"`
}

// ToneZones are rounded low/mid/high percentages
type ToneZones struct {
	Low  int `json:"low"`
	Mid  int `json:"mid"`
	High int `json:"high"`
}
