package analyzer

// Histogram and brightness
const (
	histogramBins = 256
	maxChannel    = 255.0
)

// Dominant color extraction thresholds
const (
	ColorfulSaturationMin   = 0.2
	ColorfulBrightnessMin   = 40.0
	ColorfulBrightnessMax   = 220.0
	ColorfulMaxChannelMin   = 50
	ColorfulMinChannelMax   = 200
	ColorfulChannelSpread   = 25
	ColorfulShareForWeights = 0.05 // share of colorful pixels required for the weighted tier
	TopSaturatedShareRich   = 0.05
	TopSaturatedShareSparse = 0.10
	TopSaturatedMinCount    = 10
	BrightRegionMin         = 120.0
	BrightRegionMax         = 220.0
)

// Color temperature, in Kelvin
const (
	TemperatureMin            = 2000.0
	TemperatureMax            = 8000.0
	TemperatureDefault        = 5500.0
	WhitePatchBrightnessMin   = 150.0
	WhitePatchWarmRatio       = 1.2
	WhitePatchCoolRatio       = 0.8
	HistogramCentroidFallback = 128.0
)

// Contrast composite weights
const (
	CompositeGlobalWeight    = 0.4
	CompositeRMSWeight       = 0.3
	CompositeMichelsonWeight = 0.2
	CompositeWeberWeight     = 0.1
)

// White balance
const (
	NeutralBrightnessMin    = 150.0
	NeutralBrightnessMax    = 240.0
	NeutralMaxChannelDelta  = 30
	NeutralMinCandidates    = 10
	BiasNeutralThreshold    = 2.0
	BiasPronouncedThreshold = 8.0
	BiasDegreeCorrectMax    = 10.0
	KelvinPerBiasUnit       = 50.0

	SeveritySlightMin   = 5.0
	SeverityModerateMin = 12.0
	SeveritySevereMin   = 20.0

	ConfidenceCorrect   = 0.9
	ConfidenceClearBias = 0.8
	ConfidenceAmbiguous = 0.7
)

// Tone zones
const (
	ZoneCount           = 10
	ZoneWidth           = 25.6
	LongRangeMin        = 200.0
	LongRangeGlobalMin  = 0.7
	ShortRangeMax       = 100.0
	ShortRangeGlobalMax = 0.3
	DominantZoneShare   = 60.0
	FullRangeEdgeShare  = 25.0
	FullRangeMidMax     = 30.0
	FullRangeGlobalMin  = 0.8
)
