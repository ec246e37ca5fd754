package analyzer

import (
	"fmt"
	"math"
)

// BiasDirection is the warm/cool lean of the neutral reference
type BiasDirection string

const (
	BiasNeutral BiasDirection = "neutral"
	BiasWarm    BiasDirection = "warm"
	BiasCool    BiasDirection = "cool"
)

// Severity grades how far the neutral reference is from true gray
type Severity string

const (
	SeverityNone     Severity = "none"
	SeveritySlight   Severity = "slight"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

// ColorBias describes the cast of the neutral reference
type ColorBias struct {
	Overall   string
	Degree    float64
	Direction BiasDirection
	WarmCool  float64
}

// WhiteBalanceAssessment is the correctness verdict plus a suggested Kelvin shift.
// A negative adjustment means cooling the rendering down.
type WhiteBalanceAssessment struct {
	IsCorrect           bool
	SuggestedAdjustment int
	Suggestion          string
	Confidence          float64
}

// NeutralGrayDeviation is the per-channel offset of the reference from its own mean
type NeutralGrayDeviation struct {
	RedDeviation  float64
	BlueDeviation float64
	Severity      Severity
}

// WhiteBalance is the result of analyzeWhiteBalance
type WhiteBalance struct {
	Bias           ColorBias
	Assessment     WhiteBalanceAssessment
	Deviation      NeutralGrayDeviation
	NeutralSamples int
}

// analyzeWhiteBalance measures the color cast of near-neutral pixels in buf,
// falling back to the dominant color when too few neutral candidates exist.
// temperature only feeds the diagnostic trail, which may be nil.
func analyzeWhiteBalance(buf PixelBuffer, temperature int, dominant RGB, tr *trace) WhiteBalance {
	ref, samples := neutralReference(buf)
	if samples < NeutralMinCandidates {
		tr.addf("white_balance", "only %d neutral candidates, using dominant color %s", samples, dominant.Hex())
		ref = [3]float64{float64(dominant.R), float64(dominant.G), float64(dominant.B)}
	} else {
		tr.addf("white_balance", "neutral reference from %d pixels: r=%.1f g=%.1f b=%.1f", samples, ref[0], ref[1], ref[2])
	}

	mean := (ref[0] + ref[1] + ref[2]) / 3
	biasR, biasG, biasB := ref[0]-mean, ref[1]-mean, ref[2]-mean
	warmCool := biasR - biasB
	degree := math.Sqrt(biasR*biasR + biasG*biasG + biasB*biasB)
	tr.addf("white_balance", "estimated %dK, warm/cool bias %.2f, degree %.2f", temperature, warmCool, degree)

	direction := biasDirection(warmCool)
	pronounced := math.Abs(warmCool) > BiasPronouncedThreshold
	isCorrect := degree < BiasDegreeCorrectMax && math.Abs(warmCool) < BiasPronouncedThreshold

	confidence := ConfidenceAmbiguous
	switch {
	case isCorrect:
		confidence = ConfidenceCorrect
	case pronounced:
		confidence = ConfidenceClearBias
	}

	adjustment := int(math.Round(math.Abs(warmCool) * KelvinPerBiasUnit))
	if warmCool > 0 {
		adjustment = -adjustment
	}

	return WhiteBalance{
		Bias: ColorBias{
			Overall:   overallLabel(direction, pronounced),
			Degree:    degree,
			Direction: direction,
			WarmCool:  warmCool,
		},
		Assessment: WhiteBalanceAssessment{
			IsCorrect:           isCorrect,
			SuggestedAdjustment: adjustment,
			Suggestion:          suggestion(isCorrect, adjustment, biasG),
			Confidence:          confidence,
		},
		Deviation: NeutralGrayDeviation{
			RedDeviation:  biasR,
			BlueDeviation: biasB,
			Severity:      severityFor(degree),
		},
		NeutralSamples: samples,
	}
}

// neutralReference averages bright, low-chroma pixels
func neutralReference(buf PixelBuffer) ([3]float64, int) {
	var sum [3]float64
	count := 0
	for i := 0; i < buf.Len(); i++ {
		r, g, b := buf.At(i)
		lum := brightness(r, g, b)
		if lum <= NeutralBrightnessMin || lum >= NeutralBrightnessMax {
			continue
		}
		hi, lo := maxMin(r, g, b)
		// the largest pairwise difference is max-min
		if int(hi)-int(lo) >= NeutralMaxChannelDelta {
			continue
		}
		sum[0] += float64(r)
		sum[1] += float64(g)
		sum[2] += float64(b)
		count++
	}
	if count == 0 {
		return sum, 0
	}
	n := float64(count)
	return [3]float64{sum[0] / n, sum[1] / n, sum[2] / n}, count
}

func biasDirection(warmCool float64) BiasDirection {
	switch {
	case math.Abs(warmCool) < BiasNeutralThreshold:
		return BiasNeutral
	case warmCool > 0:
		return BiasWarm
	default:
		return BiasCool
	}
}

func overallLabel(direction BiasDirection, pronounced bool) string {
	switch direction {
	case BiasWarm:
		if pronounced {
			return "明显偏暖"
		}
		return "轻微偏暖"
	case BiasCool:
		if pronounced {
			return "明显偏冷"
		}
		return "轻微偏冷"
	default:
		return "色彩平衡"
	}
}

func suggestion(isCorrect bool, adjustment int, biasG float64) string {
	switch {
	case isCorrect:
		return "白平衡准确，无需调整"
	case adjustment == 0 && biasG > 0:
		// green/magenta cast with no warm/cool component
		return "偏绿，色温无需调整，建议增加品红补偿"
	case adjustment == 0 && biasG < 0:
		return "偏品红，色温无需调整，建议增加绿色补偿"
	case adjustment == 0:
		return "白平衡准确，无需调整"
	case adjustment < 0:
		return fmt.Sprintf("降低色温约%dK", -adjustment)
	default:
		return fmt.Sprintf("提高色温约%dK", adjustment)
	}
}

func severityFor(degree float64) Severity {
	switch {
	case degree < SeveritySlightMin:
		return SeverityNone
	case degree < SeverityModerateMin:
		return SeveritySlight
	case degree < SeveritySevereMin:
		return SeverityModerate
	default:
		return SeveritySevere
	}
}
