package analyzer

import (
	"fmt"
	"math"
)

// RangeType is the tonal range axis of the zone taxonomy
type RangeType string

// ZoneType is the dominant-zone axis of the zone taxonomy
type ZoneType string

const (
	RangeLong  RangeType = "long"
	RangeMid   RangeType = "mid"
	RangeShort RangeType = "short"

	ZoneHigh ZoneType = "high"
	ZoneMid  ZoneType = "mid"
	ZoneLow  ZoneType = "low"
)

var rangeScores = map[RangeType]int{RangeLong: 10, RangeMid: 6, RangeShort: 3}

var zoneScores = map[ZoneType]int{ZoneHigh: 9, ZoneMid: 5, ZoneLow: 1}

// ZoneShares are low/mid/high percentages of the luminance histogram
type ZoneShares struct {
	Low  float64
	Mid  float64
	High float64
}

// ToneClassification places an image in the ten-type zone taxonomy
type ToneClassification struct {
	Type       string
	Key        string
	Confidence float64
	Notation   string
	Range      RangeType
	Zone       ZoneType
	Shares     ZoneShares
	Factors    []string
}

type toneKey struct {
	fullRange bool
	rangeType RangeType
	zone      ZoneType
}

type toneEntry struct {
	label      string
	key        string
	confidence float64
	factors    []string
}

// toneTable is the full taxonomy. Threshold changes belong in constants.go,
// label or confidence changes belong here.
var toneTable = map[toneKey]toneEntry{
	{fullRange: true}: {"全长调", "full-long", 0.9, []string{"deep shadows and bright highlights both present", "sparse midtones", "very high global contrast"}},

	{rangeType: RangeLong, zone: ZoneHigh}:  {"高长调", "high-long", 0.9, []string{"highlights dominate", "long tonal range", "strong accents against a bright key"}},
	{rangeType: RangeMid, zone: ZoneHigh}:   {"高中调", "high-mid", 0.85, []string{"highlights dominate", "moderate tonal range"}},
	{rangeType: RangeShort, zone: ZoneHigh}: {"高短调", "high-short", 0.85, []string{"highlights dominate", "short tonal range", "soft, airy rendering"}},

	{rangeType: RangeLong, zone: ZoneLow}:  {"低长调", "low-long", 0.9, []string{"shadows dominate", "long tonal range", "bright accents against a dark key"}},
	{rangeType: RangeMid, zone: ZoneLow}:   {"低中调", "low-mid", 0.85, []string{"shadows dominate", "moderate tonal range"}},
	{rangeType: RangeShort, zone: ZoneLow}: {"低短调", "low-short", 0.85, []string{"shadows dominate", "short tonal range", "heavy, muted rendering"}},

	{rangeType: RangeLong, zone: ZoneMid}:  {"中长调", "mid-long", 0.8, []string{"midtones dominate", "long tonal range"}},
	{rangeType: RangeMid, zone: ZoneMid}:   {"中中调", "mid-mid", 0.75, []string{"midtones dominate", "moderate tonal range"}},
	{rangeType: RangeShort, zone: ZoneMid}: {"中短调", "mid-short", 0.75, []string{"midtones dominate", "short tonal range", "flat, low-contrast rendering"}},
}

// zoneIndex maps a luminance value to one of ZoneCount zones (0-based)
func zoneIndex(v int) int {
	z := int(float64(v) / ZoneWidth)
	if z >= ZoneCount {
		z = ZoneCount - 1
	}
	return z
}

// zoneShares sums the histogram into zones and groups them as
// zones 1-3 low, 4-7 mid, 8-10 high.
func zoneShares(luminance [histogramBins]int) ([ZoneCount]int, ZoneShares) {
	var zones [ZoneCount]int
	total := 0
	for v, c := range luminance {
		zones[zoneIndex(v)] += c
		total += c
	}
	if total == 0 {
		return zones, ZoneShares{}
	}

	pct := func(from, to int) float64 {
		sum := 0
		for z := from; z <= to; z++ {
			sum += zones[z]
		}
		return float64(sum) / float64(total) * 100
	}
	return zones, ZoneShares{Low: pct(0, 2), Mid: pct(3, 6), High: pct(7, 9)}
}

func classifyRange(stats BrightnessStats, global float64) RangeType {
	tonalRange := stats.Max - stats.Min
	switch {
	case tonalRange > LongRangeMin && global > LongRangeGlobalMin:
		return RangeLong
	case tonalRange < ShortRangeMax && global < ShortRangeGlobalMax:
		return RangeShort
	default:
		return RangeMid
	}
}

func classifyZone(shares ZoneShares) ZoneType {
	switch {
	case shares.High > DominantZoneShare:
		return ZoneHigh
	case shares.Low > DominantZoneShare:
		return ZoneLow
	default:
		return ZoneMid
	}
}

func isFullRange(shares ZoneShares, global float64) bool {
	return shares.Low > FullRangeEdgeShare &&
		shares.High > FullRangeEdgeShare &&
		shares.Mid < FullRangeMidMax &&
		global > FullRangeGlobalMin
}

// ClassifyTone assigns a tone type from the luminance zones and global contrast
func ClassifyTone(luminance [histogramBins]int, stats BrightnessStats, global float64) ToneClassification {
	_, shares := zoneShares(luminance)
	rangeType := classifyRange(stats, global)
	zone := classifyZone(shares)

	key := toneKey{rangeType: rangeType, zone: zone}
	notation := fmt.Sprintf("%d,%d", rangeScores[rangeType], zoneScores[zone])
	if isFullRange(shares, global) {
		key = toneKey{fullRange: true}
		notation = "10"
	}
	entry := toneTable[key]

	factors := make([]string, 0, len(entry.factors)+2)
	factors = append(factors, entry.factors...)
	factors = append(factors,
		fmt.Sprintf("tonal range %.0f levels, global contrast %.2f", stats.Max-stats.Min, global),
		fmt.Sprintf("zones low %.0f%% / mid %.0f%% / high %.0f%%", math.Round(shares.Low), math.Round(shares.Mid), math.Round(shares.High)),
	)

	return ToneClassification{
		Type:       entry.label,
		Key:        entry.key,
		Confidence: entry.confidence,
		Notation:   notation,
		Range:      rangeType,
		Zone:       zone,
		Shares:     shares,
		Factors:    factors,
	}
}
