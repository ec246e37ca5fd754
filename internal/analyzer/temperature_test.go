package analyzer

import (
	"math"
	"testing"
)

func TestEstimateTemperature(t *testing.T) {
	tests := []struct {
		name                   string
		c                      RGB
		whitePatch, histCenter int
		final                  int
	}{
		{"mid gray has no white patch", RGB{128, 128, 128}, 5500, 5000, 5250},
		{"white is neutral", RGB{255, 255, 255}, 5000, 5000, 5000},
		{"warm subject", RGB{200, 150, 80}, 5500, 2000, 3750},
		{"cool subject", RGB{90, 140, 210}, 5500, 6143, 5822},
		{"bright warm highlight", RGB{240, 200, 150}, 3100, 3800, 3450},
		{"bright cool highlight", RGB{150, 200, 250}, 6800, 5800, 6300},
		{"pure blue clamps histogram center", RGB{0, 0, 255}, 5500, 7000, 6250},
		{"pure red clamps at minimum", RGB{255, 0, 0}, 5500, 2000, 3750},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateTemperature(broadcastColor(tt.c, 16))
			if got.WhitePatch != tt.whitePatch {
				t.Errorf("Expected white patch %dK, got %dK", tt.whitePatch, got.WhitePatch)
			}
			if got.HistogramCenter != tt.histCenter {
				t.Errorf("Expected histogram center %dK, got %dK", tt.histCenter, got.HistogramCenter)
			}
			if got.Final != tt.final {
				t.Errorf("Expected final %dK, got %dK", tt.final, got.Final)
			}
		})
	}
}

func TestEstimateTemperature_Bounds(t *testing.T) {
	for seed := uint32(1); seed <= 20; seed++ {
		got := EstimateTemperature(noisyBuffer(16, 16, seed))
		for _, k := range []int{got.WhitePatch, got.HistogramCenter, got.Final} {
			if k < int(TemperatureMin) || k > int(TemperatureMax) {
				t.Errorf("seed %d: temperature %dK outside [2000, 8000]", seed, k)
			}
		}
	}
}

func TestWhitePatchTemperature_Ranges(t *testing.T) {
	tests := []struct {
		name string
		c    RGB
		want float64
	}{
		{"neutral band", RGB{220, 200, 200}, 5100},
		{"cool band", RGB{160, 200, 240}, 6000 + (1-160.0/240.0)*2000},
		{"very warm clamps", RGB{255, 250, 40}, 2000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := whitePatchTemperature(broadcastColor(tt.c, 4))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Expected %f, got %f", tt.want, got)
			}
		})
	}
}

func TestWarmCoolIndex(t *testing.T) {
	if got := WarmCoolIndex(RGB{0, 0, 0}); got != 0 {
		t.Errorf("Expected 0 for black, got %f", got)
	}

	warm := WarmCoolIndex(RGB{200, 150, 80})
	cool := WarmCoolIndex(RGB{90, 140, 210})
	if warm <= cool {
		t.Errorf("Expected warm index %f above cool index %f", warm, cool)
	}

	for _, c := range []RGB{{255, 0, 0}, {0, 0, 255}, {0, 255, 0}, {128, 128, 128}} {
		got := WarmCoolIndex(c)
		if got < -1 || got > 1 {
			t.Errorf("WarmCoolIndex(%v) = %f, outside [-1, 1]", c, got)
		}
	}
}
