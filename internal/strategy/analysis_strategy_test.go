package strategy

import (
	"reflect"
	"testing"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name          string
		wantName      string
		wantDebug     bool
		wantHistogram bool
	}{
		{"", "standard", false, true},
		{"standard", "standard", false, true},
		{" FAST ", "fast", false, false},
		{"diagnostic", "diagnostic", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			s, err := Lookup(tt.name)
			if err != nil {
				t.Fatalf("Lookup(%q) failed: %v", tt.name, err)
			}
			if s.GetStrategyName() != tt.wantName {
				t.Errorf("Expected %s, got %s", tt.wantName, s.GetStrategyName())
			}

			opts := NewAnalysisContext(s).Options()
			if opts.IncludeDebug != tt.wantDebug || opts.IncludeHistograms != tt.wantHistogram {
				t.Errorf("Unexpected options %+v", opts)
			}
			if opts.TemperatureSource != analyzer.TemperatureFromSubject {
				t.Errorf("Presets must not change the temperature source, got %s", opts.TemperatureSource)
			}
		})
	}

	if _, err := Lookup("ocr"); err == nil {
		t.Error("Expected an error for an unknown preset")
	}
}

func TestNames(t *testing.T) {
	want := []string{"diagnostic", "fast", "standard"}
	if got := Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestAnalysisContext_SetStrategy(t *testing.T) {
	c := NewAnalysisContext(nil)
	if c.GetCurrentStrategy() != "standard" {
		t.Fatalf("Expected standard by default, got %s", c.GetCurrentStrategy())
	}

	c.SetStrategy(FastAnalysisStrategy{})
	if c.GetCurrentStrategy() != "fast" || c.Options().IncludeHistograms {
		t.Error("Expected the fast strategy to drop histograms")
	}
}
