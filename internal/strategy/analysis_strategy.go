package strategy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
)

// AnalysisStrategy shapes the options a request runs with
type AnalysisStrategy interface {
	Apply(opts analyzer.AnalysisOptions) analyzer.AnalysisOptions
	GetStrategyName() string
}

// StandardAnalysisStrategy returns every section, histograms included
type StandardAnalysisStrategy struct{}

func (StandardAnalysisStrategy) Apply(opts analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	return opts
}

func (StandardAnalysisStrategy) GetStrategyName() string {
	return "standard"
}

// FastAnalysisStrategy drops the 256-bin histograms, which dominate response size
type FastAnalysisStrategy struct{}

func (FastAnalysisStrategy) Apply(opts analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	return opts.WithoutHistograms()
}

func (FastAnalysisStrategy) GetStrategyName() string {
	return "fast"
}

// DiagnosticAnalysisStrategy keeps the per-stage trail in the result
type DiagnosticAnalysisStrategy struct{}

func (DiagnosticAnalysisStrategy) Apply(opts analyzer.AnalysisOptions) analyzer.AnalysisOptions {
	return opts.WithDebug()
}

func (DiagnosticAnalysisStrategy) GetStrategyName() string {
	return "diagnostic"
}

var registry = map[string]AnalysisStrategy{
	"standard":   StandardAnalysisStrategy{},
	"fast":       FastAnalysisStrategy{},
	"diagnostic": DiagnosticAnalysisStrategy{},
}

// Lookup resolves a strategy by name. The empty name is standard.
func Lookup(name string) (AnalysisStrategy, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return StandardAnalysisStrategy{}, nil
	}
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown analysis preset %q (want one of %s)", name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// Names lists the registered strategies in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AnalysisContext holds the strategy selected for a call
type AnalysisContext struct {
	strategy AnalysisStrategy
}

// NewAnalysisContext creates a new analysis context
func NewAnalysisContext(strategy AnalysisStrategy) *AnalysisContext {
	if strategy == nil {
		strategy = StandardAnalysisStrategy{}
	}
	return &AnalysisContext{strategy: strategy}
}

// SetStrategy changes the analysis strategy
func (c *AnalysisContext) SetStrategy(strategy AnalysisStrategy) {
	c.strategy = strategy
}

// Options returns the default options shaped by the current strategy
func (c *AnalysisContext) Options() analyzer.AnalysisOptions {
	return c.strategy.Apply(analyzer.DefaultOptions())
}

// GetCurrentStrategy returns the current strategy name
func (c *AnalysisContext) GetCurrentStrategy() string {
	return c.strategy.GetStrategyName()
}
