package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anime-shed/photo-inspector-go/internal/analyzer"
	"github.com/anime-shed/photo-inspector-go/internal/logger"
	"github.com/anime-shed/photo-inspector-go/internal/repository"
	"github.com/anime-shed/photo-inspector-go/internal/service"
	"github.com/anime-shed/photo-inspector-go/internal/storage"
	"github.com/anime-shed/photo-inspector-go/internal/strategy"
	"github.com/anime-shed/photo-inspector-go/pkg/models"
	"github.com/anime-shed/photo-inspector-go/pkg/validation"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type analyzeFlags struct {
	inputs           []string
	preset           string
	maxEdge          int
	workers          int
	timeout          time.Duration
	debug            bool
	sceneTemperature bool
	noHistograms     bool
	pretty           bool
	logLevel         string
}

func newAnalyzeCmd() *cobra.Command {
	f := &analyzeFlags{}
	cmd := &cobra.Command{
		Use:   "analyze [file|url]...",
		Short: "Analyze images and print the results as JSON",
		Long: `Analyze one or more images. Inputs are local paths, http(s) URLs or "-" for stdin.
A single input prints one JSON object, several inputs print a JSON array.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, f, append(f.inputs, args...))
		},
	}

	cmd.Flags().StringSliceVarP(&f.inputs, "input", "i", nil, "image path or URL (repeatable)")
	cmd.Flags().StringVar(&f.preset, "preset", "standard", "analysis preset: "+strings.Join(strategy.Names(), ", "))
	cmd.Flags().IntVar(&f.maxEdge, "max-edge", 400, "downscale so the longest edge is at most this many pixels")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "analysis workers (0 = number of CPUs)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 30*time.Second, "per-image fetch and analysis timeout")
	cmd.Flags().BoolVar(&f.debug, "debug", false, "include the white balance diagnostic trail")
	cmd.Flags().BoolVar(&f.sceneTemperature, "scene-temperature", false, "estimate temperature from the whole image instead of the dominant color")
	cmd.Flags().BoolVar(&f.noHistograms, "no-histograms", false, "omit the 256-bin histograms")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "indent JSON output")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "warn", "log level written to stderr")
	return cmd
}

func (f *analyzeFlags) options() (analyzer.AnalysisOptions, error) {
	preset, err := strategy.Lookup(f.preset)
	if err != nil {
		return analyzer.AnalysisOptions{}, err
	}
	opts := strategy.NewAnalysisContext(preset).Options()
	if f.debug {
		opts = opts.WithDebug()
	}
	if f.sceneTemperature {
		opts = opts.WithSceneTemperature()
	}
	if f.noHistograms {
		opts = opts.WithoutHistograms()
	}
	return opts, nil
}

func runAnalyze(cmd *cobra.Command, f *analyzeFlags, inputs []string) error {
	if len(inputs) == 0 {
		return fmt.Errorf("no input: pass a file, a URL or -i")
	}
	if f.maxEdge < 1 {
		return fmt.Errorf("--max-edge must be >= 1 (got %d)", f.maxEdge)
	}
	opts, err := f.options()
	if err != nil {
		return err
	}

	// stdout carries the JSON result only
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(f.logLevel)

	pool := analyzer.NewWorkerPool(f.workers)
	pool.Start()
	defer pool.Close()

	repo := repository.NewImageRepository(
		storage.NewHTTPImageFetcher(storage.WithTimeout(f.timeout)),
		validation.NewURLValidator(),
		f.timeout,
	)
	svc := service.NewImageAnalysisService(repo, analyzer.NewImageAnalyzer(), pool, nil, service.Settings{
		MaxImageEdge:    f.maxEdge,
		AnalysisTimeout: f.timeout,
	})

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([]*models.AnalysisResponse, 0, len(inputs))
	for _, in := range inputs {
		res, err := analyzeInput(ctx, svc, cmd.InOrStdin(), in, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
		logger.WithFields(logrus.Fields{
			"input":              in,
			"tone":               res.Analysis.ToneAnalysis.Key,
			"processing_time_ms": res.ProcessingTimeMs,
		}).Info("Analyzed")
		results = append(results, res)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetEscapeHTML(false)
	if f.pretty {
		enc.SetIndent("", "  ")
	}
	if len(results) == 1 {
		return enc.Encode(results[0])
	}
	return enc.Encode(results)
}

func analyzeInput(ctx context.Context, svc service.ImageAnalysisService, stdin io.Reader, in string, opts analyzer.AnalysisOptions) (*models.AnalysisResponse, error) {
	switch {
	case in == "-":
		return svc.AnalyzeUpload(ctx, stdin, "stdin", opts)
	case strings.HasPrefix(in, "http://") || strings.HasPrefix(in, "https://"):
		return svc.AnalyzeImageURL(ctx, in, opts)
	}

	file, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return svc.AnalyzeUpload(ctx, file, filepath.Base(in), opts)
}
