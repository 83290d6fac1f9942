package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/Glycocalex/glycowork-ab/pkg/cache"
	"github.com/Glycocalex/glycowork-ab/pkg/draw"
	"github.com/Glycocalex/glycowork-ab/pkg/glycan"
	"github.com/Glycocalex/glycowork-ab/pkg/motif"
	"github.com/Glycocalex/glycowork-ab/pkg/observability"
	"github.com/Glycocalex/glycowork-ab/pkg/stats"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides the default cache lifetimes (TTLMatrix, TTLRender)
	// for every stage when set.
	TTL time.Duration
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → quantify → analyze → render pipeline
// with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	r.applyLogger(&opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string]map[string][]byte),
	}
	logger := opts.Logger.With("run", result.RunID)

	// Stage 1: Parse
	parseStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, "parse")
	glycans, err := r.ParseAll(opts.Glycans)
	observability.Pipeline().OnStageComplete(ctx, "parse", time.Since(parseStart), err)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	result.Sequences = make([]string, len(glycans))
	for i, g := range glycans {
		result.Sequences[i] = g.Canonical()
	}
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.GlycanCount = len(glycans)

	logger.Info("parsed glycans",
		"count", len(glycans),
		"duration", result.Stats.ParseTime)

	// Stage 2: Quantify
	quantifyStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, "quantify")
	m, quantifyHit, err := r.QuantifyWithCacheInfo(ctx, opts)
	observability.Pipeline().OnStageComplete(ctx, "quantify", time.Since(quantifyStart), err)
	if err != nil {
		return nil, fmt.Errorf("quantify: %w", err)
	}
	result.Matrix = m
	result.Stats.QuantifyTime = time.Since(quantifyStart)
	result.Stats.MotifCount = len(m.Motifs)
	result.CacheInfo.QuantifyHit = quantifyHit

	if data, err := json.Marshal(m); err == nil {
		result.MatrixHash = cache.Hash(data)
	}

	logger.Info("quantified motifs",
		"motifs", len(m.Motifs),
		"duration", result.Stats.QuantifyTime)

	// Stage 3: Analyze
	if opts.Abundance != nil {
		analyzeStart := time.Now()
		observability.Pipeline().OnStageStart(ctx, "analyze")
		diff, alpha, err := r.Analyze(m, opts)
		observability.Pipeline().OnStageComplete(ctx, "analyze", time.Since(analyzeStart), err)
		if err != nil {
			return nil, fmt.Errorf("analyze: %w", err)
		}
		result.Diff = diff
		result.Stats.AnalyzeTime = time.Since(analyzeStart)

		significant := 0
		for _, d := range diff {
			if d.Significant {
				significant++
			}
		}
		logger.Info("tested features",
			"features", len(diff),
			"significant", significant,
			"alpha", alpha,
			"duration", result.Stats.AnalyzeTime)
	}

	// Stage 4: Render
	renderStart := time.Now()
	observability.Pipeline().OnStageStart(ctx, "render")
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, glycans, opts)
	observability.Pipeline().OnStageComplete(ctx, "render", time.Since(renderStart), err)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	logger.Info("rendered diagrams",
		"formats", opts.Formats,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ParseAll parses every sequence, failing on the first invalid one.
func (r *Runner) ParseAll(seqs []string) ([]*glycan.Glycan, error) {
	out := make([]*glycan.Glycan, len(seqs))
	for i, seq := range seqs {
		g, err := glycan.Parse(seq)
		if err != nil {
			return nil, fmt.Errorf("glycan %d: %w", i, err)
		}
		out[i] = g
	}
	return out, nil
}

// QuantifyWithCacheInfo counts library motifs with caching and returns
// cache hit info.
func (r *Runner) QuantifyWithCacheInfo(ctx context.Context, opts Options) (*motif.Matrix, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}
	cacheKey := r.Keyer.MatrixKey(motif.LibraryVersion, opts.Glycans)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var m motif.Matrix
			if err := json.Unmarshal(data, &m); err == nil {
				observability.Cache().OnCacheHit(ctx, "matrix")
				return &m, true, nil
			}
		}
	}
	observability.Cache().OnCacheMiss(ctx, "matrix")

	m, err := motif.Quantify(opts.Glycans, opts.Library)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(m); err == nil {
		_ = r.Cache.Set(ctx, cacheKey, data, r.matrixTTL())
		observability.Cache().OnCacheSet(ctx, "matrix", len(data))
	}
	return m, false, nil
}

// Quantify is a convenience wrapper that discards the cache hit info.
func (r *Runner) Quantify(ctx context.Context, opts Options) (*motif.Matrix, error) {
	m, _, err := r.QuantifyWithCacheInfo(ctx, opts)
	return m, err
}

// Analyze runs the differential abundance comparison configured in opts
// against the given quantification matrix.
func (r *Runner) Analyze(m *motif.Matrix, opts Options) ([]DiffResult, float64, error) {
	table := opts.Abundance
	if opts.Mode == ModeMotif {
		var err error
		table, err = MotifTable(m, table)
		if err != nil {
			return nil, 0, err
		}
	}
	return Differential(table, opts.GroupA, opts.GroupB, DiffOptions{
		Alpha:         opts.Alpha,
		Paired:        opts.Paired,
		Nonparametric: opts.Nonparametric,
		Groups:        opts.Groups,
	})
}

// RenderWithCacheInfo draws every glycan in every requested format with
// caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, glycans []*glycan.Glycan, opts Options) (map[string]map[string][]byte, bool, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, false, err
	}

	artifacts := make(map[string]map[string][]byte, len(glycans))
	allHit := true
	for _, g := range glycans {
		seq := g.Canonical()
		perFormat := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.RenderKey(seq, format, opts.Labels)
			if !opts.Refresh {
				if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
					observability.Cache().OnCacheHit(ctx, "render")
					perFormat[format] = data
					continue
				}
			}
			observability.Cache().OnCacheMiss(ctx, "render")
			allHit = false

			data, err := r.renderOne(ctx, g, format, opts)
			if err != nil {
				return nil, false, fmt.Errorf("render %s as %s: %w", seq, format, err)
			}
			perFormat[format] = data
			_ = r.Cache.Set(ctx, cacheKey, data, r.renderTTL())
			observability.Cache().OnCacheSet(ctx, "render", len(data))
		}
		artifacts[seq] = perFormat
	}
	return artifacts, allHit, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, glycans []*glycan.Glycan, opts Options) (map[string]map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, glycans, opts)
	return artifacts, err
}

func (r *Runner) renderOne(ctx context.Context, g *glycan.Glycan, format string, opts Options) ([]byte, error) {
	drawOpts := draw.Options{Labels: opts.Labels, HideLinkages: opts.HideLinkages}
	switch format {
	case FormatDOT:
		return []byte(draw.ToDOT(g, drawOpts)), nil
	case FormatSVG:
		return draw.RenderSVG(ctx, draw.ToDOT(g, drawOpts))
	case FormatPNG:
		return draw.RenderPNG(ctx, draw.ToDOT(g, drawOpts))
	case FormatJSON:
		return glycan.Marshal(g)
	default:
		return nil, fmt.Errorf("invalid format: %q", format)
	}
}

func (r *Runner) matrixTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return TTLMatrix
}

func (r *Runner) renderTTL() time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return TTLRender
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// RhythmTable runs JTK rhythmicity detection over a timepoint-ordered
// abundance table. Columns must be ordered by timepoint, replicates
// adjacent.
func RhythmTable(t *stats.Table, timepoints, replicates int, periods []int, interval float64) (map[string]stats.JTKResult, error) {
	jtk, err := stats.NewJTK(timepoints, replicates, periods, interval)
	if err != nil {
		return nil, err
	}
	return jtk.RunTable(t)
}
