// Package pipeline provides the core analysis pipeline for glycoworks.
//
// This package implements the complete parse → quantify → analyze → render
// pipeline shared by the CLI and the HTTP API. Centralizing it keeps
// behavior and caching consistent across both entry points.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Parse: Validate IUPAC-condensed sequences into glycan graphs
//  2. Quantify: Count library motifs across all glycans
//  3. Analyze: Differential abundance between two sample groups
//  4. Render: Draw SNFG diagrams in various formats (SVG, PNG, DOT, JSON)
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Glycans: []string{"Gal(b1-4)GlcNAc", "Neu5Ac(a2-3)Gal(b1-4)GlcNAc"},
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["Gal(b1-4)GlcNAc"]["svg"]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/Glycocalex/glycowork-ab/pkg/motif"
	"github.com/Glycocalex/glycowork-ab/pkg/stats"
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// Analysis mode constants. Glycan mode tests abundance rows as-is; motif
// mode first collapses the abundance table to motif level using the
// quantification matrix.
const (
	ModeGlycan = "glycan"
	ModeMotif  = "motif"
)

// Cache lifetimes per artifact kind.
const (
	TTLMatrix = 30 * 24 * time.Hour
	TTLRender = 7 * 24 * time.Hour
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// ValidModes is the set of supported analysis modes.
var ValidModes = map[string]bool{
	ModeGlycan: true,
	ModeMotif:  true,
}

// Options contains all configuration for the analysis pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Parse options
	Glycans []string `json:"glycans"`

	// Analyze options
	Mode      string       `json:"mode,omitempty"`
	Abundance *stats.Table `json:"abundance,omitempty"`
	GroupA    []string     `json:"group_a,omitempty"`
	GroupB    []string     `json:"group_b,omitempty"`
	Alpha     float64      `json:"alpha,omitempty"`
	Paired    bool         `json:"paired,omitempty"`
	// Nonparametric selects rank tests for unpaired comparisons.
	Nonparametric bool `json:"nonparametric,omitempty"`
	// Groups maps a group label to feature names for grouped two-stage
	// multiple testing correction. Empty means plain Benjamini-Hochberg.
	Groups map[string][]string `json:"groups,omitempty"`

	// Render options
	Formats      []string `json:"formats,omitempty"`
	Labels       bool     `json:"labels,omitempty"`
	HideLinkages bool     `json:"hide_linkages,omitempty"`

	// Refresh bypasses cached stage results.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger  *log.Logger  `json:"-"`
	Library []motif.Motif `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this execution in logs.
	RunID string

	// Sequences holds the canonical form of every parsed glycan, in
	// input order.
	Sequences []string

	// Matrix is the motif quantification of the glycan list.
	Matrix *motif.Matrix

	// MatrixHash is the content hash of the quantification matrix.
	MatrixHash string

	// Diff holds the differential abundance results, one per tested
	// feature. Nil when no abundance table was supplied.
	Diff []DiffResult

	// Artifacts contains rendered outputs keyed by canonical sequence,
	// then by format.
	Artifacts map[string]map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	GlycanCount  int
	MotifCount   int
	ParseTime    time.Duration
	QuantifyTime time.Duration
	AnalyzeTime  time.Duration
	RenderTime   time.Duration
}

// CacheInfo tracks cache hits for each cacheable pipeline stage.
type CacheInfo struct {
	QuantifyHit bool // Whether the quantification matrix came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format: %q (must be one of: svg, png, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMode checks that an analysis mode is valid.
func ValidateMode(mode string) error {
	if !ValidModes[mode] {
		return fmt.Errorf("invalid mode: %q (must be one of: glycan, motif)", mode)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for
// the full pipeline. This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Glycans) == 0 {
		return fmt.Errorf("glycans are required")
	}
	if o.Mode == "" {
		o.Mode = ModeMotif
	}
	if err := ValidateMode(o.Mode); err != nil {
		return err
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Abundance != nil {
		if len(o.GroupA) < 2 || len(o.GroupB) < 2 {
			return fmt.Errorf("differential analysis needs at least two samples per group")
		}
		if o.Paired && len(o.GroupA) != len(o.GroupB) {
			return fmt.Errorf("paired analysis needs equally sized groups")
		}
	}
	if o.Alpha < 0 || o.Alpha >= 1 {
		return fmt.Errorf("alpha must be in [0, 1)")
	}
	if o.Library == nil {
		lib, err := motif.DefaultLibrary()
		if err != nil {
			return fmt.Errorf("load motif library: %w", err)
		}
		o.Library = lib
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}
