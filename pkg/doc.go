// Package pkg provides the core libraries for glycan sequence analysis.
//
// # Overview
//
// Glycoworks parses IUPAC-condensed glycan sequences into branch trees,
// quantifies structural motifs against a curated library, runs differential
// abundance statistics, and renders SNFG-style diagrams. The pkg directory
// is organized into five main areas:
//
//  1. [glycan] - Sequence parsing, canonicalization, and tree structures
//  2. [motif] - Motif library and per-glycan motif quantification
//  3. [stats] - Normalization, hypothesis tests, multiple-testing correction
//  4. [draw] - SNFG diagram rendering (DOT, SVG, PNG)
//  5. [pipeline] - Orchestration (parse → quantify → analyze → render)
//
// # Architecture
//
// The typical data flow:
//
//	IUPAC-condensed sequences
//	         ↓
//	    [glycan] package (parse + canonicalize)
//	         ↓
//	    [motif] package (glycan × motif count matrix)
//	         ↓
//	    [stats] package (normalize, test, correct)
//	         ↓
//	    [draw] package (SNFG diagrams)
//	         ↓
//	    SVG/PNG/DOT/JSON output
//
// # Quick Start
//
// Quantify motifs and render a diagram:
//
//	import (
//	    "context"
//	    "github.com/Glycocalex/glycowork-ab/pkg/cache"
//	    "github.com/Glycocalex/glycowork-ab/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Glycans: []string{"Gal(b1-4)GlcNAc"},
//	    Formats: []string{"svg"},
//	})
//
// # Main Packages
//
// [glycan] - Recursive-descent parser for IUPAC-condensed nomenclature,
// canonical branch ordering, composition and topology queries.
//
// [motif] - The embedded motif library and subtree matching. Quantify
// produces the glycan × motif count matrix every downstream analysis
// consumes.
//
// [stats] - Abundance tables, CLR/ALR-style normalization with missing-value
// imputation, Welch/Wilcoxon/Mann-Whitney tests, Cohen's d, Benjamini-
// Hochberg and two-stage grouped correction, ICC, and JTK rhythmicity.
//
// [ml] - Embedding model inference, lectin binding prediction, and a
// cosine-similarity embedding database for nearest-neighbor search.
//
// [draw] - SNFG shape and color assignment, Graphviz DOT generation, and
// SVG/PNG rasterization.
//
// [chem] - HTTP clients for PubChem and GlyTouCan with response caching.
//
// [store] - Named glycan dataset persistence with file and MongoDB
// backends plus embedded built-in panels.
//
// [cache] - Content-addressed caching with file, Redis, and null backends.
//
// [pipeline] - The complete analysis pipeline used by both CLI and API.
// Ensures consistent behavior across entry points.
//
// [config] - TOML configuration with environment overrides.
//
// [observability] - Pipeline stage and cache event hooks for optional
// instrumentation.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/glycan/...    # Specific package
//
// [glycan]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/glycan
// [motif]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/motif
// [stats]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/stats
// [ml]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/ml
// [draw]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/draw
// [chem]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/chem
// [store]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/store
// [cache]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/cache
// [pipeline]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/pipeline
// [config]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/config
// [observability]: https://pkg.go.dev/github.com/Glycocalex/glycowork-ab/pkg/observability
package pkg
