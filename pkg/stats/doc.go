// Package stats provides the statistical toolkit for glycomics data:
// effect sizes, abundance normalization and imputation, rank-based
// hypothesis tests, adaptive multiple-testing correction, Bayesian alpha
// calibration, and JTK rhythmicity detection.
//
// Abundance data is carried in a [Table]: features (glycans or motifs) as
// rows, samples as columns. All procedures are deterministic; the
// bootstrap uses an explicit seed.
package stats
