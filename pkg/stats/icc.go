package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// InterIntraGroupCorrelation estimates how much of the case/control
// abundance shift is shared within glycan groups versus between them.
//
// caseT and controlT hold the same glycans as rows; for every glycan and
// sample the log2 fold change log2(|(case+eps)/(control+eps)|) is formed,
// then its variance is decomposed into a between-group component, a
// within-group (between-glycan) component, and a residual. The intra-group
// correlation is the within-group share of total variance, the inter-group
// correlation the between-group share.
func InterIntraGroupCorrelation(caseT, controlT *Table, groups map[string][]string) (intra, inter float64, err error) {
	if len(caseT.Features) != len(controlT.Features) {
		return 0, 0, fmt.Errorf("case and control tables hold %d and %d features", len(caseT.Features), len(controlT.Features))
	}
	if len(caseT.Samples) != len(controlT.Samples) {
		return 0, 0, fmt.Errorf("case and control tables hold %d and %d samples", len(caseT.Samples), len(controlT.Samples))
	}

	groupOf := make(map[string]string)
	for name, members := range groups {
		for _, g := range members {
			groupOf[g] = name
		}
	}

	const eps = 1e-8
	type cell struct {
		group  string
		glycan string
		diff   float64
	}
	var cells []cell
	for i, feat := range caseT.Features {
		grp, ok := groupOf[feat]
		if !ok {
			return 0, 0, fmt.Errorf("glycan %q not assigned to any group", feat)
		}
		for j := range caseT.Samples {
			d := math.Log2(math.Abs((caseT.Values[i][j] + eps) / (controlT.Values[i][j] + eps)))
			cells = append(cells, cell{group: grp, glycan: feat, diff: d})
		}
	}
	if len(cells) == 0 {
		return 0, 0, fmt.Errorf("no measurements")
	}

	// Per-glycan and per-group means.
	glycanVals := make(map[string][]float64)
	groupVals := make(map[string][]float64)
	var all []float64
	for _, c := range cells {
		glycanVals[c.glycan] = append(glycanVals[c.glycan], c.diff)
		groupVals[c.group] = append(groupVals[c.group], c.diff)
		all = append(all, c.diff)
	}
	grand := stat.Mean(all, nil)

	glycanMean := make(map[string]float64, len(glycanVals))
	for g, vals := range glycanVals {
		glycanMean[g] = stat.Mean(vals, nil)
	}
	groupMean := make(map[string]float64, len(groupVals))
	for g, vals := range groupVals {
		groupMean[g] = stat.Mean(vals, nil)
	}

	// Variance components, measurement-weighted.
	var between, within, residual float64
	for _, c := range cells {
		gm := groupMean[c.group]
		fm := glycanMean[c.glycan]
		between += (gm - grand) * (gm - grand)
		within += (fm - gm) * (fm - gm)
		residual += (c.diff - fm) * (c.diff - fm)
	}
	n := float64(len(cells))
	between /= n
	within /= n
	residual /= n

	total := between + within + residual
	if total == 0 {
		return 0, 0, nil
	}
	return within / total, between / total, nil
}
