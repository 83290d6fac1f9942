package pipeline

import (
	"fmt"

	"github.com/Glycocalex/glycowork-ab/pkg/motif"
	"github.com/Glycocalex/glycowork-ab/pkg/stats"
)

// DiffResult is the differential abundance outcome for one feature.
type DiffResult struct {
	Feature     string  `json:"feature"`
	MeanA       float64 `json:"mean_a"`
	MeanB       float64 `json:"mean_b"`
	EffectSize  float64 `json:"effect_size"` // Cohen's d
	EffectVar   float64 `json:"effect_var"`
	Statistic   float64 `json:"statistic"`
	PValue      float64 `json:"p_value"`
	AdjPValue   float64 `json:"adj_p_value"`
	Significant bool    `json:"significant"`
}

// DiffOptions tunes a differential abundance comparison.
type DiffOptions struct {
	// Alpha is the significance threshold. Zero scales it to the sample
	// size via stats.AlphaN.
	Alpha         float64
	Paired        bool
	Nonparametric bool
	// Groups maps group labels to feature names for two-stage grouped
	// correction. Empty means plain Benjamini-Hochberg.
	Groups      map[string][]string
	Impute      stats.ImputeOptions
	MinVariance float64
}

// Differential compares feature abundances between two sample groups.
//
// The table is imputed, normalized, and variance-filtered first. Each
// surviving feature is tested with Welch's t-test, or a rank test when
// Nonparametric or Paired is set, and its effect size is reported as
// Cohen's d. P-values are corrected with Benjamini-Hochberg, or with
// two-stage grouped correction when Groups is supplied. The returned
// alpha is the threshold actually applied.
func Differential(t *stats.Table, groupA, groupB []string, opts DiffOptions) ([]DiffResult, float64, error) {
	clean, err := stats.ImputeAndNormalize(t, groupA, groupB, opts.Impute)
	if err != nil {
		return nil, 0, err
	}
	clean, _ = stats.VarianceBasedFiltering(clean, opts.MinVariance)
	if len(clean.Features) == 0 {
		return nil, 0, fmt.Errorf("no features left after filtering")
	}

	colsA, err := clean.SampleIndices(groupA)
	if err != nil {
		return nil, 0, err
	}
	colsB, err := clean.SampleIndices(groupB)
	if err != nil {
		return nil, 0, err
	}

	results := make([]DiffResult, len(clean.Features))
	pvalues := make([]float64, len(clean.Features))
	for i, feature := range clean.Features {
		x := clean.RowSubset(i, colsA)
		y := clean.RowSubset(i, colsB)

		var tr stats.TestResult
		switch {
		case opts.Paired:
			tr, err = stats.WilcoxonSignedRank(x, y)
		case opts.Nonparametric:
			tr, err = stats.MannWhitneyU(x, y)
		default:
			tr, err = stats.WelchT(x, y)
		}
		if err != nil {
			return nil, 0, fmt.Errorf("feature %s: %w", feature, err)
		}

		d, varD, err := stats.CohenD(x, y, opts.Paired)
		if err != nil {
			return nil, 0, fmt.Errorf("feature %s: %w", feature, err)
		}

		results[i] = DiffResult{
			Feature:    feature,
			MeanA:      mean(x),
			MeanB:      mean(y),
			EffectSize: d,
			EffectVar:  varD,
			Statistic:  tr.Statistic,
			PValue:     tr.PValue,
		}
		pvalues[i] = tr.PValue
	}

	alpha := opts.Alpha
	if alpha == 0 {
		alpha = stats.AlphaN(len(colsA)+len(colsB), 3, "robust", 10)
	}

	if len(opts.Groups) == 0 {
		adjusted := stats.BenjaminiHochberg(pvalues)
		for i := range results {
			results[i].AdjPValue = adjusted[i]
			results[i].Significant = adjusted[i] < alpha
		}
		return results, alpha, nil
	}

	index := make(map[string]int, len(results))
	for i, r := range results {
		index[r.Feature] = i
	}
	grouped := make(map[string]stats.GroupedPValues, len(opts.Groups)+1)
	assigned := make(map[string]bool, len(results))
	for label, features := range opts.Groups {
		g := stats.GroupedPValues{}
		for _, feature := range features {
			i, ok := index[feature]
			if !ok {
				continue // filtered out upstream
			}
			g.IDs = append(g.IDs, feature)
			g.PValues = append(g.PValues, results[i].PValue)
			assigned[feature] = true
		}
		if len(g.IDs) > 0 {
			grouped[label] = g
		}
	}
	rest := stats.GroupedPValues{}
	for _, r := range results {
		if !assigned[r.Feature] {
			rest.IDs = append(rest.IDs, r.Feature)
			rest.PValues = append(rest.PValues, r.PValue)
		}
	}
	if len(rest.IDs) > 0 {
		grouped["ungrouped"] = rest
	}

	adjusted, significant := stats.TSTGroupedBH(grouped, alpha)
	for i := range results {
		results[i].AdjPValue = adjusted[results[i].Feature]
		results[i].Significant = significant[results[i].Feature]
	}
	return results, alpha, nil
}

// MotifTable collapses a glycan-level abundance table to motif level: the
// abundance of a motif in a sample is the count-weighted sum over all
// glycans carrying it. Table features must be sequences quantified in m.
// Motifs absent from every glycan are dropped.
func MotifTable(m *motif.Matrix, t *stats.Table) (*stats.Table, error) {
	rowOf := make(map[string]int, len(m.Glycans))
	for i, seq := range m.Glycans {
		rowOf[seq] = i
	}

	out := stats.NewTable(m.Motifs, t.Samples)
	for i, feature := range t.Features {
		gi, ok := rowOf[feature]
		if !ok {
			return nil, fmt.Errorf("glycan %q not in quantification matrix", feature)
		}
		for j := range m.Motifs {
			count := m.Data[gi][j]
			if count == 0 {
				continue
			}
			for s := range t.Samples {
				out.Values[j][s] += count * t.Values[i][s]
			}
		}
	}

	return out.FilterRows(func(j int) bool {
		for _, v := range out.Values[j] {
			if v != 0 {
				return true
			}
		}
		return false
	}), nil
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range v {
		sum += x
	}
	return sum / float64(len(v))
}
