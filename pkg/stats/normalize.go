package stats

import (
	"fmt"
	"math"
	"sort"

	mfstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"
)

// VarianceStabilization applies log1p followed by per-sample z-scoring
// (ddof=1), in place. This compresses the heavy right tail of abundance
// data before effect-size calculations.
//
// Without groups every sample column is scaled. With groups given, each
// group's columns are scaled group by group and columns named in no group
// are left log-transformed but unscaled.
func VarianceStabilization(t *Table, groups ...[]string) error {
	for i := range t.Values {
		for j := range t.Values[i] {
			t.Values[i][j] = math.Log1p(t.Values[i][j])
		}
	}

	var cols [][]int
	if len(groups) == 0 {
		all := make([]int, len(t.Samples))
		for j := range all {
			all[j] = j
		}
		cols = [][]int{all}
	} else {
		for _, group := range groups {
			idx, err := t.SampleIndices(group)
			if err != nil {
				return err
			}
			cols = append(cols, idx)
		}
	}

	for _, group := range cols {
		for _, j := range group {
			col := t.Column(j)
			mean := stat.Mean(col, nil)
			sd := stat.StdDev(col, nil)
			if sd == 0 {
				sd = 1
			}
			for i := range t.Values {
				t.Values[i][j] = (t.Values[i][j] - mean) / sd
			}
		}
	}
	return nil
}

// ImputeOptions configures ImputeAndNormalize.
type ImputeOptions struct {
	// MinSamples is the fraction of samples within a group in which a
	// feature must be observed (non-zero, non-NaN) to be kept. The
	// required count is the floor of the fraction times the group size.
	// Defaults to 0.5, half the samples per group.
	MinSamples float64
	// Iterations bounds the iterative median refinement. Defaults to 10.
	Iterations int
}

// ImputeAndNormalize prepares raw abundance data for analysis:
//
//  1. Features absent in too many samples of both groups are dropped.
//  2. Missing values (zero or NaN) are imputed by iterative group-median
//     refinement: each missing cell starts at its group median and is
//     re-estimated until the medians stabilize.
//  3. Each sample column is scaled to sum to 100, turning abundances into
//     relative percentages.
//
// groupA and groupB name the sample columns of the two groups; samples not
// named in either group are left out of the filtering decision but still
// imputed and scaled.
func ImputeAndNormalize(t *Table, groupA, groupB []string, opts ImputeOptions) (*Table, error) {
	if opts.MinSamples <= 0 {
		opts.MinSamples = 0.5
	}
	if opts.Iterations <= 0 {
		opts.Iterations = 10
	}

	colsA, err := t.SampleIndices(groupA)
	if err != nil {
		return nil, err
	}
	colsB, err := t.SampleIndices(groupB)
	if err != nil {
		return nil, err
	}
	if len(colsA) == 0 || len(colsB) == 0 {
		return nil, fmt.Errorf("both groups need at least one sample")
	}

	present := func(row []float64, cols []int) int {
		n := 0
		for _, j := range cols {
			if v := row[j]; v != 0 && !math.IsNaN(v) {
				n++
			}
		}
		return n
	}

	out := t.FilterRows(func(i int) bool {
		row := t.Values[i]
		needA := int(opts.MinSamples * float64(len(colsA)))
		needB := int(opts.MinSamples * float64(len(colsB)))
		return present(row, colsA) >= needA && present(row, colsB) >= needB
	})
	if len(out.Features) == 0 {
		return nil, fmt.Errorf("no features survive the %g presence filter", opts.MinSamples)
	}

	colsA, _ = out.SampleIndices(groupA)
	colsB, _ = out.SampleIndices(groupB)
	groups := [][]int{colsA, colsB}

	// Track which cells are imputed so refinement only touches those.
	missing := make([][]bool, len(out.Values))
	for i, row := range out.Values {
		missing[i] = make([]bool, len(row))
		for j, v := range row {
			missing[i][j] = v == 0 || math.IsNaN(v)
		}
	}

	for iter := 0; iter < opts.Iterations; iter++ {
		changed := false
		for i := range out.Values {
			for _, cols := range groups {
				obs := make([]float64, 0, len(cols))
				for _, j := range cols {
					if !missing[i][j] {
						obs = append(obs, out.Values[i][j])
					}
				}
				var med float64
				if len(obs) > 0 {
					med, _ = mfstats.Median(obs)
				}
				for _, j := range cols {
					if missing[i][j] && out.Values[i][j] != med {
						out.Values[i][j] = med
						changed = true
					}
				}
			}
		}
		if !changed {
			break
		}
		// After the first pass the imputed cells hold estimates; later
		// passes refine against medians that include them.
		if iter == 0 {
			for i := range missing {
				for j := range missing[i] {
					missing[i][j] = false
				}
			}
		}
	}

	// Scale every column to relative abundances summing to 100.
	for j := range out.Samples {
		var sum float64
		for i := range out.Values {
			sum += out.Values[i][j]
		}
		if sum == 0 {
			continue
		}
		for i := range out.Values {
			out.Values[i][j] = out.Values[i][j] / sum * 100
		}
	}
	return out, nil
}

// VarianceBasedFiltering drops low-variance features: those whose variance
// across all samples falls below minVariance (default 0.01 when zero).
// It returns the filtered table and the names of the dropped features.
func VarianceBasedFiltering(t *Table, minVariance float64) (*Table, []string) {
	if minVariance == 0 {
		minVariance = 0.01
	}
	var dropped []string
	out := t.FilterRows(func(i int) bool {
		v := stat.Variance(t.Values[i], nil)
		if v < minVariance {
			dropped = append(dropped, t.Features[i])
			return false
		}
		return true
	})
	sort.Strings(dropped)
	return out, dropped
}
