package stats

import (
	"fmt"
	"math"
	"math/big"

	"gonum.org/v1/gonum/stat/distuv"
)

// JTK detects rhythmicity in time-series abundance data with the
// Jonckheere-Terpstra-Kendall algorithm: measurements are rank-correlated
// against reference cosine waves over a set of candidate periods and
// phase lags, and the best-fitting wave's period, lag and amplitude are
// reported together with a BH-adjusted p-value.
//
// A JTK value precomputes the null distribution and the reference waves
// for one experimental design (timepoints, replication, candidate
// periods) and can score any number of molecules via Run.
type JTK struct {
	interval   float64
	timepoints int
	reps       int
	periods    []int

	nn    int     // total number of measurements
	maxS  float64 // maximum attainable Kendall statistic
	exact bool
	exv   float64
	sdv   float64
	cp    []float64 // exact upper-tail p-values at half-integer statistics

	// Per period, per phase lag: pairwise signs of the reference wave and
	// the raw cosine signs used for amplitude estimation.
	cgoosv  [][][]float64
	signcos [][][]float64
}

// JTKResult describes the best-fitting reference wave for one molecule.
type JTKResult struct {
	AdjPValue float64 `json:"adj_p_value"`
	Period    float64 `json:"period"`
	Lag       float64 `json:"lag"`
	Amplitude float64 `json:"amplitude"`
	Tau       float64 `json:"tau"`
}

// NewJTK prepares a JTK analysis for an experiment with the given number
// of timepoints, replicates per timepoint, candidate periods (in
// timepoints) and the time interval between consecutive timepoints.
func NewJTK(timepoints, replicates int, periods []int, interval float64) (*JTK, error) {
	if timepoints < 2 {
		return nil, fmt.Errorf("need at least 2 timepoints, got %d", timepoints)
	}
	if replicates < 1 {
		return nil, fmt.Errorf("need at least 1 replicate, got %d", replicates)
	}
	if len(periods) == 0 {
		return nil, fmt.Errorf("no candidate periods")
	}
	for _, per := range periods {
		if per < 2 || per > timepoints {
			return nil, fmt.Errorf("period %d out of range [2, %d]", per, timepoints)
		}
	}
	if interval <= 0 {
		interval = 1
	}

	j := &JTK{
		interval:   interval,
		timepoints: timepoints,
		reps:       replicates,
		periods:    periods,
		nn:         timepoints * replicates,
	}
	j.buildNullDistribution()
	j.buildReferenceWaves()
	return j, nil
}

// buildNullDistribution precomputes the exact null distribution of the
// Kendall statistic with the Harding algorithm, in exact integer
// arithmetic. When the permutation count overflows float range the normal
// approximation is used instead.
func (j *JTK) buildNullDistribution() {
	nn := j.nn
	sumSq := j.timepoints * j.reps * j.reps
	maxS := (nn*nn - sumSq) / 2
	j.maxS = float64(maxS)
	j.exv = j.maxS / 2
	variance := (float64(nn*nn)*float64(2*nn+3) - float64(sumSq)*float64(2*j.reps+3)) / 72
	j.sdv = math.Sqrt(variance)

	// The exact table is only usable while the total permutation count
	// stays representable.
	lg, _ := math.Lgamma(float64(nn))
	maxnlp := lg
	for i := 1; i <= j.reps; i++ {
		maxnlp -= math.Log(float64(i))
	}
	if maxnlp > math.Log(math.MaxFloat64)-1 {
		j.exact = false
		return
	}
	j.exact = true

	mm := maxS / 2
	cf := make([]*big.Int, mm+1)
	for i := range cf {
		cf[i] = big.NewInt(1)
	}

	// Harding's recurrence, merging timepoint groups one by one.
	k := j.timepoints
	cum := make([]int, k-1)
	cum[k-2] = j.reps
	for i := k - 2; i >= 1; i-- {
		cum[i-1] = j.reps + cum[i]
	}
	for idx := 0; idx < k-1; idx++ {
		hardingStep(j.reps, cum[idx], mm, cf)
	}

	// Mirror the lower half into the full upper-tail cumulative table.
	full := make([]*big.Int, 0, maxS+1)
	full = append(full, cf...)
	if maxS%2 == 1 {
		top := new(big.Int).Lsh(cf[mm], 1)
		for i := mm - 1; i >= 0; i-- {
			full = append(full, new(big.Int).Sub(top, cf[i]))
		}
		full = append(full, top)
	} else {
		top := new(big.Int).Add(cf[mm-1], cf[mm])
		for i := mm - 2; i >= 0; i-- {
			full = append(full, new(big.Int).Sub(top, cf[i]))
		}
		full = append(full, top)
	}
	for l, r := 0, len(full)-1; l < r; l, r = l+1, r-1 {
		full[l], full[r] = full[r], full[l]
	}

	// Interleave integer and interpolated half-integer entries so the
	// table can be indexed by twice the statistic.
	total := new(big.Float).SetInt(full[0])
	half := big.NewFloat(2)
	j.cp = make([]float64, 2*maxS+1)
	for idx := 1; idx <= 2*maxS+1; idx++ {
		var num big.Float
		if idx%2 == 0 {
			i := (idx - 1) / 2
			num.Add(new(big.Float).SetInt(full[i]), new(big.Float).SetInt(full[i+1]))
			num.Quo(&num, half)
		} else {
			num.SetInt(full[idx/2])
		}
		v, _ := new(big.Float).Quo(&num, total).Float64()
		j.cp[idx-1] = v
	}
}

// hardingStep folds one group of m replicates into the cumulative
// frequency table, given n prior values.
func hardingStep(m, n, mm int, cf []*big.Int) {
	p := min(m+n, mm)
	for t := n + 1; t <= p; t++ {
		for u := mm; u >= t; u-- {
			cf[u].Sub(cf[u], cf[u-t])
		}
	}
	q := min(m, mm)
	for s := 1; s <= q; s++ {
		for u := s; u <= mm; u++ {
			cf[u].Add(cf[u], cf[u-s])
		}
	}
}

// buildReferenceWaves precomputes, for every candidate period and phase
// lag, the pairwise rank signs of the reference cosine and the sign
// pattern used for amplitude estimation.
func (j *JTK) buildReferenceWaves() {
	j.cgoosv = make([][][]float64, len(j.periods))
	j.signcos = make([][][]float64, len(j.periods))
	for pi, per := range j.periods {
		timeToAngle := 2 * 3.1416 / float64(per)
		j.cgoosv[pi] = make([][]float64, per)
		j.signcos[pi] = make([][]float64, per)
		cycles := j.timepoints / per
		for lag := 0; lag < per; lag++ {
			delta := float64(lag) * timeToAngle / 2
			cosv := make([]float64, j.timepoints)
			for t := range cosv {
				cosv[t] = math.Cos(float64(t)*timeToAngle + delta)
			}
			ranks, _ := rankWithTies(cosv)

			cosr := make([]float64, 0, j.nn)
			for _, r := range ranks {
				for rep := 0; rep < j.reps; rep++ {
					cosr = append(cosr, r)
				}
			}
			j.cgoosv[pi][lag] = pairSigns(cosr)

			sc := make([]float64, 0, cycles*per*j.reps)
			for t := 0; t < cycles*per; t++ {
				s := sign(cosv[t])
				for rep := 0; rep < j.reps; rep++ {
					sc = append(sc, s)
				}
			}
			j.signcos[pi][lag] = sc
		}
	}
}

// Run scores one molecule's measurements, ordered by timepoint with
// replicates adjacent. Missing values may be NaN.
func (j *JTK) Run(z []float64) (JTKResult, error) {
	if len(z) != j.nn {
		return JTKResult{}, fmt.Errorf("expected %d measurements, got %d", j.nn, len(z))
	}
	foosv := pairSigns(z)

	type phase struct {
		s float64
		p float64
	}
	var phases []phase
	var pvals []float64
	for pi := range j.periods {
		for lag := range j.cgoosv[pi] {
			var s float64
			cg := j.cgoosv[pi][lag]
			for idx, f := range foosv {
				if !math.IsNaN(f) {
					s += f * cg[idx]
				}
			}
			var p float64
			switch {
			case s == 0:
				p = 1
			case j.exact:
				stat := (math.Abs(s) + j.maxS) / 2
				idx := 1 + 2*int(stat)
				p = 2 * j.cp[idx-1]
			default:
				stat := (math.Abs(s) + j.maxS) / 2
				norm := distuv.Normal{Mu: -j.exv, Sigma: j.sdv}
				p = 2 * norm.CDF(-(stat - 0.5))
			}
			phases = append(phases, phase{s: s, p: p})
			pvals = append(pvals, p)
		}
	}

	padj := BenjaminiHochberg(pvals)
	adjP := math.Inf(1)
	for _, q := range padj {
		if q < adjP {
			adjP = q
		}
	}

	var best JTKResult
	best.AdjPValue = adjP
	flat := 0
	for pi, per := range j.periods {
		for lag := 0; lag < per; lag++ {
			if padj[flat] != adjP {
				flat++
				continue
			}
			ph := phases[flat]
			s := sign(ph.s)
			if s == 0 {
				s = 1
			}
			phaseLag := math.Mod(float64(per)+(1-s)*float64(per)/4-float64(lag)/2, float64(per))

			sc := j.signcos[pi][lag]
			center := HodgesLehmann(z[:len(sc)])
			tmp := make([]float64, len(sc))
			for i := range sc {
				tmp[i] = s * (z[i] - center) * math.Sqrt2 * sc[i]
			}
			amp := HodgesLehmann(tmp)
			if amp > best.Amplitude {
				best.Period = j.interval * float64(per)
				best.Lag = j.interval * phaseLag
				best.Amplitude = amp
				best.Tau = math.Abs(ph.s) / j.maxS
			}
			flat++
		}
	}
	if best.Amplitude < 0 {
		best.Amplitude = 0
	}
	return best, nil
}

// RunTable scores every feature of a table, whose columns must be ordered
// by timepoint with replicates adjacent.
func (j *JTK) RunTable(t *Table) (map[string]JTKResult, error) {
	out := make(map[string]JTKResult, len(t.Features))
	for i, feat := range t.Features {
		res, err := j.Run(t.Row(i))
		if err != nil {
			return nil, fmt.Errorf("feature %s: %w", feat, err)
		}
		out[feat] = res
	}
	return out, nil
}

// pairSigns returns sign(v[q]-v[p]) for every pair p<q, ordered by p then
// q. Pairs touching a NaN are NaN.
func pairSigns(v []float64) []float64 {
	out := make([]float64, 0, len(v)*(len(v)-1)/2)
	for p := 0; p < len(v); p++ {
		for q := p + 1; q < len(v); q++ {
			if math.IsNaN(v[p]) || math.IsNaN(v[q]) {
				out = append(out, math.NaN())
				continue
			}
			out = append(out, sign(v[q]-v[p]))
		}
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}
