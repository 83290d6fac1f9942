package stats

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// TestResult holds the outcome of a two-group hypothesis test.
type TestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// WelchT performs Welch's unequal-variance t-test on two independent
// samples, two-sided.
func WelchT(x, y []float64) (TestResult, error) {
	nx, ny := float64(len(x)), float64(len(y))
	if nx < 2 || ny < 2 {
		return TestResult{}, fmt.Errorf("need at least 2 observations per group")
	}
	mx, my := stat.Mean(x, nil), stat.Mean(y, nil)
	vx, vy := stat.Variance(x, nil), stat.Variance(y, nil)

	se2 := vx/nx + vy/ny
	if se2 == 0 {
		return TestResult{Statistic: 0, PValue: 1}, nil
	}
	t := (mx - my) / math.Sqrt(se2)

	// Welch-Satterthwaite degrees of freedom.
	df := se2 * se2 / ((vx*vx)/(nx*nx*(nx-1)) + (vy*vy)/(ny*ny*(ny-1)))

	dist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	p := 2 * dist.Survival(math.Abs(t))
	return TestResult{Statistic: t, PValue: p}, nil
}

// MannWhitneyU performs the Mann-Whitney U rank-sum test on two
// independent samples, two-sided, with tie correction and continuity
// correction under the normal approximation.
func MannWhitneyU(x, y []float64) (TestResult, error) {
	nx, ny := float64(len(x)), float64(len(y))
	if nx == 0 || ny == 0 {
		return TestResult{}, fmt.Errorf("both samples must be non-empty")
	}

	pooled := make([]float64, 0, len(x)+len(y))
	pooled = append(pooled, x...)
	pooled = append(pooled, y...)
	ranks, tieTerm := rankWithTies(pooled)

	var rx float64
	for i := range x {
		rx += ranks[i]
	}
	u1 := rx - nx*(nx+1)/2
	u2 := nx*ny - u1
	u := math.Min(u1, u2)

	n := nx + ny
	mu := nx * ny / 2
	sigma2 := nx * ny / 12 * ((n + 1) - tieTerm/(n*(n-1)))
	if sigma2 <= 0 {
		return TestResult{Statistic: u, PValue: 1}, nil
	}
	z := (u - mu + 0.5) / math.Sqrt(sigma2)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * norm.CDF(z)
	if p > 1 {
		p = 1
	}
	return TestResult{Statistic: u, PValue: p}, nil
}

// WilcoxonSignedRank performs the Wilcoxon signed-rank test on paired
// samples, two-sided, dropping zero differences and applying tie and
// continuity corrections under the normal approximation.
func WilcoxonSignedRank(x, y []float64) (TestResult, error) {
	if len(x) != len(y) {
		return TestResult{}, fmt.Errorf("paired samples require equal sizes, got %d and %d", len(x), len(y))
	}
	var diff []float64
	for i := range x {
		if d := x[i] - y[i]; d != 0 {
			diff = append(diff, d)
		}
	}
	n := float64(len(diff))
	if n == 0 {
		return TestResult{Statistic: 0, PValue: 1}, nil
	}

	abs := make([]float64, len(diff))
	for i, d := range diff {
		abs[i] = math.Abs(d)
	}
	ranks, tieTerm := rankWithTies(abs)

	var wPlus, wMinus float64
	for i, d := range diff {
		if d > 0 {
			wPlus += ranks[i]
		} else {
			wMinus += ranks[i]
		}
	}
	w := math.Min(wPlus, wMinus)

	mu := n * (n + 1) / 4
	sigma2 := n*(n+1)*(2*n+1)/24 - tieTerm/48
	if sigma2 <= 0 {
		return TestResult{Statistic: w, PValue: 1}, nil
	}
	z := (w - mu + 0.5) / math.Sqrt(sigma2)

	norm := distuv.Normal{Mu: 0, Sigma: 1}
	p := 2 * norm.CDF(z)
	if p > 1 {
		p = 1
	}
	return TestResult{Statistic: w, PValue: p}, nil
}

// rankWithTies assigns midranks (1-based, ties averaged) and returns the
// tie correction term sum(t^3 - t) over tie groups.
func rankWithTies(v []float64) (ranks []float64, tieTerm float64) {
	type iv struct {
		idx int
		val float64
	}
	order := make([]iv, len(v))
	for i, x := range v {
		order[i] = iv{i, x}
	}
	sort.Slice(order, func(a, b int) bool { return order[a].val < order[b].val })

	ranks = make([]float64, len(v))
	for i := 0; i < len(order); {
		j := i
		for j < len(order) && order[j].val == order[i].val {
			j++
		}
		// Midrank of positions i..j-1 (1-based).
		mid := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k].idx] = mid
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}
	return ranks, tieTerm
}
