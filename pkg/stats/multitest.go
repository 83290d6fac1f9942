package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/stat/distuv"
)

// BenjaminiHochberg adjusts p-values for multiple testing via the
// Benjamini-Hochberg step-up procedure, controlling the false discovery
// rate. The result preserves the input ordering.
func BenjaminiHochberg(p []float64) []float64 {
	n := len(p)
	if n == 0 {
		return nil
	}
	order := argsort(p)

	adjusted := make([]float64, n)
	for rank, idx := range order {
		adjusted[rank] = p[idx] * float64(n) / float64(rank+1)
	}
	// Enforce monotonicity from the largest p-value down.
	for i := n - 2; i >= 0; i-- {
		if adjusted[i] > adjusted[i+1] {
			adjusted[i] = adjusted[i+1]
		}
	}

	out := make([]float64, n)
	for rank, idx := range order {
		out[idx] = math.Min(adjusted[rank], 1)
	}
	return out
}

// Pi0TST estimates the proportion of true null hypotheses in a set of
// p-values using the two-stage method: the BH procedure is run at the
// deflated level alpha/(1+alpha) and the non-rejection rate is taken as
// the estimate.
func Pi0TST(p []float64, alpha float64) float64 {
	if len(p) == 0 {
		return 1
	}
	alphaPrime := alpha / (1 + alpha)
	adjusted := BenjaminiHochberg(p)
	rejected := 0
	for _, q := range adjusted {
		if q < alphaPrime {
			rejected++
		}
	}
	return float64(len(p)-rejected) / float64(len(p))
}

// GroupedPValues carries one feature group for the grouped two-stage
// correction: parallel slices of feature identifiers and raw p-values.
type GroupedPValues struct {
	IDs     []string
	PValues []float64
}

// TSTGroupedBH performs the two-stage adaptive Benjamini-Hochberg
// procedure per feature group. Within each group the proportion of true
// nulls is estimated first and the significance threshold is inflated to
// alpha/pi0; groups estimated to be all-null get every adjusted p-value
// set to 1. It returns adjusted p-values and significance calls keyed by
// feature identifier.
func TSTGroupedBH(groups map[string]GroupedPValues, alpha float64) (map[string]float64, map[string]bool) {
	adjustedOut := make(map[string]float64)
	significant := make(map[string]bool)
	for _, group := range groups {
		pi0 := Pi0TST(group.PValues, alpha)
		if pi0 == 1 {
			for _, id := range group.IDs {
				adjustedOut[id] = 1.0
				significant[id] = false
			}
			continue
		}
		adjustedAlpha := alpha / pi0
		adjusted := BenjaminiHochberg(group.PValues)
		for i, id := range group.IDs {
			q := math.Max(adjusted[i], group.PValues[i])
			adjustedOut[id] = q
			significant[id] = q < adjustedAlpha
		}
	}
	return adjustedOut, significant
}

// bFor picks the 'b' parameter of Jeffreys' approximate Bayes factor.
// Methods: "JAB" (1/n), "min" (2/n), "robust" (max of 2/n and 1/sqrt(n)),
// "balanced" (quadrature over a realistic effect-size range up to upper).
// Unknown methods fall back to 1/n.
func bFor(n int, method string, upper float64) float64 {
	fn := float64(n)
	switch method {
	case "JAB":
		return 1 / fn
	case "min":
		return 2 / fn
	case "robust":
		return math.Max(2/fn, 1/math.Sqrt(fn))
	case "balanced":
		integrand := func(x float64) float64 {
			return math.Exp(-fn * x * x / 4)
		}
		integral := quad.Fixed(integrand, 0, upper, 200, nil, 0)
		return math.Max(2/fn, math.Min(0.5, integral))
	default:
		return 1 / fn
	}
}

// BayesFactor transforms a p-value into Jeffreys' approximate Bayes
// factor in favour of H1. Set z when the p-value comes from a z-statistic
// rather than a t-statistic with n-2 degrees of freedom. upper only
// matters for the "balanced" method.
func BayesFactor(n int, p float64, z bool, method string, upper float64) float64 {
	var tStat float64
	if z {
		tStat = distuv.Normal{Mu: 0, Sigma: 1}.Quantile(1 - p/2)
	} else {
		tStat = distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(n - 2)}.Quantile(1 - p/2)
	}
	b := bFor(n, method, upper)
	return math.Exp(0.5*tStat*tStat) * math.Sqrt(b)
}

// AlphaN sets the significance level for a given sample size via
// Bayesian-Adaptive Alpha Adjustment: the alpha at which a borderline
// result would correspond to the requested Bayes factor (default choice 3
// upstream). Larger samples get stricter alphas.
func AlphaN(n int, bayesFactor float64, method string, upper float64) float64 {
	b := bFor(n, method, upper)
	chi2 := distuv.ChiSquared{K: 1}
	return 1 - chi2.CDF(2*math.Log(bayesFactor/math.Sqrt(b)))
}

// argsort returns the permutation that sorts v ascending.
func argsort(v []float64) []int {
	order := make([]int, len(v))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return v[order[a]] < v[order[b]] })
	return order
}
