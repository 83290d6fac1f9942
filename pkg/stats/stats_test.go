package stats

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func matFromRows(rows [][]float64) *mat.Dense {
	m := mat.NewDense(len(rows), len(rows[0]), nil)
	for i := range rows {
		m.SetRow(i, rows[i])
	}
	return m
}

func approx(t *testing.T, got, want, tol float64, label string) {
	t.Helper()
	if math.IsNaN(got) || math.Abs(got-want) > tol {
		t.Errorf("%s = %g, want %g (±%g)", label, got, want, tol)
	}
}

func TestCohenDUnpaired(t *testing.T) {
	d, v, err := CohenD([]float64{1, 2, 3, 4}, []float64{3, 4, 5, 6}, false)
	if err != nil {
		t.Fatal(err)
	}
	approx(t, d, -1.549, 0.01, "d")
	if v <= 0 {
		t.Errorf("var(d) = %g, want > 0", v)
	}
}

func TestCohenDPaired(t *testing.T) {
	// Constant shift of 1 with some jitter.
	x := []float64{2.1, 3.0, 3.9, 5.2}
	y := []float64{1.0, 2.0, 3.0, 4.0}
	d, _, err := CohenD(x, y, true)
	if err != nil {
		t.Fatal(err)
	}
	if d <= 0 {
		t.Errorf("paired d = %g, want positive", d)
	}
	if _, _, err := CohenD([]float64{1}, []float64{1, 2}, true); err == nil {
		t.Error("mismatched paired sizes should error")
	}
}

func TestHodgesLehmann(t *testing.T) {
	approx(t, HodgesLehmann([]float64{1, 2, 3}), 2, 1e-12, "hlm")
	approx(t, HodgesLehmann([]float64{5}), 5, 1e-12, "hlm single")
	if !math.IsNaN(HodgesLehmann(nil)) {
		t.Error("empty input should give NaN")
	}
	approx(t, HodgesLehmann([]float64{1, math.NaN(), 3}), 2, 1e-12, "hlm with NaN")
}

func TestWelchT(t *testing.T) {
	res, err := WelchT([]float64{1, 2, 3, 4, 5}, []float64{2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	approx(t, res.Statistic, -1, 1e-9, "t")
	if res.PValue < 0.3 || res.PValue > 0.4 {
		t.Errorf("p = %g, want ~0.35", res.PValue)
	}

	same, err := WelchT([]float64{1, 2, 3}, []float64{1, 2, 3})
	if err != nil {
		t.Fatal(err)
	}
	approx(t, same.PValue, 1, 1e-9, "p for identical groups")
}

func TestMannWhitneyU(t *testing.T) {
	res, err := MannWhitneyU([]float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	if res.Statistic != 0 {
		t.Errorf("U = %g, want 0 for full separation", res.Statistic)
	}
	if res.PValue > 0.1 {
		t.Errorf("p = %g, want < 0.1", res.PValue)
	}
}

func TestWilcoxonSignedRank(t *testing.T) {
	x := []float64{2, 4, 6, 8, 10, 12}
	y := []float64{1, 2, 3, 4, 5, 6}
	res, err := WilcoxonSignedRank(x, y)
	if err != nil {
		t.Fatal(err)
	}
	if res.PValue > 0.05 {
		t.Errorf("p = %g, want < 0.05 for consistent shift", res.PValue)
	}

	tie, err := WilcoxonSignedRank([]float64{1, 2}, []float64{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	approx(t, tie.PValue, 1, 1e-12, "p for all-zero differences")
}

func TestBenjaminiHochberg(t *testing.T) {
	got := BenjaminiHochberg([]float64{0.005, 0.04, 0.03})
	approx(t, got[0], 0.015, 1e-12, "adj[0]")
	approx(t, got[1], 0.04, 1e-12, "adj[1]")
	approx(t, got[2], 0.04, 1e-12, "adj[2]")

	uniform := BenjaminiHochberg([]float64{0.01, 0.02, 0.03, 0.04})
	for _, q := range uniform {
		approx(t, q, 0.04, 1e-12, "uniform adj")
	}
	if BenjaminiHochberg(nil) != nil {
		t.Error("empty input should give nil")
	}
}

func TestPi0TST(t *testing.T) {
	allNull := []float64{0.5, 0.6, 0.7, 0.8}
	approx(t, Pi0TST(allNull, 0.05), 1, 1e-12, "pi0 all null")

	mixed := []float64{1e-6, 1e-6, 1e-6, 1e-6, 1e-6, 1e-6, 1e-6, 1e-6, 0.9, 0.95}
	approx(t, Pi0TST(mixed, 0.05), 0.2, 1e-12, "pi0 mixed")
}

func TestTSTGroupedBH(t *testing.T) {
	groups := map[string]GroupedPValues{
		"null": {IDs: []string{"g1", "g2"}, PValues: []float64{0.5, 0.6}},
		"sig":  {IDs: []string{"g3", "g4", "g5", "g6"}, PValues: []float64{1e-6, 1e-6, 1e-6, 0.9}},
	}
	adjusted, significant := TSTGroupedBH(groups, 0.05)

	// An all-null group is clamped to 1.
	approx(t, adjusted["g1"], 1, 1e-12, "null group adj")
	if significant["g1"] {
		t.Error("g1 should not be significant")
	}
	if !significant["g3"] {
		t.Errorf("g3 adj = %g, expected significant", adjusted["g3"])
	}
	if significant["g6"] {
		t.Errorf("g6 adj = %g, expected not significant", adjusted["g6"])
	}
	// Adjusted values never fall below the raw p-value.
	if adjusted["g6"] < 0.9 {
		t.Errorf("adjusted %g below raw p-value", adjusted["g6"])
	}
}

func TestBayesFactor(t *testing.T) {
	strong := BayesFactor(20, 0.001, false, "robust", 10)
	weak := BayesFactor(20, 0.5, false, "robust", 10)
	if strong <= weak {
		t.Errorf("BF(p=0.001) = %g should exceed BF(p=0.5) = %g", strong, weak)
	}
	if weak <= 0 {
		t.Errorf("BF = %g, want positive", weak)
	}
	if bal := BayesFactor(20, 0.01, false, "balanced", 10); bal <= 0 {
		t.Errorf("balanced BF = %g, want positive", bal)
	}
}

func TestAlphaN(t *testing.T) {
	a10 := AlphaN(10, 3, "robust", 10)
	a100 := AlphaN(100, 3, "robust", 10)
	if a10 < 0.05 || a10 > 0.09 {
		t.Errorf("alpha(10) = %g, want ~0.067", a10)
	}
	if a100 >= a10 {
		t.Errorf("alpha should shrink with n: alpha(100) = %g, alpha(10) = %g", a100, a10)
	}
}

func TestVarianceStabilization(t *testing.T) {
	tab := NewTable([]string{"f1", "f2", "f3"}, []string{"s1", "s2"})
	tab.Values = [][]float64{{10, 100}, {20, 5}, {1, 50}}
	if err := VarianceStabilization(tab); err != nil {
		t.Fatal(err)
	}
	for j := range tab.Samples {
		col := tab.Column(j)
		var mean float64
		for _, v := range col {
			mean += v
		}
		mean /= float64(len(col))
		approx(t, mean, 0, 1e-9, "column mean after z-scoring")
	}
}

func TestVarianceStabilizationGrouped(t *testing.T) {
	cases := []struct {
		name     string
		groups   [][]string
		scaled   []string
		unscaled []string
		wantErr  bool
	}{
		{"two groups", [][]string{{"a1", "a2"}, {"b1", "b2"}}, []string{"a1", "a2", "b1", "b2"}, nil, false},
		{"partial", [][]string{{"a1", "a2"}}, []string{"a1", "a2"}, []string{"b1", "b2"}, false},
		{"unknown sample", [][]string{{"a1", "zz"}}, nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tab := NewTable([]string{"f1", "f2", "f3"}, []string{"a1", "a2", "b1", "b2"})
			tab.Values = [][]float64{
				{10, 12, 100, 110},
				{20, 18, 5, 7},
				{1, 2, 50, 55},
			}
			err := VarianceStabilization(tab, tc.groups...)
			if tc.wantErr {
				if err == nil {
					t.Fatal("unknown sample accepted")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			colMean := func(name string) float64 {
				j, _ := tab.SampleIndex(name)
				var mean float64
				for _, v := range tab.Column(j) {
					mean += v
				}
				return mean / float64(len(tab.Features))
			}
			for _, name := range tc.scaled {
				approx(t, colMean(name), 0, 1e-9, "scaled column mean "+name)
			}
			for _, name := range tc.unscaled {
				if m := colMean(name); math.Abs(m) < 1e-9 {
					t.Errorf("column %s scaled despite sitting outside every group", name)
				}
			}
		})
	}
}

func TestImputeAndNormalize(t *testing.T) {
	tab := NewTable([]string{"f1", "f2"}, []string{"s1", "s2", "s3", "s4"})
	tab.Values = [][]float64{
		{10, 0, 12, 8},
		{5, 6, 4, 7},
	}
	out, err := ImputeAndNormalize(tab, []string{"s1", "s2"}, []string{"s3", "s4"}, ImputeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	for j := range out.Samples {
		var sum float64
		for i := range out.Values {
			sum += out.Values[i][j]
		}
		approx(t, sum, 100, 1e-9, "column sum")
	}
	for i := range out.Values {
		for j, v := range out.Values[i] {
			if v == 0 || math.IsNaN(v) {
				t.Errorf("cell (%d,%d) = %g still missing after imputation", i, j, v)
			}
		}
	}
}

func TestImputeDropsSparseFeatures(t *testing.T) {
	tab := NewTable([]string{"dense", "sparse"}, []string{"s1", "s2", "s3", "s4"})
	tab.Values = [][]float64{
		{10, 11, 12, 13},
		{0, 0, 0, 0},
	}
	out, err := ImputeAndNormalize(tab, []string{"s1", "s2"}, []string{"s3", "s4"}, ImputeOptions{MinSamples: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Features) != 1 || out.Features[0] != "dense" {
		t.Errorf("features after filtering = %v, want [dense]", out.Features)
	}
}

func TestImputeDefaultKeepsHalfObserved(t *testing.T) {
	// The default presence threshold is the floor of half the group, so
	// 1 of 3 observed clears a 3-sample group (3/2 = 1) but not a
	// 4-sample group (4/2 = 2).
	tab := NewTable([]string{"f1"}, []string{"a1", "a2", "a3", "b1", "b2", "b3"})
	tab.Values = [][]float64{{9, 0, 0, 8, 7, 6}}
	out, err := ImputeAndNormalize(tab, []string{"a1", "a2", "a3"}, []string{"b1", "b2", "b3"}, ImputeOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Features) != 1 {
		t.Errorf("feature observed in a third of the group dropped at the default threshold")
	}

	wide := NewTable([]string{"f1"}, []string{"a1", "a2", "a3", "a4", "b1", "b2", "b3", "b4"})
	wide.Values = [][]float64{{9, 0, 0, 0, 8, 7, 6, 5}}
	if _, err := ImputeAndNormalize(wide, []string{"a1", "a2", "a3", "a4"}, []string{"b1", "b2", "b3", "b4"}, ImputeOptions{}); err == nil {
		t.Error("feature observed in a quarter of the group survived the default threshold")
	}
}

func TestVarianceBasedFiltering(t *testing.T) {
	tab := NewTable([]string{"flat", "varying"}, []string{"s1", "s2", "s3"})
	tab.Values = [][]float64{
		{5, 5, 5},
		{1, 10, 100},
	}
	out, dropped := VarianceBasedFiltering(tab, 0)
	if len(out.Features) != 1 || out.Features[0] != "varying" {
		t.Errorf("kept %v, want [varying]", out.Features)
	}
	if len(dropped) != 1 || dropped[0] != "flat" {
		t.Errorf("dropped %v, want [flat]", dropped)
	}
}

func TestMahalanobisDistanceUnivariate(t *testing.T) {
	x := matFromRows([][]float64{{1, 2, 3}})
	y := matFromRows([][]float64{{4, 5, 6}})
	d, err := MahalanobisDistance(x, y, false)
	if err != nil {
		t.Fatal(err)
	}
	// One variable with unit pooled variance reduces to the mean shift.
	approx(t, d, 3, 1e-9, "mahalanobis")
}

func TestMahalanobisVarianceReproducible(t *testing.T) {
	x := matFromRows([][]float64{{1, 2, 3, 4}, {2, 4, 6, 8}})
	y := matFromRows([][]float64{{5, 6, 7, 8}, {1, 3, 5, 7}})
	v1, err := MahalanobisVariance(x, y, false, 42)
	if err != nil {
		t.Fatal(err)
	}
	v2, err := MahalanobisVariance(x, y, false, 42)
	if err != nil {
		t.Fatal(err)
	}
	if v1 != v2 {
		t.Errorf("same seed gave %g and %g", v1, v2)
	}
	if v1 < 0 {
		t.Errorf("variance = %g, want >= 0", v1)
	}
}

func TestJTKDetectsCosine(t *testing.T) {
	jtk, err := NewJTK(12, 1, []int{12}, 1)
	if err != nil {
		t.Fatal(err)
	}
	z := make([]float64, 12)
	for i := range z {
		z[i] = math.Cos(2 * math.Pi * float64(i) / 12)
	}
	res, err := jtk.Run(z)
	if err != nil {
		t.Fatal(err)
	}
	if res.AdjPValue > 0.01 {
		t.Errorf("adjusted p = %g for a perfect cosine, want < 0.01", res.AdjPValue)
	}
	approx(t, res.Period, 12, 1e-9, "period")
	approx(t, res.Lag, 0, 1e-9, "lag")
	if res.Amplitude <= 0 {
		t.Errorf("amplitude = %g, want positive", res.Amplitude)
	}
	if res.Tau <= 0.9 {
		t.Errorf("tau = %g, want near 1 for a perfect fit", res.Tau)
	}
}

func TestJTKFlatSeries(t *testing.T) {
	jtk, err := NewJTK(8, 1, []int{4, 8}, 1)
	if err != nil {
		t.Fatal(err)
	}
	res, err := jtk.Run([]float64{3, 3, 3, 3, 3, 3, 3, 3})
	if err != nil {
		t.Fatal(err)
	}
	approx(t, res.AdjPValue, 1, 1e-9, "flat series adjusted p")
}

func TestJTKRejectsBadInput(t *testing.T) {
	jtk, err := NewJTK(6, 2, []int{6}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := jtk.Run([]float64{1, 2, 3}); err == nil {
		t.Error("wrong measurement count should error")
	}
	if _, err := NewJTK(6, 1, []int{7}, 1); err == nil {
		t.Error("period longer than the series should error")
	}
}

func TestInterIntraGroupCorrelation(t *testing.T) {
	features := []string{"g1", "g2", "g3", "g4"}
	samples := []string{"s1", "s2", "s3"}
	control := NewTable(features, samples)
	caseT := NewTable(features, samples)
	for i := range features {
		for j := range samples {
			control.Values[i][j] = 4
			// Group A doubles, group B is unchanged.
			if i < 2 {
				caseT.Values[i][j] = 8
			} else {
				caseT.Values[i][j] = 4
			}
		}
	}
	groups := map[string][]string{
		"A": {"g1", "g2"},
		"B": {"g3", "g4"},
	}
	intra, inter, err := InterIntraGroupCorrelation(caseT, control, groups)
	if err != nil {
		t.Fatal(err)
	}
	if inter < 0.9 {
		t.Errorf("inter-group correlation = %g, want near 1 for a group-level shift", inter)
	}
	if intra > 0.1 {
		t.Errorf("intra-group correlation = %g, want near 0", intra)
	}
}

func TestRankWithTies(t *testing.T) {
	ranks, tieTerm := rankWithTies([]float64{3, 1, 1, 2})
	want := []float64{4, 1.5, 1.5, 3}
	for i := range want {
		approx(t, ranks[i], want[i], 1e-12, "rank")
	}
	approx(t, tieTerm, 6, 1e-12, "tie term")
}
