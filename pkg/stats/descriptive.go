package stats

import (
	"fmt"
	"math"
	"math/rand/v2"

	mfstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CohenD calculates the effect size between two groups, returning Cohen's
// d and its variance. Interpretation: 0.2 small, 0.5 medium, 0.8 large.
//
// For paired samples (e.g. tumor and tumor-adjacent tissue from the same
// patient), x and y must have equal length and d is computed on the
// differences. For unpaired samples a pooled standard deviation with
// nx+ny-2 degrees of freedom is used.
func CohenD(x, y []float64, paired bool) (d, varD float64, err error) {
	if paired {
		if len(x) != len(y) {
			return 0, 0, fmt.Errorf("paired samples require equal sizes, got %d and %d", len(x), len(y))
		}
		diff := make([]float64, len(x))
		for i := range x {
			diff[i] = x[i] - y[i]
		}
		n := float64(len(diff))
		d = stat.Mean(diff, nil) / stat.StdDev(diff, nil)
		varD = 1/n + d*d/(2*n)
		return d, varD, nil
	}

	nx, ny := float64(len(x)), float64(len(y))
	if nx < 2 || ny < 2 {
		return 0, 0, fmt.Errorf("need at least 2 observations per group")
	}
	dof := nx + ny - 2
	sx, sy := stat.StdDev(x, nil), stat.StdDev(y, nil)
	pooled := math.Sqrt(((nx-1)*sx*sx + (ny-1)*sy*sy) / dof)
	d = (stat.Mean(x, nil) - stat.Mean(y, nil)) / pooled
	varD = (nx+ny)/(nx*ny) + d*d/(2*(nx+ny))
	return d, varD, nil
}

// HodgesLehmann returns the Hodges-Lehmann estimator of the median: the
// median of all pairwise Walsh sums z_i + z_j (i <= j), halved. NaN values
// are ignored.
func HodgesLehmann(z []float64) float64 {
	clean := z[:0:0]
	for _, v := range z {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return math.NaN()
	}
	sums := make([]float64, 0, len(clean)*(len(clean)+1)/2)
	for i := 0; i < len(clean); i++ {
		for j := 0; j <= i; j++ {
			sums = append(sums, clean[i]+clean[j])
		}
	}
	med, err := mfstats.Median(sums)
	if err != nil {
		return math.NaN()
	}
	return med / 2
}

// MahalanobisDistance calculates the effect size between two groups in a
// multivariate comparison. The matrices hold variables as rows and
// observations as columns. The pooled covariance is inverted with a
// pseudo-inverse, so rank-deficient covariance structures are handled.
//
// For paired comparisons the distance of x-y against the origin is
// computed, mirroring the univariate paired design.
func MahalanobisDistance(x, y mat.Matrix, paired bool) (float64, error) {
	xr, xc := x.Dims()
	yr, yc := y.Dims()
	if paired {
		if xr != yr || xc != yc {
			return 0, fmt.Errorf("paired samples require equal shapes, got %dx%d and %dx%d", xr, xc, yr, yc)
		}
		diff := mat.NewDense(xr, xc, nil)
		diff.Sub(x, y)
		x = diff
		y = mat.NewDense(xr, xc, nil)
	}
	if xr != yr {
		return 0, fmt.Errorf("groups must share variables, got %d and %d rows", xr, yr)
	}

	covX := rowCovariance(x)
	covY := rowCovariance(y)
	pooled := mat.NewDense(xr, xr, nil)
	pooled.Add(covX, covY)
	pooled.Scale(0.5, pooled)

	inv, err := pseudoInverse(pooled)
	if err != nil {
		return 0, err
	}

	diffMeans := mat.NewVecDense(xr, nil)
	for i := 0; i < xr; i++ {
		diffMeans.SetVec(i, rowMean(y, i)-rowMean(x, i))
	}

	tmp := mat.NewVecDense(xr, nil)
	tmp.MulVec(inv, diffMeans)
	d2 := mat.Dot(diffMeans, tmp)
	if d2 < 0 {
		d2 = 0
	}
	return math.Sqrt(d2), nil
}

// MahalanobisVariance estimates the variance of the Mahalanobis distance
// via bootstrapping (1000 resamples over pooled observations). The seed
// makes the estimate reproducible.
func MahalanobisVariance(x, y mat.Matrix, paired bool, seed uint64) (float64, error) {
	const iterations = 1000

	xr, xc := x.Dims()
	_, yc := y.Dims()
	total := xc + yc

	// Pool observations as rows for resampling.
	pool := mat.NewDense(total, xr, nil)
	for j := 0; j < xc; j++ {
		for i := 0; i < xr; i++ {
			pool.Set(j, i, x.At(i, j))
		}
	}
	for j := 0; j < yc; j++ {
		for i := 0; i < xr; i++ {
			pool.Set(xc+j, i, y.At(i, j))
		}
	}

	rng := rand.New(rand.NewPCG(seed, 0))
	samples := make([]float64, iterations)
	for it := 0; it < iterations; it++ {
		xs := mat.NewDense(xr, xc, nil)
		ys := mat.NewDense(xr, yc, nil)
		for j := 0; j < total; j++ {
			src := rng.IntN(total)
			for i := 0; i < xr; i++ {
				if j < xc {
					xs.Set(i, j, pool.At(src, i))
				} else {
					ys.Set(i, j-xc, pool.At(src, i))
				}
			}
		}
		d, err := MahalanobisDistance(xs, ys, paired)
		if err != nil {
			return 0, err
		}
		samples[it] = d
	}
	return stat.Variance(samples, nil) * float64(iterations-1) / float64(iterations), nil
}

// rowCovariance computes the covariance matrix of a variables-by-
// observations matrix (each row is one variable).
func rowCovariance(m mat.Matrix) *mat.Dense {
	r, c := m.Dims()
	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		mean := rowMean(m, i)
		for j := 0; j < c; j++ {
			centered.Set(i, j, m.At(i, j)-mean)
		}
	}
	cov := mat.NewDense(r, r, nil)
	cov.Mul(centered, centered.T())
	denom := float64(c - 1)
	if denom < 1 {
		denom = 1
	}
	cov.Scale(1/denom, cov)
	return cov
}

func rowMean(m mat.Matrix, i int) float64 {
	_, c := m.Dims()
	var sum float64
	for j := 0; j < c; j++ {
		sum += m.At(i, j)
	}
	return sum / float64(c)
}

// pseudoInverse computes the Moore-Penrose pseudo-inverse via thin SVD,
// discarding singular values below the numpy-style tolerance.
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDThin) {
		return nil, fmt.Errorf("SVD factorization failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	s := svd.Values(nil)

	r, c := a.Dims()
	dim := r
	if c > dim {
		dim = c
	}
	var maxS float64
	for _, sv := range s {
		if sv > maxS {
			maxS = sv
		}
	}
	tol := float64(dim) * 2.220446049250313e-16 * maxS

	sInv := mat.NewDense(len(s), len(s), nil)
	for i, sv := range s {
		if sv > tol {
			sInv.Set(i, i, 1/sv)
		}
	}

	out := mat.NewDense(c, r, nil)
	var tmp mat.Dense
	tmp.Mul(&v, sInv)
	out.Mul(&tmp, u.T())
	return out, nil
}
