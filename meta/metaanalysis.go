package meta

import (
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/goerr"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Eligible reports whether a term that is enriched in enrichedCount of
// groupSize taxa within a taxonomic group meets the lineagePercentage
// threshold for meta-analysis within that group.
func Eligible(enrichedCount, groupSize int, lineagePercentage float64) bool {
	if groupSize < 2 {
		return false
	}
	return float64(enrichedCount) >= lineagePercentage*float64(groupSize)
}

// Config controls the Paule-Mandel fit and permutation test.
type Config struct {
	Permutations int
	PMIterations int
	PMTolerance  float64
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{Permutations: 1000, PMIterations: 1000, PMTolerance: 1e-6}
}

// PooledResult is the outcome of pooling one term's effect sizes across
// the taxa of a group.
type PooledResult struct {
	Beta         float64 // pooled log odds ratio
	Variance     float64 // (1^T Sigma^-1 1)^-1 at the fitted tau^2
	Tau2         float64 // between-study (phylogenetic) variance
	Q            float64 // fixed-effect heterogeneity statistic
	QPValue      float64 // P(chi^2_{n-1} >= Q) under the fixed-effect null
	I2           float64 // max(0, (Q-(n-1))/Q)
	PermPValue   float64
	SpeciesCount int
}

// Pool fits the random-effects model y = Xβ + u + e for the taxa named by
// taxa (with effect sizes y and within-study variances v, one entry per
// taxon, in the same order), estimates τ² by Paule-Mandel, and scores the
// pooled effect with a permutation p-value seeded by seed. vcv supplies
// the phylogenetic correlation structure; taxa must all be present in it.
func Pool(y, v []float64, taxa []annotation.TaxonID, vcv *VCV, cfg Config, seed int64) (PooledResult, error) {
	n := len(y)
	if n == 0 {
		return PooledResult{}, fmt.Errorf("%w: meta: no contributing taxa", goerr.ErrInconsistentInput)
	}
	if n == 1 {
		return PooledResult{Beta: y[0], Variance: v[0], PermPValue: 1, SpeciesCount: 1}, nil
	}

	corrV, err := vcv.Submatrix(taxa)
	if err != nil {
		return PooledResult{}, err
	}

	fixedQ := fixedEffectQ(y, v)

	tau2, fit, err := pauleMandel(y, v, corrV, cfg.PMIterations, cfg.PMTolerance)
	if err != nil {
		return PooledResult{}, err
	}

	target := float64(n - 1)
	i2 := 0.0
	if fixedQ > 0 {
		i2 = math.Max(0, (fixedQ-target)/fixedQ)
	}
	qPValue := distuv.ChiSquared{K: target, Src: nil}.Survival(fixedQ)

	permP, err := permutationPValue(y, v, corrV, fit.Beta, cfg.Permutations, seed, cfg.PMIterations, cfg.PMTolerance)
	if err != nil {
		return PooledResult{}, err
	}

	return PooledResult{
		Beta:         fit.Beta,
		Variance:     fit.Variance,
		Tau2:         tau2,
		Q:            fixedQ,
		QPValue:      qPValue,
		I2:           i2,
		PermPValue:   permP,
		SpeciesCount: n,
	}, nil
}

// fixedEffectQ computes Cochran's Q at τ²=0, where Σ is exactly diag(v)
// regardless of the phylogenetic correlation structure: the
// inverse-variance-weighted mean is the ordinary fixed-effect pooled
// estimate, computed directly via [stat.Mean] rather than through the
// general matrix solve evalPM uses for τ²>0.
func fixedEffectQ(y, v []float64) float64 {
	weights := make([]float64, len(v))
	for i, vi := range v {
		if vi <= 0 {
			vi = 1e-12
		}
		weights[i] = 1 / vi
	}
	beta := stat.Mean(y, weights)
	var q float64
	for i, yi := range y {
		q += weights[i] * (yi - beta) * (yi - beta)
	}
	return q
}

// pmPoint is the state of a Paule-Mandel fit at one trial value of τ².
type pmPoint struct {
	Beta     float64
	Variance float64
	Q        float64
}

// evalPM evaluates the weighted-least-squares fit and generalized Q
// statistic at a fixed τ², per the random-effects model Σ = diag(v) +
// τ²·corrV.
func evalPM(y, v []float64, corrV *mat.SymDense, tau2 float64) (pmPoint, error) {
	n := len(y)
	sigma := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			val := tau2 * corrV.At(i, j)
			if i == j {
				val += v[i]
			}
			sigma.Set(i, j, val)
		}
	}
	sigmaInv, err := pseudoInverse(sigma)
	if err != nil {
		return pmPoint{}, err
	}

	ones := mat.NewVecDense(n, onesOf(n))
	var w mat.VecDense
	w.MulVec(sigmaInv, ones)
	sumW := mat.Sum(&w)
	if sumW == 0 {
		return pmPoint{}, fmt.Errorf("%w: meta: singular Σ during Paule-Mandel fit", goerr.ErrNumericFailure)
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), y...))
	beta := mat.Dot(&w, yVec) / sumW

	resid := make([]float64, n)
	for i, yi := range y {
		resid[i] = yi - beta
	}
	residVec := mat.NewVecDense(n, resid)
	var sInvResid mat.VecDense
	sInvResid.MulVec(sigmaInv, residVec)
	q := mat.Dot(residVec, &sInvResid)

	return pmPoint{Beta: beta, Variance: 1 / sumW, Q: q}, nil
}

func onesOf(n int) []float64 {
	o := make([]float64, n)
	for i := range o {
		o[i] = 1
	}
	return o
}

// pauleMandel finds τ² ≥ 0 solving Q(τ²) = n-1 by bisection, per spec: Q
// is non-increasing in τ² (heavier between-study variance homogenizes
// the weights), so Q(0) ≤ n-1 means no between-study variance is needed.
func pauleMandel(y, v []float64, corrV *mat.SymDense, maxIter int, tol float64) (float64, pmPoint, error) {
	n := len(y)
	target := float64(n - 1)

	at0, err := evalPM(y, v, corrV, 0)
	if err != nil {
		return 0, pmPoint{}, err
	}
	if at0.Q <= target {
		return 0, at0, nil
	}

	lower, upper := 0.0, 1.0
	var atUpper pmPoint
	bracketed := false
	for i := 0; i < maxIter; i++ {
		atUpper, err = evalPM(y, v, corrV, upper)
		if err != nil {
			return 0, pmPoint{}, err
		}
		if atUpper.Q <= target {
			bracketed = true
			break
		}
		lower = upper
		upper *= 2
	}
	if !bracketed {
		// Heterogeneity never resolves within the search range; report
		// the largest τ² tried rather than iterate forever.
		return lower, atUpper, nil
	}

	mid, atMid := upper, atUpper
	for i := 0; i < maxIter; i++ {
		mid = (lower + upper) / 2
		atMid, err = evalPM(y, v, corrV, mid)
		if err != nil {
			return 0, pmPoint{}, err
		}
		if atMid.Q > target {
			lower = mid
		} else {
			upper = mid
		}
		if upper-lower < tol {
			break
		}
	}
	return mid, atMid, nil
}

// permutationPValue shuffles the labels of y across taxa (V and v stay
// fixed to their original taxon) permutations times, recomputing τ² and
// β̂ for each shuffle, and reports (k+1)/(K+1), where K is the number of
// shuffles whose fit succeeded and k the number of those whose pooled
// effect is at least as extreme (in absolute value) as the observed one.
func permutationPValue(y, v []float64, corrV *mat.SymDense, observed float64, permutations int, seed int64, maxIter int, tol float64) (float64, error) {
	if permutations <= 0 {
		return 1, nil
	}
	n := len(y)
	rng := rand.New(rand.NewSource(seed))
	order := make([]int, n)
	shuffled := make([]float64, n)

	exceeds := 0
	attempted := 0
	for p := 0; p < permutations; p++ {
		for i := range order {
			order[i] = i
		}
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		for i, src := range order {
			shuffled[i] = y[src]
		}
		_, fit, err := pauleMandel(shuffled, v, corrV, maxIter, tol)
		if err != nil {
			continue
		}
		attempted++
		if math.Abs(fit.Beta) >= math.Abs(observed) {
			exceeds++
		}
	}
	return float64(exceeds+1) / float64(attempted+1), nil
}

// pseudoInverse returns the Moore-Penrose pseudo-inverse of a symmetric
// matrix a via its SVD, zeroing singular values below 1e-6 of the
// largest one. It is an error for every singular value to fall below
// that threshold (a is numerically the zero matrix).
func pseudoInverse(a *mat.Dense) (*mat.Dense, error) {
	n, _ := a.Dims()
	var svd mat.SVD
	if !svd.Factorize(a, mat.SVDFull) {
		return nil, fmt.Errorf("%w: meta: SVD factorization failed", goerr.ErrNumericFailure)
	}
	values := svd.Values(nil)

	maxSV := 0.0
	for _, s := range values {
		if s > maxSV {
			maxSV = s
		}
	}
	if maxSV == 0 {
		return nil, fmt.Errorf("%w: meta: singular Σ (zero matrix)", goerr.ErrNumericFailure)
	}
	const relTol = 1e-6
	eps := relTol * maxSV

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	dInv := mat.NewDense(n, n, nil)
	rank := 0
	for i, s := range values {
		if s > eps {
			dInv.Set(i, i, 1/s)
			rank++
		}
	}
	if rank == 0 {
		return nil, fmt.Errorf("%w: meta: singular Σ (no singular values above threshold)", goerr.ErrNumericFailure)
	}

	var tmp, result mat.Dense
	tmp.Mul(&v, dInv)
	result.Mul(&tmp, u.T())
	return &result, nil
}

// DeriveSeed deterministically derives a permutation RNG seed from a
// taxonomic group and term identifier, so permutation p-values are
// reproducible independent of worker scheduling when no seed is
// explicitly configured.
func DeriveSeed(group, term string) int64 {
	h := fnv.New64a()
	h.Write([]byte(group))
	h.Write([]byte{0})
	h.Write([]byte(term))
	return int64(h.Sum64())
}
