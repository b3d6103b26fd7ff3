package enrich

import "math"

// Method selects the statistical test used to score a contingency table.
type Method int

const (
	Fishers Method = iota
	Hypergeometric
)

func (m Method) String() string {
	switch m {
	case Fishers:
		return "fishers"
	case Hypergeometric:
		return "hypergeometric"
	default:
		return "unknown"
	}
}

// Result is the outcome of testing one GO term for enrichment.
type Result struct {
	LogOddsRatio float64
	Variance     float64
	PValue       float64
	Table        Table
}

// Test scores t for enrichment of the study population in the term,
// using the statistical test named by m.
func Test(t Table, m Method) Result {
	var p float64
	switch m {
	case Hypergeometric:
		p = hypergeometricSF(t)
	default:
		p = fishersExact(t)
	}
	return Result{
		LogOddsRatio: t.LogOddsRatio(),
		Variance:     t.Variance(),
		PValue:       p,
		Table:        t,
	}
}

// logChoose returns ln(C(n, k)), or -Inf if k is out of [0, n].
func logChoose(n, k int) float64 {
	if k < 0 || k > n {
		return math.Inf(-1)
	}
	return lgammaInt(n+1) - lgammaInt(k+1) - lgammaInt(n-k+1)
}

func lgammaInt(n int) float64 {
	v, _ := math.Lgamma(float64(n))
	return v
}

// logHyperPMF returns the log probability that a hypergeometric random
// variable with population N, K successes in the population, and n draws
// equals x.
func logHyperPMF(x, N, K, n int) float64 {
	return logChoose(K, x) + logChoose(N-K, n-x) - logChoose(N, n)
}

// hyperBounds returns the inclusive range of values the draw count for
// the "term" category can take given table margins.
func hyperBounds(t Table) (N, K, n, lo, hi int) {
	N = t.A + t.B + t.C + t.D
	K = t.A + t.C // total with term
	n = t.A + t.B // total drawn (study size)
	lo = 0
	if n-(N-K) > lo {
		lo = n - (N - K)
	}
	hi = n
	if K < hi {
		hi = K
	}
	return N, K, n, lo, hi
}

// hypergeometricSF returns P(X >= A), the one-sided enrichment-tail
// hypergeometric p-value, computed in log space via logHyperPMF to avoid
// overflow for large populations.
func hypergeometricSF(t Table) float64 {
	N, K, n, _, hi := hyperBounds(t)
	if t.N() == 0 {
		return 1
	}
	sum := 0.0
	for x := t.A; x <= hi; x++ {
		sum += math.Exp(logHyperPMF(x, N, K, n))
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}

// fishersExact returns the one-sided (enrichment-tail) Fisher's exact
// test p-value, P(X >= A): the sum, over every table sharing t's margins
// with at least as many term hits as observed, of that table's exact
// hypergeometric probability. This is the "greater" tail of Fisher's
// exact test, not the two-sided test; it is deliberately the same
// computation as hypergeometricSF, since the one-sided Fisher's exact
// p-value and the hypergeometric survival function are the same
// quantity.
func fishersExact(t Table) float64 {
	N, K, n, _, hi := hyperBounds(t)
	if t.N() == 0 {
		return 1
	}
	sum := 0.0
	for x := t.A; x <= hi; x++ {
		sum += math.Exp(logHyperPMF(x, N, K, n))
	}
	if sum > 1 {
		sum = 1
	}
	return sum
}
