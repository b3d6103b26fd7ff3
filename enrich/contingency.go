// Package enrich computes per-term enrichment statistics (odds ratio,
// Fisher's exact / hypergeometric p-values) and multiple-testing
// correction over those p-values.
package enrich

import "math"

// Table is a 2x2 contingency table for one GO term in one taxon:
//
//	            term         not term
//	study       A            B
//	background  C            D
//
// where "background" rows count only the proteins not also in the study
// set (the background population is a superset of the study population).
type Table struct {
	A, B, C, D int
}

// NewTable builds the contingency table for a single GO term from raw
// annotation counts. studyTotal and backgroundTotal are the total protein
// counts of the study and background populations respectively; the
// background is assumed to contain the study population.
func NewTable(studyWithTerm, backgroundWithTerm, studyTotal, backgroundTotal int) Table {
	a := studyWithTerm
	b := subZero(studyTotal, studyWithTerm)
	c := subZero(backgroundWithTerm, studyWithTerm)
	d := subZero(subZero(backgroundTotal, backgroundWithTerm), subZero(studyTotal, studyWithTerm))
	return Table{A: a, B: b, C: c, D: d}
}

func subZero(x, y int) int {
	if x < y {
		return 0
	}
	return x - y
}

// LogOddsRatio returns ln((A*D)/(B*C)). If any cell of the table is zero,
// all four cells are first smoothed by +0.5 (the Haldane-Anscombe
// correction) so the ratio is always finite; the correction never alters
// the table used for significance testing, only the table used here.
func (t Table) LogOddsRatio() float64 {
	a, b, c, d := float64(t.A), float64(t.B), float64(t.C), float64(t.D)
	if t.A == 0 || t.B == 0 || t.C == 0 || t.D == 0 {
		a += 0.5
		b += 0.5
		c += 0.5
		d += 0.5
	}
	return math.Log((a * d) / (b * c))
}

// Variance returns the variance of the log odds ratio, 1/A+1/B+1/C+1/D,
// under the same Haldane-Anscombe smoothing LogOddsRatio applies.
func (t Table) Variance() float64 {
	a, b, c, d := float64(t.A), float64(t.B), float64(t.C), float64(t.D)
	if t.A == 0 || t.B == 0 || t.C == 0 || t.D == 0 {
		a += 0.5
		b += 0.5
		c += 0.5
		d += 0.5
	}
	return 1/a + 1/b + 1/c + 1/d
}

// N returns the table's grand total, A+B+C+D.
func (t Table) N() int { return t.A + t.B + t.C + t.D }
