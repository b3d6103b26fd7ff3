// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package enrich

import (
	"math"
	"testing"
)

func TestNewTableMargins(t *testing.T) {
	tab := NewTable(5, 20, 50, 500)
	if tab.A != 5 {
		t.Errorf("A = %d, want 5", tab.A)
	}
	if tab.B != 45 {
		t.Errorf("B = %d, want 45", tab.B)
	}
	if tab.C != 15 {
		t.Errorf("C = %d, want 15", tab.C)
	}
	if tab.D != 435 {
		t.Errorf("D = %d, want 435", tab.D)
	}
	if tab.N() != 500 {
		t.Errorf("N() = %d, want 500 (background total)", tab.N())
	}
}

func TestNewTableClampsAtZero(t *testing.T) {
	tab := NewTable(10, 3, 10, 20)
	if tab.C != 0 {
		t.Errorf("C = %d, want 0 (background_with_go < study_with_go)", tab.C)
	}
}

func TestLogOddsRatioSmoothsOnlyWhenZero(t *testing.T) {
	tab := NewTable(5, 20, 50, 500)
	direct := math.Log((5.0 * 435.0) / (45.0 * 15.0))
	if math.Abs(tab.LogOddsRatio()-direct) > 1e-9 {
		t.Errorf("LogOddsRatio() = %v, want %v (no smoothing needed)", tab.LogOddsRatio(), direct)
	}

	zero := Table{A: 0, B: 10, C: 5, D: 50}
	smoothed := math.Log((0.5 * 50.5) / (10.5 * 5.5))
	if math.Abs(zero.LogOddsRatio()-smoothed) > 1e-9 {
		t.Errorf("LogOddsRatio() with a zero cell = %v, want %v", zero.LogOddsRatio(), smoothed)
	}
}

func TestHypergeometricAndFishersAgreeOnExtremeEnrichment(t *testing.T) {
	// Perfect separation: every study protein has the term, no background
	// (non-study) protein does. Both tests should report strong significance.
	tab := NewTable(10, 10, 10, 1000)
	hg := Test(tab, Hypergeometric)
	fe := Test(tab, Fishers)
	if hg.PValue > 0.01 {
		t.Errorf("hypergeometric p-value = %v, want a small p-value for perfect enrichment", hg.PValue)
	}
	if fe.PValue > 0.01 {
		t.Errorf("fisher's exact p-value = %v, want a small p-value for perfect enrichment", fe.PValue)
	}
}

func TestFishersExactIsOneSided(t *testing.T) {
	// A is not at the extreme of its hypergeometric range, so a two-sided
	// test and the one-sided enrichment-tail test would diverge here; the
	// one-sided p-value must equal the hypergeometric survival function
	// exactly, not merely agree in significance.
	tab := NewTable(6, 20, 10, 100)
	fe := Test(tab, Fishers)
	hg := Test(tab, Hypergeometric)
	if math.Abs(fe.PValue-hg.PValue) > 1e-12 {
		t.Errorf("fisher's exact p-value = %v, want it identical to the hypergeometric one-sided p-value %v", fe.PValue, hg.PValue)
	}
}

func TestPValueIsLargeWhenNoEnrichment(t *testing.T) {
	// Term proportion identical (1%) between study and background: the
	// one-sided p-value P(X >= 1) is about 0.63, far from significant.
	tab := NewTable(1, 100, 100, 10000)
	hg := Test(tab, Hypergeometric)
	if hg.PValue < 0.5 {
		t.Errorf("p-value = %v, want a large p-value absent enrichment signal", hg.PValue)
	}
}

func TestAdjustBonferroni(t *testing.T) {
	p := []float64{0.01, 0.2, 0.04}
	got := Adjust(p, 0, Bonferroni)
	want := []float64{0.03, 0.6, 0.12}
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Adjust(Bonferroni)[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestAdjustBHMonotonic(t *testing.T) {
	p := []float64{0.001, 0.5, 0.01, 0.3, 0.04}
	adj := Adjust(p, 0, BenjaminiHochberg)

	order := []int{0, 2, 4, 3, 1} // ascending raw p-value order
	for i := 1; i < len(order); i++ {
		if adj[order[i]] < adj[order[i-1]]-1e-12 {
			t.Errorf("BH-adjusted p-values are not monotone nondecreasing in rank: %v", adj)
		}
	}
	for _, v := range adj {
		if v < 0 || v > 1 {
			t.Errorf("adjusted p-value %v out of [0,1]", v)
		}
	}
}

func TestAdjustBYIsMoreConservativeThanBH(t *testing.T) {
	p := []float64{0.001, 0.01, 0.02, 0.03, 0.04}
	bh := Adjust(p, 0, BenjaminiHochberg)
	by := Adjust(p, 0, BenjaminiYekutieli)
	for i := range p {
		if by[i] < bh[i]-1e-12 {
			t.Errorf("BY[%d] = %v < BH[%d] = %v, want BY at least as conservative", i, by[i], i, bh[i])
		}
	}
}

func TestAdjustNoneIsIdentity(t *testing.T) {
	p := []float64{0.1, 0.2, 0.3}
	got := Adjust(p, 0, None)
	for i := range p {
		if got[i] != p[i] {
			t.Errorf("Adjust(None)[%d] = %v, want %v", i, got[i], p[i])
		}
	}
}
