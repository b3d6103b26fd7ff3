// Package semsim computes semantic similarity between Gene Ontology
// terms: Resnik, Lin and Jiang-Conrath (all information-content based)
// and Wang (a purely graph-based measure). Cross-namespace comparisons
// are undefined and reported as NaN.
package semsim

import (
	"math"

	"github.com/taxago/goea/ontology"
	"github.com/taxago/goea/propagate"
)

// Method selects a semantic similarity measure.
type Method int

const (
	Resnik Method = iota
	Lin
	JiangConrath
	Wang
)

func (m Method) String() string {
	switch m {
	case Resnik:
		return "resnik"
	case Lin:
		return "lin"
	case JiangConrath:
		return "jiang_conrath"
	case Wang:
		return "wang"
	default:
		return "unknown"
	}
}

// Wang's fixed relation-weighting scheme.
const (
	wangIsAWeight   = 0.8
	wangPartOfWeight = 0.6
)

// IC holds per-term information content, estimated from a background
// annotation frequency distribution via [NewIC].
type IC struct {
	dag    *ontology.Dag
	values []float64 // indexed by term dense index; NaN if undefined (zero count)
}

// NewIC builds an information-content table for every term in dag from a
// per-term direct annotation count. counts is propagated up the DAG (via
// [propagate.RawCounts]) before IC is computed, so that a term's count
// includes every descendant's annotations, matching the Resnik
// definition of p(t) as the frequency of t "or any of its descendants".
// counts is not mutated; callers that already hold propagated counts can
// pass preserveCounts=true to skip the internal propagation pass.
func NewIC(dag *ontology.Dag, counts map[ontology.ID]int, preserveCounts bool) *IC {
	working := counts
	if !preserveCounts {
		working = make(map[ontology.ID]int, len(counts))
		for id, n := range counts {
			working[id] = n
		}
		propagate.RawCounts(dag, working)
	}

	// Resnik's p(t) is a proportion of "total annotated proteins"; since
	// propagation never crosses namespaces, that total is just whatever
	// count ended up on the term's own namespace root.
	var roots [3]int
	for ns := ontology.Namespace(0); ns < 3; ns++ {
		if r, ok := dag.Root(ns); ok {
			roots[ns] = working[dag.Term(r).ID]
		}
	}

	values := make([]float64, dag.Len())
	for i := range values {
		values[i] = math.NaN()
	}
	for id, n := range working {
		term, ok := dag.TermByID(id)
		if !ok {
			continue
		}
		total := roots[term.Namespace]
		if total <= 0 || n <= 0 {
			continue
		}
		p := float64(n) / float64(total)
		values[term.Index()] = -math.Log(p)
	}
	return &IC{dag: dag, values: values}
}

// Value returns the information content of term idx, or NaN if it has no
// annotated descendants (or itself) in the background used to build ic.
func (ic *IC) Value(idx int32) float64 { return ic.values[idx] }

// MICA returns the most informative common ancestor of a and b — the
// shared ancestor (including a or b itself, if one is ancestor of the
// other) with the highest information content — and its IC value.
func (ic *IC) MICA(a, b int32) (term int32, value float64) {
	d := ic.dag
	setA := map[int32]bool{a: true}
	for _, x := range d.Ancestors(a) {
		setA[x] = true
	}
	candidates := []int32{b}
	candidates = append(candidates, d.Ancestors(b)...)

	best := int32(-1)
	bestIC := math.Inf(-1)
	for _, c := range candidates {
		if !setA[c] {
			continue
		}
		v := ic.values[c]
		if math.IsNaN(v) {
			continue
		}
		if v > bestIC || (v == bestIC && (best < 0 || c < best)) {
			bestIC = v
			best = c
		}
	}
	if best < 0 {
		return -1, math.NaN()
	}
	return best, bestIC
}

// Resnik returns the Resnik similarity of a and b: the information
// content of their most informative common ancestor. NaN if a and b are
// in different namespaces or share no common ancestor with defined IC.
func (ic *IC) Resnik(a, b int32) float64 {
	if !sameNamespace(ic.dag, a, b) {
		return math.NaN()
	}
	_, v := ic.MICA(a, b)
	return v
}

// Lin returns the Lin similarity of a and b: twice the MICA's
// information content divided by the sum of a and b's own information
// content. 0 when that sum is 0.
func (ic *IC) Lin(a, b int32) float64 {
	if !sameNamespace(ic.dag, a, b) {
		return math.NaN()
	}
	icA, icB := ic.values[a], ic.values[b]
	if math.IsNaN(icA) || math.IsNaN(icB) {
		return math.NaN()
	}
	denom := icA + icB
	if denom == 0 {
		return 0
	}
	_, mica := ic.MICA(a, b)
	if math.IsNaN(mica) {
		return math.NaN()
	}
	return 2 * mica / denom
}

// JiangConrath returns the Jiang-Conrath similarity of a and b:
// 1/(1+d) where d = IC(a) + IC(b) - 2*IC(MICA).
func (ic *IC) JiangConrath(a, b int32) float64 {
	if !sameNamespace(ic.dag, a, b) {
		return math.NaN()
	}
	icA, icB := ic.values[a], ic.values[b]
	if math.IsNaN(icA) || math.IsNaN(icB) {
		return math.NaN()
	}
	_, mica := ic.MICA(a, b)
	if math.IsNaN(mica) {
		return math.NaN()
	}
	d := icA + icB - 2*mica
	if d < 0 {
		d = 0
	}
	return 1 / (1 + d)
}

func sameNamespace(d *ontology.Dag, a, b int32) bool {
	return d.Term(a).Namespace == d.Term(b).Namespace
}

// WangSimilarity returns the Wang graph-based similarity of a and b: S-values are
// propagated down from each term to its ancestors along is_a (weight
// 0.8) and part_of (weight 0.6) edges, taking the maximum contribution
// when several paths reach the same ancestor, and similarity is the
// ratio of the shared-ancestor S-value sum to the total S-value sum of
// both terms. Terms in different namespaces report NaN; identical terms
// report 1.
func WangSimilarity(dag *ontology.Dag, a, b int32) float64 {
	if !sameNamespace(dag, a, b) {
		return math.NaN()
	}
	if a == b {
		return 1
	}
	sA := wangSValues(dag, a)
	sB := wangSValues(dag, b)

	var shared, sumA, sumB float64
	for t, v := range sA {
		sumA += v
		if w, ok := sB[t]; ok {
			shared += v + w
		}
	}
	for _, v := range sB {
		sumB += v
	}
	if sumA+sumB == 0 {
		return 0
	}
	return shared / (sumA + sumB)
}

// wangSValues computes S_t(a) for every ancestor a of t (S_t(t) = 1),
// by relaxing contributions from t outward along parent edges, visiting
// terms in leaves-first order so that every predecessor's S-value is
// final before it contributes to its own parents.
func wangSValues(dag *ontology.Dag, t int32) map[int32]float64 {
	s := map[int32]float64{t: 1}
	for _, v := range dag.LeavesFirst() {
		sv, ok := s[v]
		if !ok {
			continue
		}
		for parent, rel := range dag.Parents(v) {
			w, ok := relationWeight(rel)
			if !ok {
				continue
			}
			cand := w * sv
			if cur, exists := s[parent]; !exists || cand > cur {
				s[parent] = cand
			}
		}
	}
	return s
}

func relationWeight(r ontology.Relation) (float64, bool) {
	switch r {
	case ontology.IsA:
		return wangIsAWeight, true
	case ontology.PartOf:
		return wangPartOfWeight, true
	default:
		return 0, false
	}
}

// Similarity dispatches to the requested method. For Resnik, Lin and
// Jiang-Conrath, ic must be non-nil; it is ignored for Wang.
func Similarity(method Method, dag *ontology.Dag, ic *IC, a, b int32) float64 {
	switch method {
	case Resnik:
		return ic.Resnik(a, b)
	case Lin:
		return ic.Lin(a, b)
	case JiangConrath:
		return ic.JiangConrath(a, b)
	case Wang:
		return WangSimilarity(dag, a, b)
	default:
		return math.NaN()
	}
}
