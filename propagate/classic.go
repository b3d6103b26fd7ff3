// Package propagate implements the three GO term count-propagation
// strategies: Classic (union of descendant annotations up the DAG),
// Elim (pruning a significant term's proteins from its ancestors before
// they are tested) and Weight (reweighting a child's contribution to its
// parent by their relative enrichment).
package propagate

import (
	"sort"

	"github.com/taxago/goea/ontology"
)

// Method selects a count-propagation strategy.
type Method int

const (
	NoPropagation Method = iota
	Classic
	Elim
	Weight
)

func (m Method) String() string {
	switch m {
	case NoPropagation:
		return "none"
	case Classic:
		return "classic"
	case Elim:
		return "elim"
	case Weight:
		return "weight"
	default:
		return "unknown"
	}
}

// ClassicPropagate unions each term's own annotated proteins into every
// one of its is_a/part_of ancestors' protein sets, processing terms in
// leaves-first order. It mutates terms in place.
func ClassicPropagate(dag *ontology.Dag, terms map[ontology.ID][]int32) {
	own := make(map[int32][]int32, len(terms))
	for id, proteins := range terms {
		t, ok := dag.TermByID(id)
		if !ok || len(proteins) == 0 {
			continue
		}
		own[t.Index()] = proteins
	}
	for _, idx := range dag.LeavesFirst() {
		proteins, ok := own[idx]
		if !ok {
			continue
		}
		for _, anc := range dag.PropagatingAncestors(idx) {
			ancID := dag.Term(anc).ID
			terms[ancID] = unionSorted(terms[ancID], proteins)
		}
	}
}

// unionSorted returns the sorted union of two sorted, duplicate-free int32
// slices.
func unionSorted(a, b []int32) []int32 {
	if len(a) == 0 {
		return append([]int32(nil), b...)
	}
	if len(b) == 0 {
		return a
	}
	out := make([]int32, 0, len(a)+len(b))
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case b[j] < a[i]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// sortedSet returns a sorted, duplicate-free copy of s.
func sortedSet(s []int32) []int32 {
	out := append([]int32(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	uniq := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			uniq = append(uniq, v)
		}
	}
	return uniq
}
