package propagate

import "github.com/taxago/goea/ontology"

// RawCounts propagates a raw per-term annotation count (not a protein
// set) up the is_a/part_of hierarchy: each term's own count is added to
// every one of its ancestors. It is the lighter-weight propagation used
// to estimate background term frequencies for information content, where
// only aggregate frequency matters and tracking protein identity would
// cost memory for no benefit. counts is mutated in place.
func RawCounts(dag *ontology.Dag, counts map[ontology.ID]int) {
	own := make(map[int32]int, len(counts))
	for id, n := range counts {
		if n == 0 {
			continue
		}
		t, ok := dag.TermByID(id)
		if !ok {
			continue
		}
		own[t.Index()] = n
	}
	for _, idx := range dag.LeavesFirst() {
		n, ok := own[idx]
		if !ok {
			continue
		}
		for _, anc := range dag.PropagatingAncestors(idx) {
			ancID := dag.Term(anc).ID
			counts[ancID] += n
		}
	}
}
