package propagate

import (
	"math"
	"sort"

	"github.com/taxago/goea/enrich"
	"github.com/taxago/goea/ontology"
)

// WeightPropagate scores every GO term present in studyTerms for enrichment using
// the weighted algorithm: every study protein starts with weight 1 in
// every term it is annotated to (directly or via propagation), then,
// walking the DAG leaves-first, each internal term reweights its direct
// children's protein contributions against its own according to their
// relative enrichment. A child more enriched than its parent has its
// proteins' weight inflated in the child and correspondingly deflated in
// the parent; a child no more enriched than its parent has its own
// proteins' weight deflated, leaving the parent untouched. studyTerms and
// bgCounts are assumed to already hold Classic-propagated counts.
func WeightPropagate(dag *ontology.Dag, studyTerms map[ontology.ID][]int32, studyTotal int, bgCounts map[ontology.ID]int, bgTotal int, method enrich.Method) map[ontology.ID]enrich.Result {
	w := &weighter{
		dag:        dag,
		studyTerms: studyTerms,
		studyTotal: studyTotal,
		bgCounts:   bgCounts,
		bgTotal:    bgTotal,
		method:     method,
		weights:    make(map[ontology.ID]map[int32]float64, len(studyTerms)),
		results:    make(map[ontology.ID]enrich.Result, len(studyTerms)),
	}
	for id, proteins := range studyTerms {
		tw := make(map[int32]float64, len(proteins))
		for _, p := range proteins {
			tw[p] = 1.0
		}
		w.weights[id] = tw
	}

	for _, idx := range w.leavesFirstStudyOrder() {
		id := dag.Term(idx).ID
		children := w.directChildren(idx)
		if len(children) == 0 {
			w.results[id] = w.score(id)
			continue
		}

		sT := math.Max(0, w.score(id).LogOddsRatio)
		for _, c := range children {
			sC := math.Max(0, w.score(c).LogOddsRatio)
			switch {
			case sT == 0 && sC == 0:
				// No enrichment signal either side; nothing to reweight.
			case sC > sT:
				factor := 1.0
				if sT > 0 {
					factor = sC / sT
				}
				w.scale(c, c, factor)
				w.scale(id, c, 1/factor)
			default:
				factor := 0.0
				if sC > 0 {
					factor = sC / sT
				}
				w.scale(c, c, factor)
			}
		}
		w.results[id] = w.score(id)
	}

	return w.results
}

type weighter struct {
	dag        *ontology.Dag
	studyTerms map[ontology.ID][]int32
	studyTotal int
	bgCounts   map[ontology.ID]int
	bgTotal    int
	method     enrich.Method
	weights    map[ontology.ID]map[int32]float64
	results    map[ontology.ID]enrich.Result
}

// leavesFirstStudyOrder returns the dense indices of every study term,
// ordered so that children precede parents, matching the order the
// Classic and Elim propagators already process terms in.
func (w *weighter) leavesFirstStudyOrder() []int32 {
	inStudy := make(map[int32]bool, len(w.studyTerms))
	for id := range w.studyTerms {
		if t, ok := w.dag.TermByID(id); ok {
			inStudy[t.Index()] = true
		}
	}
	order := make([]int32, 0, len(inStudy))
	for _, idx := range w.dag.LeavesFirst() {
		if inStudy[idx] {
			order = append(order, idx)
		}
	}
	return order
}

// directChildren returns the GO IDs of idx's direct is_a/part_of children
// that are themselves study terms, sorted ascending for deterministic
// processing order.
func (w *weighter) directChildren(idx int32) []ontology.ID {
	out := make([]ontology.ID, 0)
	for c, rel := range w.dag.Children(idx) {
		if !rel.Propagates() {
			continue
		}
		id := w.dag.Term(c).ID
		if _, ok := w.studyTerms[id]; ok {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// scale multiplies by factor the weight, in vecID's weight vector, of
// every protein that term sharedWithID is itself annotated to. Calling it
// with vecID == sharedWithID scales every one of that term's own
// proteins; calling it with a parent's vecID and a child's sharedWithID
// scales only the shared proteins the parent inherited from that child.
func (w *weighter) scale(vecID, sharedWithID ontology.ID, factor float64) {
	vec, ok := w.weights[vecID]
	if !ok {
		return
	}
	for _, p := range w.studyTerms[sharedWithID] {
		if wt, ok := vec[p]; ok {
			vec[p] = wt * factor
		}
	}
}

// score computes the weighted enrichment score for id using its current
// per-protein weights, rounding the weighted study count to the nearest
// non-negative integer before building the contingency table.
func (w *weighter) score(id ontology.ID) enrich.Result {
	proteins := w.studyTerms[id]
	weights := w.weights[id]
	sum := 0.0
	for _, p := range proteins {
		wt, ok := weights[p]
		if !ok {
			wt = 1.0
		}
		sum += wt
	}
	studySig := int(math.Round(sum))
	if studySig < 0 {
		studySig = 0
	}
	bgCount := w.bgCounts[id]
	table := enrich.NewTable(studySig, bgCount, w.studyTotal, w.bgTotal)
	return enrich.Test(table, w.method)
}
