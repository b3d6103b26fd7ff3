package propagate

import (
	"sort"

	"github.com/taxago/goea/enrich"
	"github.com/taxago/goea/ontology"
)

// ElimPropagate scores every GO term present in studyTerms for enrichment,
// processing terms from the deepest level of the DAG up to (but not
// including) the namespace root. Once a term is significant at the
// chosen alpha, both its unmarked study proteins and its unmarked
// background proteins are removed from consideration before any of its
// ancestors are scored, so that an ancestor is only credited with the
// proteins that do not already explain their enrichment through a more
// specific, already-significant descendant. studyTerms and bgTerms are
// assumed to already hold Classic-propagated protein sets; Elim only
// changes which proteins count toward a term's study and background
// totals, not the term sets themselves.
func ElimPropagate(dag *ontology.Dag, studyTerms map[ontology.ID][]int32, studyTotal int, bgTerms map[ontology.ID][]int32, bgTotal int, alpha float64, method enrich.Method) map[ontology.ID]enrich.Result {
	results := make(map[ontology.ID]enrich.Result, len(studyTerms))
	markedStudy := make(map[int32]bool)
	markedBG := make(map[int32]bool)

	levels := make(map[int32][]int32)
	var maxDepth int32
	for id := range studyTerms {
		term, ok := dag.TermByID(id)
		if !ok {
			continue
		}
		d := dag.Depth(term.Index())
		levels[d] = append(levels[d], term.Index())
		if d > maxDepth {
			maxDepth = d
		}
	}
	for d := range levels {
		sort.Slice(levels[d], func(i, j int) bool { return levels[d][i] < levels[d][j] })
	}

	for depth := maxDepth; depth >= 1; depth-- {
		for _, idx := range levels[depth] {
			id := dag.Term(idx).ID
			studyProteins := studyTerms[id]
			bgProteins, ok := bgTerms[id]
			if !ok {
				continue
			}
			unmarkedStudy := unmarkedOf(studyProteins, markedStudy)
			unmarkedBG := unmarkedOf(bgProteins, markedBG)

			table := enrich.NewTable(len(unmarkedStudy), len(unmarkedBG), studyTotal, bgTotal)
			res := enrich.Test(table, method)
			if res.PValue <= alpha {
				for _, p := range unmarkedStudy {
					markedStudy[p] = true
				}
				for _, p := range unmarkedBG {
					markedBG[p] = true
				}
			}
			results[id] = res
		}
	}
	return results
}

func unmarkedOf(proteins []int32, marked map[int32]bool) []int32 {
	if len(marked) == 0 {
		return proteins
	}
	out := make([]int32, 0, len(proteins))
	for _, p := range proteins {
		if !marked[p] {
			out = append(out, p)
		}
	}
	return out
}
