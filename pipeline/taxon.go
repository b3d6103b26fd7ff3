package pipeline

import (
	"sort"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/enrich"
	"github.com/taxago/goea/ontology"
	"github.com/taxago/goea/propagate"
)

// TermResult is one scored, filtered GO term for a single taxon.
type TermResult struct {
	ID        ontology.ID
	Name      string
	Namespace ontology.Namespace
	enrich.Result
	AdjPValue float64
}

// runTaxon scores every GO term annotated (directly or, depending on
// cfg.PropagateCounts, transitively) to taxon's study population,
// applies the configured propagation strategy, multiple-testing
// correction and output filters, and returns the surviving terms sorted
// by (adjusted p ascending, term ID ascending).
func runTaxon(dag *ontology.Dag, tb *annotation.TaxonBackground, ts *annotation.TaxonStudy, cfg Config) ([]TermResult, error) {
	studyTerms := copyProteinMap(ts.TermProteins)
	bgTerms := copyProteinMap(tb.TermProteins)

	if cfg.PropagateCounts != propagate.NoPropagation {
		propagate.ClassicPropagate(dag, bgTerms)
		propagate.ClassicPropagate(dag, studyTerms)
	}

	studyTotal := len(ts.Proteins)
	bgTotal := tb.ProteinCount()
	bgCounts := countsOf(bgTerms)

	var raw map[ontology.ID]enrich.Result
	switch cfg.PropagateCounts {
	case propagate.Elim:
		raw = propagate.ElimPropagate(dag, studyTerms, studyTotal, bgTerms, bgTotal, cfg.Alpha, cfg.Test)
	case propagate.Weight:
		raw = propagate.WeightPropagate(dag, studyTerms, studyTotal, bgCounts, bgTotal, cfg.Test)
	default:
		raw = scoreDirect(studyTerms, studyTotal, bgCounts, bgTotal, cfg.Test)
	}

	terms := assemble(dag, raw)
	applyCorrectionPerNamespace(terms, cfg.CorrectionMethod)
	terms = filterResults(terms, cfg.MinScore, cfg.MinProt, cfg.Alpha, bgCounts)
	sortTermResults(terms)
	return terms, nil
}

// scoreDirect tests every study term's contingency table without any
// significance-dependent adjustment, for NoPropagation and Classic (the
// latter having already folded descendant counts into studyTerms and
// bgCounts before this runs).
func scoreDirect(studyTerms map[ontology.ID][]int32, studyTotal int, bgCounts map[ontology.ID]int, bgTotal int, method enrich.Method) map[ontology.ID]enrich.Result {
	results := make(map[ontology.ID]enrich.Result, len(studyTerms))
	for id, proteins := range studyTerms {
		table := enrich.NewTable(len(proteins), bgCounts[id], studyTotal, bgTotal)
		results[id] = enrich.Test(table, method)
	}
	return results
}

func assemble(dag *ontology.Dag, raw map[ontology.ID]enrich.Result) []TermResult {
	terms := make([]TermResult, 0, len(raw))
	for id, res := range raw {
		t, ok := dag.TermByID(id)
		if !ok || t.IsObsolete {
			continue
		}
		terms = append(terms, TermResult{
			ID:        id,
			Name:      t.Name,
			Namespace: t.Namespace,
			Result:    res,
		})
	}
	return terms
}

// applyCorrectionPerNamespace adjusts p-values within each namespace
// independently, since the correction pool per spec is "the set of
// tested terms within that namespace".
func applyCorrectionPerNamespace(terms []TermResult, method enrich.Correction) {
	byNS := make(map[ontology.Namespace][]int)
	for i, t := range terms {
		byNS[t.Namespace] = append(byNS[t.Namespace], i)
	}
	for _, idxs := range byNS {
		p := make([]float64, len(idxs))
		for i, idx := range idxs {
			p[i] = terms[idx].PValue
		}
		adj := enrich.Adjust(p, len(idxs), method)
		for i, idx := range idxs {
			terms[idx].AdjPValue = adj[i]
		}
	}
}

// filterResults drops terms failing any of the output filters: log-odds
// below minScore, background count below minProt, or adjusted p above
// alpha.
func filterResults(terms []TermResult, minScore float64, minProt int, alpha float64, bgCounts map[ontology.ID]int) []TermResult {
	out := terms[:0]
	for _, t := range terms {
		if t.LogOddsRatio < minScore {
			continue
		}
		if bgCounts[t.ID] < minProt {
			continue
		}
		if t.AdjPValue > alpha {
			continue
		}
		out = append(out, t)
	}
	return out
}

func sortTermResults(terms []TermResult) {
	sort.Slice(terms, func(i, j int) bool {
		if terms[i].AdjPValue != terms[j].AdjPValue {
			return terms[i].AdjPValue < terms[j].AdjPValue
		}
		return terms[i].ID < terms[j].ID
	})
}

func copyProteinMap(m map[ontology.ID][]int32) map[ontology.ID][]int32 {
	out := make(map[ontology.ID][]int32, len(m))
	for id, v := range m {
		out[id] = append([]int32(nil), v...)
	}
	return out
}

func countsOf(m map[ontology.ID][]int32) map[ontology.ID]int {
	out := make(map[ontology.ID]int, len(m))
	for id, v := range m {
		out[id] = len(v)
	}
	return out
}
