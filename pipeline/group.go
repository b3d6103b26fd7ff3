package pipeline

import (
	"fmt"
	"sort"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/enrich"
	"github.com/taxago/goea/meta"
	"github.com/taxago/goea/ontology"
)

// MetaResult is one term's pooled effect within a taxonomic group.
type MetaResult struct {
	Term      ontology.ID
	Name      string
	Namespace ontology.Namespace
	meta.PooledResult
	AdjPValue         float64
	GroupSize         int
	SpeciesPercentage float64
}

// runMetaAnalysis groups taxa by the configured taxonomic rank and pools,
// within each group with at least two taxa, every term that meets the
// lineage_percentage eligibility threshold. It never fails the overall
// run: a group or term that cannot be pooled is reported as a warning
// and skipped.
func runMetaAnalysis(cfg Config, perTaxon map[annotation.TaxonID][]TermResult, lineage *meta.Lineage, vcv *meta.VCV) (map[string][]MetaResult, []string) {
	rank, ok := meta.ParseRank(cfg.GroupResults)
	if !ok {
		return nil, []string{fmt.Sprintf("meta: %q is not a recognized taxonomic rank, skipping meta-analysis", cfg.GroupResults)}
	}

	taxa := make([]annotation.TaxonID, 0, len(perTaxon))
	for t := range perTaxon {
		taxa = append(taxa, t)
	}
	sort.Slice(taxa, func(i, j int) bool { return taxa[i] < taxa[j] })

	groups := lineage.GroupBy(taxa, rank)
	groupNames := make([]string, 0, len(groups))
	for name := range groups {
		groupNames = append(groupNames, name)
	}
	sort.Strings(groupNames)

	results := make(map[string][]MetaResult)
	var warnings []string
	for _, name := range groupNames {
		members := groups[name]
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })
		if len(members) < 2 {
			warnings = append(warnings, fmt.Sprintf("meta: group %q has fewer than 2 taxa, skipped", name))
			continue
		}

		pooled, groupWarnings := poolGroup(cfg, name, members, perTaxon, vcv)
		warnings = append(warnings, groupWarnings...)
		if len(pooled) > 0 {
			results[name] = pooled
		}
	}
	return results, warnings
}

func poolGroup(cfg Config, groupName string, members []annotation.TaxonID, perTaxon map[annotation.TaxonID][]TermResult, vcv *meta.VCV) ([]MetaResult, []string) {
	byTaxon := make(map[annotation.TaxonID]map[ontology.ID]TermResult, len(members))
	for _, taxon := range members {
		idx := make(map[ontology.ID]TermResult, len(perTaxon[taxon]))
		for _, tr := range perTaxon[taxon] {
			idx[tr.ID] = tr
		}
		byTaxon[taxon] = idx
	}

	contributing := make(map[ontology.ID][]annotation.TaxonID)
	for _, taxon := range members {
		for id := range byTaxon[taxon] {
			contributing[id] = append(contributing[id], taxon)
		}
	}

	var pooled []MetaResult
	var warnings []string
	groupSize := len(members)
	for termID, taxa := range contributing {
		if !meta.Eligible(len(taxa), groupSize, cfg.LineagePercentage) {
			continue
		}
		if !vcvHasAll(vcv, taxa) {
			warnings = append(warnings, fmt.Sprintf("meta: group %q term %s: VCV matrix missing one or more contributing taxa, skipped", groupName, termID))
			continue
		}

		y := make([]float64, len(taxa))
		v := make([]float64, len(taxa))
		var info TermResult
		for i, taxon := range taxa {
			tr := byTaxon[taxon][termID]
			y[i] = tr.LogOddsRatio
			v[i] = tr.Variance
			info = tr
		}

		seed := permutationSeed(cfg, groupName, string(termID))
		mcfg := meta.Config{Permutations: cfg.Permutations, PMIterations: cfg.PMIterations, PMTolerance: cfg.PMTolerance}
		pr, err := meta.Pool(y, v, taxa, vcv, mcfg, seed)
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("meta: group %q term %s: %v", groupName, termID, err))
			continue
		}

		pooled = append(pooled, MetaResult{
			Term:              termID,
			Name:              info.Name,
			Namespace:         info.Namespace,
			PooledResult:      pr,
			GroupSize:         groupSize,
			SpeciesPercentage: float64(len(taxa)) / float64(groupSize),
		})
	}

	applyMetaCorrectionPerNamespace(pooled, cfg.CorrectionMethod)
	pooled = filterMetaResults(pooled, cfg.Alpha)
	sortMetaResults(pooled)
	return pooled, warnings
}

func vcvHasAll(vcv *meta.VCV, taxa []annotation.TaxonID) bool {
	for _, t := range taxa {
		if !vcv.Has(t) {
			return false
		}
	}
	return true
}

// permutationSeed returns cfg.Seed if set, otherwise a seed derived
// deterministically from the group and term so permutation p-values are
// reproducible independent of worker scheduling.
func permutationSeed(cfg Config, group, term string) int64 {
	if cfg.Seed != nil {
		return *cfg.Seed
	}
	return meta.DeriveSeed(group, term)
}

func applyMetaCorrectionPerNamespace(results []MetaResult, method enrich.Correction) {
	byNS := make(map[ontology.Namespace][]int)
	for i, r := range results {
		byNS[r.Namespace] = append(byNS[r.Namespace], i)
	}
	for _, idxs := range byNS {
		p := make([]float64, len(idxs))
		for i, idx := range idxs {
			p[i] = results[idx].PermPValue
		}
		adj := enrich.Adjust(p, len(idxs), method)
		for i, idx := range idxs {
			results[idx].AdjPValue = adj[i]
		}
	}
}

func filterMetaResults(results []MetaResult, alpha float64) []MetaResult {
	out := results[:0]
	for _, r := range results {
		if r.AdjPValue > alpha {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortMetaResults(results []MetaResult) {
	sort.Slice(results, func(i, j int) bool {
		if results[i].AdjPValue != results[j].AdjPValue {
			return results[i].AdjPValue < results[j].AdjPValue
		}
		return results[i].Term < results[j].Term
	})
}
