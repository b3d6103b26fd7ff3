package pipeline

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/meta"
)

const perTaxonHeader = "GO Term ID\tName\tNamespace\tlog(Odds Ratio)\tStatistical significance\t" +
	"study_with\tstudy_without\tbg_with\tbg_without\n"

const combinedHeader = "GO Term ID\tName\tNamespace\tlog(Odds Ratio)\tStatistical significance\t" +
	"Heterogeneity (tau^2)\tSpecies percentage\n"

// writeTaxonResults writes one "{species_name}_GOEA_results.txt" file per
// taxon present in perTaxon, in the single_taxon_results subdirectory of
// outDir.
func writeTaxonResults(outDir string, perTaxon map[annotation.TaxonID][]TermResult, lineage *meta.Lineage) error {
	dir := filepath.Join(outDir, "single_taxon_results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pipeline: creating %s: %w", dir, err)
	}

	taxa := sortedTaxa(perTaxon)
	for _, taxon := range taxa {
		name := speciesFileName(taxon, lineage)
		path := filepath.Join(dir, fmt.Sprintf("%s_GOEA_results.txt", name))
		if err := writeTSV(path, perTaxonHeader, perTaxon[taxon], writeTermRow); err != nil {
			return err
		}
	}
	return nil
}

// writeGroupResults writes one "{group_name}_GOEA_results.txt" file per
// taxonomic group present in results, in the combined_taxonomy_results
// subdirectory of outDir.
func writeGroupResults(outDir string, results map[string][]MetaResult) error {
	dir := filepath.Join(outDir, "combined_taxonomy_results")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("pipeline: creating %s: %w", dir, err)
	}
	for group, terms := range results {
		path := filepath.Join(dir, fmt.Sprintf("%s_GOEA_results.txt", sanitizeFileName(group)))
		if err := writeTSV(path, combinedHeader, terms, writeMetaRow); err != nil {
			return err
		}
	}
	return nil
}

func writeTSV[T any](path, header string, rows []T, writeRow func(*bufio.Writer, T)) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pipeline: creating %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriterSize(f, 32*1024)
	if _, err := w.WriteString(header); err != nil {
		return err
	}
	for _, row := range rows {
		writeRow(w, row)
	}
	return w.Flush()
}

func writeTermRow(w *bufio.Writer, t TermResult) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.5e\t%d\t%d\t%d\t%d\n",
		t.ID, t.Name, t.Namespace, t.LogOddsRatio, t.AdjPValue,
		t.Table.A, t.Table.B, t.Table.C, t.Table.D)
}

func writeMetaRow(w *bufio.Writer, m MetaResult) {
	fmt.Fprintf(w, "%s\t%s\t%s\t%.3f\t%.5e\t%.3f\t%.3f\n",
		m.Term, m.Name, m.Namespace, m.Beta, m.AdjPValue, m.Tau2, m.SpeciesPercentage)
}

func sortedTaxa(perTaxon map[annotation.TaxonID][]TermResult) []annotation.TaxonID {
	taxa := make([]annotation.TaxonID, 0, len(perTaxon))
	for t := range perTaxon {
		taxa = append(taxa, t)
	}
	sort.Slice(taxa, func(i, j int) bool { return taxa[i] < taxa[j] })
	return taxa
}

func speciesFileName(taxon annotation.TaxonID, lineage *meta.Lineage) string {
	if lineage == nil {
		return fmt.Sprintf("%d", taxon)
	}
	return sanitizeFileName(lineage.SpeciesName(taxon))
}

func sanitizeFileName(s string) string {
	return strings.ReplaceAll(s, " ", "_")
}
