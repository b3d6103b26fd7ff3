package pipeline

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/meta"
	"github.com/taxago/goea/ontology"
	"github.com/taxago/goea/propagate"
)

// Run executes a complete enrichment analysis per cfg: it reads the
// ontology, background and study populations (fatal on failure), fans
// per-taxon scoring out across a worker pool sized by cfg.Cores
// (isolating any single taxon's failure as a warning), pools results
// across taxonomic groups when cfg.GroupResults is set, and writes every
// output file under cfg.OutDir.
func Run(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	oboFile, err := os.Open(cfg.OBOPath)
	if err != nil {
		return fmt.Errorf("%w: pipeline: opening ontology: %w", goerr.ErrInputMissing, err)
	}
	raw, err := ontology.ParseOBO(oboFile, os.Stderr)
	oboFile.Close()
	if err != nil {
		return fmt.Errorf("pipeline: parsing ontology: %w", err)
	}
	dag, err := ontology.Build(raw)
	if err != nil {
		return fmt.Errorf("pipeline: building ontology: %w", err)
	}

	// The taxon set is not known ahead of time: a first pass over the
	// study input (with no background to link against) discovers it, then
	// the background is read for exactly those taxa before the study is
	// parsed again, now with annotations to attach.
	discovery, err := annotation.ReadStudy(cfg.StudyPath, &annotation.Background{Taxa: map[annotation.TaxonID]*annotation.TaxonBackground{}})
	if err != nil {
		return fmt.Errorf("pipeline: reading study population: %w", err)
	}
	taxonIDs := make([]annotation.TaxonID, 0, len(discovery.Taxa))
	for t := range discovery.Taxa {
		taxonIDs = append(taxonIDs, t)
	}

	bg, err := annotation.ReadBackground(cfg.BackgroundPath, taxonIDs, cfg.Evidence, cfg.Cores)
	if err != nil {
		return fmt.Errorf("pipeline: reading background population: %w", err)
	}
	study, err := annotation.ReadStudy(cfg.StudyPath, bg)
	if err != nil {
		return fmt.Errorf("pipeline: reading study population: %w", err)
	}
	// Pruning the background to the study's direct term set is only valid
	// when nothing propagates counts afterward: under Classic/Elim/Weight
	// an ancestor with no direct study annotation of its own can still
	// become a tested term once a descendant's study proteins propagate
	// into it, and it may carry direct, background-only annotations that
	// propagation needs. Skip the prune for those methods so runTaxon's
	// own ClassicPropagate sees the full background.
	if cfg.PropagateCounts == propagate.NoPropagation {
		bg.FilterByStudyPopulation(study)
	}

	perTaxon, warnings := runAllTaxa(dag, bg, study, cfg)
	for _, w := range warnings {
		log.Print(w)
	}

	// Partial output from an aborted prior run must not survive into
	// this one: the output directory is overwritten wholesale rather
	// than merged into.
	if err := os.RemoveAll(cfg.OutDir); err != nil {
		return fmt.Errorf("pipeline: clearing %s: %w", cfg.OutDir, err)
	}

	var lineage *meta.Lineage
	if cfg.LineagePath != "" {
		lineage, err = readLineageFile(cfg.LineagePath)
		if err != nil {
			return fmt.Errorf("pipeline: reading lineage: %w", err)
		}
	}

	if err := writeTaxonResults(cfg.OutDir, perTaxon, lineage); err != nil {
		return err
	}

	if cfg.GroupResults == "" {
		return nil
	}
	if lineage == nil {
		return fmt.Errorf("%w: pipeline: group_results requires a lineage file", goerr.ErrConfigError)
	}
	vcv, err := readVCVFile(cfg.VCVPath)
	if err != nil {
		return fmt.Errorf("pipeline: reading VCV matrix: %w", err)
	}

	groupResults, groupWarnings := runMetaAnalysis(cfg, perTaxon, lineage, vcv)
	for _, w := range groupWarnings {
		log.Print(w)
	}
	return writeGroupResults(cfg.OutDir, groupResults)
}

// runAllTaxa scores every taxon present in both bg and study concurrently,
// bounded by cfg.Cores workers, isolating a single taxon's failure per
// the error-propagation model: the taxon is dropped with a warning and
// every other taxon continues.
func runAllTaxa(dag *ontology.Dag, bg *annotation.Background, study *annotation.Study, cfg Config) (map[annotation.TaxonID][]TermResult, []string) {
	cores := cfg.Cores
	if cores < 1 {
		cores = 1
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, cores)
		results  = make(map[annotation.TaxonID][]TermResult)
		warnings []string
	)
	for taxon, ts := range study.Taxa {
		tb, ok := bg.Taxa[taxon]
		if !ok {
			mu.Lock()
			warnings = append(warnings, fmt.Sprintf("pipeline: taxon %d has no background population, skipped", taxon))
			mu.Unlock()
			continue
		}
		taxon, ts, tb := taxon, ts, tb
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			terms, err := runTaxon(dag, tb, ts, cfg)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("pipeline: taxon %d: %v", taxon, err))
				return
			}
			results[taxon] = terms
		}()
	}
	wg.Wait()
	return results, warnings
}

func readLineageFile(path string) (*meta.Lineage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", goerr.ErrInputMissing, err)
	}
	defer f.Close()
	return meta.ReadLineage(f)
}

func readVCVFile(path string) (*meta.VCV, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", goerr.ErrInputMissing, err)
	}
	defer f.Close()
	return meta.ReadVCV(f)
}
