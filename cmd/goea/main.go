// goea runs a Gene Ontology Enrichment Analysis across one or more taxa
// and, optionally, pools the per-taxon results within taxonomic groups
// by phylogenetic meta-analysis.
//
// The ontology is required to be in OBO format. The background and
// study population formats are described by ReadBackground and ReadStudy
// in github.com/taxago/goea/annotation.
//
// Results are written as tab-delimited tables under the output
// directory: one file per taxon in single_taxon_results, and, when
// -group-results is set, one file per taxonomic group in
// combined_taxonomy_results.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/enrich"
	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/pipeline"
	"github.com/taxago/goea/propagate"
)

func main() {
	def := pipeline.DefaultConfig()

	var (
		obo        = flag.String("obo", "", "path to the Gene Ontology file (.obo - required)")
		study      = flag.String("study", "", "path to the study population (.csv, .fa/.fasta, or directory of FASTA files - required)")
		background = flag.String("background", "", "path to the background annotation directory (required)")
		outDir     = flag.String("dir", "results", "output directory, overwritten wholesale on each run")
		evidence   = flag.String("evidence", "all", `evidence categories to include, comma-separated ("all" or any of experimental, phylogenetic, computational, author, curator, electronic/automatic)`)
		propMethod = flag.String("propagate-counts", def.PropagateCounts.String(), "count propagation strategy: none, classic, elim or weight")
		test       = flag.String("test", def.Test.String(), "significance test: fishers or hypergeometric")
		minProt    = flag.Int("min-prot", def.MinProt, "minimum number of background proteins annotated to a term for it to be reported")
		minScore   = flag.Float64("min-score", def.MinScore, "minimum log odds ratio for a term to be reported")
		alpha      = flag.Float64("alpha", def.Alpha, "significance threshold applied to the adjusted p-value")
		correction = flag.String("correction-method", def.CorrectionMethod.String(), "multiple-testing correction: none, bonferroni, benjamini-hochberg or benjamini-yekutieli")

		groupResults      = flag.String("group-results", "", `taxonomic rank at which to pool results by phylogenetic meta-analysis (genus, family, order, class, phylum, kingdom, superkingdom); disabled when empty`)
		lineage           = flag.String("lineage", "", "path to the taxon lineage table, required when -group-results is set")
		lineagePercentage = flag.Float64("lineage-percentage", def.LineagePercentage, "minimum fraction of a group's taxa that must carry a term for it to be pooled")
		vcvMatrix         = flag.String("vcv-matrix", "", "path to the phylogenetic variance-covariance matrix, required when -group-results is set")
		permutations      = flag.Int("permutations", def.Permutations, "number of label permutations used to compute the pooled p-value")
		pmIterations      = flag.Int("pm-iterations", def.PMIterations, "maximum bisection iterations for the Paule-Mandel between-study variance estimate")
		pmTolerance       = flag.Float64("pm-tolerance", def.PMTolerance, "convergence tolerance for the Paule-Mandel between-study variance estimate")

		cores = flag.Int("cores", runtime.NumCPU(), "number of taxa to score concurrently")
		seed  = flag.Int64("seed", 0, "fix the permutation RNG seed instead of deriving it per group and term")
		help  = flag.Bool("help", false, "print help text")
	)
	flag.Parse()

	if *help {
		flag.Usage()
		os.Exit(0)
	}
	if *obo == "" || *study == "" || *background == "" {
		fmt.Fprintf(os.Stderr, "%s: -obo, -study and -background are required\n\n", filepath.Base(os.Args[0]))
		flag.Usage()
		os.Exit(2)
	}

	categories, err := annotation.ParseCategories(*evidence)
	if err != nil {
		log.Fatalf("invalid -evidence: %v", err)
	}
	propagateMethod, err := parsePropagation(*propMethod)
	if err != nil {
		log.Fatalf("invalid -propagate-counts: %v", err)
	}
	testMethod, err := parseTest(*test)
	if err != nil {
		log.Fatalf("invalid -test: %v", err)
	}
	correctionMethod, err := parseCorrection(*correction)
	if err != nil {
		log.Fatalf("invalid -correction-method: %v", err)
	}

	cfg := def
	cfg.OBOPath = *obo
	cfg.StudyPath = *study
	cfg.BackgroundPath = *background
	cfg.OutDir = *outDir
	cfg.Evidence = categories
	cfg.PropagateCounts = propagateMethod
	cfg.Test = testMethod
	cfg.MinProt = *minProt
	cfg.MinScore = *minScore
	cfg.Alpha = *alpha
	cfg.CorrectionMethod = correctionMethod
	cfg.GroupResults = *groupResults
	cfg.LineagePath = *lineage
	cfg.LineagePercentage = *lineagePercentage
	cfg.VCVPath = *vcvMatrix
	cfg.Permutations = *permutations
	cfg.PMIterations = *pmIterations
	cfg.PMTolerance = *pmTolerance
	cfg.Cores = *cores
	if *seed != 0 {
		cfg.Seed = seed
	}

	if err := pipeline.Run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

func parsePropagation(s string) (propagate.Method, error) {
	switch s {
	case "none", "":
		return propagate.NoPropagation, nil
	case "classic":
		return propagate.Classic, nil
	case "elim":
		return propagate.Elim, nil
	case "weight":
		return propagate.Weight, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized propagation strategy %q", goerr.ErrConfigError, s)
	}
}

func parseTest(s string) (enrich.Method, error) {
	switch s {
	case "fishers", "":
		return enrich.Fishers, nil
	case "hypergeometric":
		return enrich.Hypergeometric, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized test %q", goerr.ErrConfigError, s)
	}
}

func parseCorrection(s string) (enrich.Correction, error) {
	switch s {
	case "none":
		return enrich.None, nil
	case "bonferroni", "":
		return enrich.Bonferroni, nil
	case "benjamini-hochberg":
		return enrich.BenjaminiHochberg, nil
	case "benjamini-yekutieli":
		return enrich.BenjaminiYekutieli, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized correction method %q", goerr.ErrConfigError, s)
	}
}
