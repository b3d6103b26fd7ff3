// semsim computes pairwise semantic similarity between Gene Ontology
// terms using one of the Resnik, Lin, Jiang-Conrath or Wang measures.
//
// Information content for Resnik, Lin and Jiang-Conrath is estimated
// from a single taxon's background annotation frequencies; Wang needs
// no background and depends only on the ontology graph.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/ontology"
	"github.com/taxago/goea/semsim"
)

func main() {
	var (
		obo        = flag.String("obo", "", "path to the Gene Ontology file (.obo - required)")
		background = flag.String("background", "", "path to the background annotation directory (required unless -method=wang)")
		taxon      = flag.Uint64("taxon", 0, "taxon ID whose background annotation frequencies estimate information content")
		evidence   = flag.String("evidence", "all", "evidence categories to include, comma-separated")
		method     = flag.String("method", "resnik", "similarity measure: resnik, lin, jiang_conrath or wang")
		pairs      = flag.String("pairs", "", `comma-separated GO term ID pairs, "GO:A-GO:B,GO:C-GO:D" (required)`)
	)
	flag.Parse()

	if *obo == "" || *pairs == "" {
		flag.Usage()
		os.Exit(2)
	}
	m, err := parseMethod(*method)
	if err != nil {
		log.Fatalf("invalid -method: %v", err)
	}

	log.Println("[loading ontology]")
	dag, err := loadOntology(*obo)
	if err != nil {
		log.Fatalf("failed to load ontology: %v", err)
	}

	var ic *semsim.IC
	if m != semsim.Wang {
		if *background == "" || *taxon == 0 {
			log.Fatal("-background and -taxon are required for resnik, lin and jiang_conrath")
		}
		log.Println("[loading background annotation]")
		categories, err := annotation.ParseCategories(*evidence)
		if err != nil {
			log.Fatalf("invalid -evidence: %v", err)
		}
		bg, err := annotation.ReadBackground(*background, []annotation.TaxonID{annotation.TaxonID(*taxon)}, categories, 1)
		if err != nil {
			log.Fatalf("failed to load background: %v", err)
		}
		tb, ok := bg.Taxa[annotation.TaxonID(*taxon)]
		if !ok {
			log.Fatalf("no background annotation found for taxon %d", *taxon)
		}
		counts := make(map[ontology.ID]int, len(tb.TermProteins))
		for id, proteins := range tb.TermProteins {
			counts[id] = len(proteins)
		}
		ic = semsim.NewIC(dag, counts, false)
	}

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()
	fmt.Fprintln(w, "term_a\tterm_b\tmethod\tsimilarity")
	for _, pair := range strings.Split(*pairs, ",") {
		a, b, ok := splitPair(pair)
		if !ok {
			log.Printf("skipping malformed pair %q", pair)
			continue
		}
		ta, ok := dag.TermByID(ontology.ID(a))
		if !ok {
			log.Printf("unknown term %s", a)
			continue
		}
		tb, ok := dag.TermByID(ontology.ID(b))
		if !ok {
			log.Printf("unknown term %s", b)
			continue
		}
		sim := semsim.Similarity(m, dag, ic, ta.Index(), tb.Index())
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6f\n", a, b, m, sim)
	}
}

func parseMethod(s string) (semsim.Method, error) {
	switch s {
	case "resnik":
		return semsim.Resnik, nil
	case "lin":
		return semsim.Lin, nil
	case "jiang_conrath":
		return semsim.JiangConrath, nil
	case "wang":
		return semsim.Wang, nil
	default:
		return 0, fmt.Errorf("%w: unrecognized method %q", goerr.ErrConfigError, s)
	}
}

func splitPair(s string) (a, b string, ok bool) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), true
}

func loadOntology(path string) (*ontology.Dag, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", goerr.ErrInputMissing, err)
	}
	defer f.Close()
	raw, err := ontology.ParseOBO(f, os.Stderr)
	if err != nil {
		return nil, err
	}
	return ontology.Build(raw)
}
