// commonancestor computes the common-ancestor sub-DAG of a set of Gene
// Ontology terms and prints its nodes, induced edges and first common
// ancestors (the common ancestors closest to the inputs) as tab-delimited
// tables to stdout.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/taxago/goea/ancestor"
	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/ontology"
)

func main() {
	var (
		obo   = flag.String("obo", "", "path to the Gene Ontology file (.obo - required)")
		terms = flag.String("terms", "", "comma-separated GO term IDs (required)")
	)
	flag.Parse()

	if *obo == "" || *terms == "" {
		flag.Usage()
		os.Exit(2)
	}

	log.Println("[loading ontology]")
	dag, err := loadOntology(*obo)
	if err != nil {
		log.Fatalf("failed to load ontology: %v", err)
	}

	ids := strings.Split(*terms, ",")
	indices := make([]int32, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		t, ok := dag.TermByID(ontology.ID(id))
		if !ok {
			log.Fatalf("unknown term %s", id)
		}
		indices = append(indices, t.Index())
	}

	sub := ancestor.Extract(dag, indices)
	first := ancestor.FirstCommonAncestors(dag, indices)

	w := bufio.NewWriter(os.Stdout)
	defer w.Flush()

	fmt.Fprintln(w, "# nodes")
	fmt.Fprintln(w, "term_id\tname\tnamespace")
	for _, n := range sub.Nodes {
		t := dag.Term(n)
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Name, t.Namespace)
	}

	fmt.Fprintln(w, "# edges")
	fmt.Fprintln(w, "from\tto\trelation")
	for _, e := range sub.Edges {
		fmt.Fprintf(w, "%s\t%s\t%s\n", dag.Term(e.From).ID, dag.Term(e.To).ID, e.Relation)
	}

	fmt.Fprintln(w, "# first_common_ancestors")
	fmt.Fprintln(w, "term_id\tname")
	for _, n := range first {
		t := dag.Term(n)
		fmt.Fprintf(w, "%s\t%s\n", t.ID, t.Name)
	}
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
