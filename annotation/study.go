package annotation

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/ontology"
)

// TaxonStudy is the study population of one taxon: the proteins under
// test, and the subset of those proteins that carry each GO term
// according to the matching [TaxonBackground].
type TaxonStudy struct {
	Taxon        TaxonID
	Proteins     []int32
	TermProteins map[ontology.ID][]int32
}

// Study is the study population for every taxon present in the input.
type Study struct {
	Taxa map[TaxonID]*TaxonStudy
}

// ReadStudy reads a study population from path, dispatching on its form:
// a ".csv" file (one column of protein accessions per taxon, headed by the
// taxon ID), a single ".fa"/".fasta" file (one taxon per file, accession
// per line after a ">taxon_id" header), or a directory of such FASTA
// files (one taxon per file). Study protein accessions are interned into
// the matching taxon's [TaxonBackground] protein pool so that study and
// background sets can be compared by index.
func ReadStudy(path string, bg *Background) (*Study, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return studyFromCSV(path, bg)
	case ".fa", ".fasta":
		st := &Study{Taxa: make(map[TaxonID]*TaxonStudy)}
		ts, err := studyFromFASTA(path, bg)
		if err != nil {
			return nil, err
		}
		if ts != nil {
			st.Taxa[ts.Taxon] = ts
		}
		return st, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: annotation: reading study population: %w", goerr.ErrInputMissing, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: annotation: study population %s is neither a .csv, .fa/.fasta file, nor a directory", goerr.ErrParseError, path)
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("%w: annotation: reading study population directory: %w", goerr.ErrInputMissing, err)
	}
	st := &Study{Taxa: make(map[TaxonID]*TaxonStudy)}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".fa", ".fasta":
		default:
			continue
		}
		ts, err := studyFromFASTA(filepath.Join(path, e.Name()), bg)
		if err != nil {
			return nil, err
		}
		if ts != nil {
			st.Taxa[ts.Taxon] = ts
		}
	}
	return st, nil
}

func studyFromCSV(path string, bg *Background) (*Study, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: annotation: opening study population: %w", goerr.ErrInputMissing, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: annotation: reading study population header: %w", goerr.ErrParseError, err)
	}
	taxa := make([]TaxonID, len(header))
	for i, h := range header {
		n, err := strconv.ParseUint(strings.TrimSpace(h), 10, 32)
		if err != nil {
			taxa[i] = 0
			continue
		}
		taxa[i] = TaxonID(n)
	}

	proteinSets := make(map[TaxonID]map[string]bool)
	for {
		record, err := r.Read()
		if err != nil {
			break
		}
		for i, field := range record {
			if i >= len(taxa) || taxa[i] == 0 {
				continue
			}
			field = strings.TrimSpace(field)
			if field == "" {
				continue
			}
			set, ok := proteinSets[taxa[i]]
			if !ok {
				set = make(map[string]bool)
				proteinSets[taxa[i]] = set
			}
			set[field] = true
		}
	}

	st := &Study{Taxa: make(map[TaxonID]*TaxonStudy)}
	for taxon, set := range proteinSets {
		accessions := make([]string, 0, len(set))
		for p := range set {
			accessions = append(accessions, p)
		}
		sort.Strings(accessions)
		st.Taxa[taxon] = buildTaxonStudy(taxon, accessions, bg)
	}
	return st, nil
}

func studyFromFASTA(path string, bg *Background) (*TaxonStudy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: annotation: opening study FASTA %s: %w", goerr.ErrInputMissing, path, err)
	}
	defer f.Close()

	var (
		taxon       TaxonID
		haveTaxon   bool
		accessions  []string
		seenAccess  = make(map[string]bool)
	)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ">") {
			if haveTaxon {
				return nil, fmt.Errorf("%w: annotation: %s: more than one taxon header in a single FASTA study file", goerr.ErrParseError, path)
			}
			id, err := strconv.ParseUint(strings.TrimSpace(line[1:]), 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%w: annotation: %s: invalid taxon ID in header: %w", goerr.ErrParseError, path, err)
			}
			taxon = TaxonID(id)
			haveTaxon = true
			continue
		}
		if !haveTaxon {
			return nil, fmt.Errorf("%w: annotation: %s: missing '>taxon_id' header", goerr.ErrParseError, path)
		}
		if !seenAccess[line] {
			seenAccess[line] = true
			accessions = append(accessions, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: annotation: reading study FASTA %s: %w", goerr.ErrParseError, path, err)
	}
	if !haveTaxon {
		return nil, nil
	}
	sort.Strings(accessions)
	return buildTaxonStudy(taxon, accessions, bg), nil
}

// buildTaxonStudy interns accessions into the taxon's background protein
// pool (so study and background indices coincide) and derives each study
// protein's GO annotations from the background's protein-to-term map.
func buildTaxonStudy(taxon TaxonID, accessions []string, bg *Background) *TaxonStudy {
	ts := &TaxonStudy{Taxon: taxon, TermProteins: make(map[ontology.ID][]int32)}
	tb, ok := bg.Taxa[taxon]
	if !ok {
		// No background for this taxon: proteins still count toward the
		// study population size but carry no annotations. Index them
		// against a throwaway pool local to this taxon.
		p := NewPool()
		ts.Proteins = make([]int32, 0, len(accessions))
		for _, acc := range accessions {
			ts.Proteins = append(ts.Proteins, p.Intern(acc))
		}
		return ts
	}
	ts.Proteins = make([]int32, 0, len(accessions))
	for _, acc := range accessions {
		idx := tb.Proteins.Intern(acc)
		ts.Proteins = append(ts.Proteins, idx)
		for _, goID := range tb.ProteinTerms[acc] {
			ts.TermProteins[goID] = append(ts.TermProteins[goID], idx)
		}
	}
	for id, proteins := range ts.TermProteins {
		sort.Slice(proteins, func(i, j int) bool { return proteins[i] < proteins[j] })
		ts.TermProteins[id] = proteins
	}
	return ts
}

// FilterByThreshold removes GO terms annotated to threshold or fewer study
// proteins in any taxon. This is a stricter, study-count-based filter than
// the pipeline's own min_prot output filter, which operates on background
// count; callers that want to thin a very large study set before scoring
// can apply this first.
func (s *Study) FilterByThreshold(threshold int) {
	for _, ts := range s.Taxa {
		for id, proteins := range ts.TermProteins {
			if len(proteins) <= threshold {
				delete(ts.TermProteins, id)
			}
		}
	}
}
