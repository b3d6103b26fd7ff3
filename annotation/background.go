package annotation

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/taxago/goea/goerr"
	"github.com/taxago/goea/ontology"
)

// TaxonID is an NCBI taxonomy identifier.
type TaxonID uint32

// Pool interns protein accessions to a dense, per-taxon index so that
// downstream set operations work on int32 slices rather than strings, per
// the same memory discipline [ontology.Dag] applies to GO term IDs.
type Pool struct {
	names []string
	index map[string]int32
}

// NewPool returns an empty Pool.
func NewPool() *Pool {
	return &Pool{index: make(map[string]int32)}
}

// Intern returns the dense index for name, assigning one if this is the
// first time name has been seen.
func (p *Pool) Intern(name string) int32 {
	if i, ok := p.index[name]; ok {
		return i
	}
	i := int32(len(p.names))
	p.names = append(p.names, name)
	p.index[name] = i
	return i
}

// Name returns the accession a dense index was assigned to.
func (p *Pool) Name(i int32) string { return p.names[i] }

// Len returns the number of distinct accessions interned.
func (p *Pool) Len() int { return len(p.names) }

// TaxonBackground is the background (reference) population of one taxon:
// every protein annotated to each GO term, restricted to the requested
// evidence categories, before count propagation.
type TaxonBackground struct {
	Taxon        TaxonID
	Proteins     *Pool
	TermProteins map[ontology.ID][]int32
	ProteinTerms map[string][]ontology.ID
}

// ProteinCount returns the number of distinct accessions in the taxon's
// protein pool: every protein with at least one retained annotation, plus
// any study accessions that [ReadStudy] interned into the pool.
func (b *TaxonBackground) ProteinCount() int { return b.Proteins.Len() }

// Background is the background population for every requested taxon.
type Background struct {
	Taxa map[TaxonID]*TaxonBackground
}

// ReadBackground reads "{dir}/{taxon}_background.txt" for each taxon in
// taxonIDs, retaining only annotations whose evidence code falls in one of
// categories. Each line of a background file is
// "protein_id\tGO:term\tevidence_code". Taxa whose background file does not
// exist are silently omitted from the result, matching the lenient
// per-taxon failure handling the rest of the pipeline uses. Files are read
// concurrently, one worker per taxon, bounded by workers.
func ReadBackground(dir string, taxonIDs []TaxonID, categories []Category, workers int) (*Background, error) {
	if workers < 1 {
		workers = 1
	}
	bg := &Background{Taxa: make(map[TaxonID]*TaxonBackground)}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		sem      = make(chan struct{}, workers)
		firstErr error
	)
	for _, taxon := range taxonIDs {
		taxon := taxon
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()

			path := filepath.Join(dir, fmt.Sprintf("%d_background.txt", taxon))
			tb, err := readTaxonBackground(path, taxon, categories)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			if tb != nil {
				bg.Taxa[taxon] = tb
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return bg, nil
}

func readTaxonBackground(path string, taxon TaxonID, categories []Category) (*TaxonBackground, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: annotation: opening background for taxon %d: %w", goerr.ErrInputMissing, taxon, err)
	}
	defer f.Close()

	tb := &TaxonBackground{
		Taxon:        taxon,
		Proteins:     NewPool(),
		TermProteins: make(map[ontology.ID][]int32),
		ProteinTerms: make(map[string][]ontology.ID),
	}
	seen := make(map[ontology.ID]map[int32]bool)

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		parts := strings.Split(sc.Text(), "\t")
		if len(parts) < 3 {
			continue
		}
		code := parts[2]
		cat, err := CategoryForCode(code)
		if err != nil || !containsCategory(categories, cat) {
			continue
		}
		goID, ok := parseGOField(parts[1])
		if !ok {
			continue
		}
		protein := tb.Proteins.Intern(parts[0])
		set, ok := seen[goID]
		if !ok {
			set = make(map[int32]bool)
			seen[goID] = set
		}
		if !set[protein] {
			set[protein] = true
			tb.TermProteins[goID] = append(tb.TermProteins[goID], protein)
			tb.ProteinTerms[parts[0]] = append(tb.ProteinTerms[parts[0]], goID)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: annotation: reading background for taxon %d: %w", goerr.ErrParseError, taxon, err)
	}
	for id, proteins := range tb.TermProteins {
		sort.Slice(proteins, func(i, j int) bool { return proteins[i] < proteins[j] })
		tb.TermProteins[id] = proteins
	}
	return tb, nil
}

func parseGOField(s string) (ontology.ID, bool) {
	rest, ok := cutPrefix(s, "GO:")
	if !ok {
		return "", false
	}
	if _, err := strconv.ParseUint(rest, 10, 32); err != nil {
		return "", false
	}
	return ontology.ID(s), true
}

func cutPrefix(s, prefix string) (string, bool) {
	if !strings.HasPrefix(s, prefix) {
		return s, false
	}
	return s[len(prefix):], true
}

// FilterByStudyPopulation removes GO terms from the background of each
// taxon that do not also appear in that taxon's study population. This is
// only safe to call before count propagation: a GO term with no direct
// study annotation of its own can still become a tested term once a more
// specific descendant's study proteins propagate into it, and that term
// may carry its own direct, background-only annotations that propagation
// still needs to fold in. Callers that propagate counts (Classic, Elim,
// Weight) must not call this.
func (bg *Background) FilterByStudyPopulation(study *Study) {
	for taxon, tb := range bg.Taxa {
		st, ok := study.Taxa[taxon]
		if !ok {
			continue
		}
		for id := range tb.TermProteins {
			if _, keep := st.TermProteins[id]; !keep {
				delete(tb.TermProteins, id)
			}
		}
	}
}
