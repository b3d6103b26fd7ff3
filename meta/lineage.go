// Package meta performs phylogenetic meta-analysis of per-taxon
// enrichment results: grouping taxa by taxonomic rank, pooling effect
// sizes across a group while accounting for phylogenetic
// non-independence via a variance-covariance (VCV) matrix, and scoring
// the pooled effect with a permutation p-value.
package meta

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/goerr"
)

// Rank is a taxonomic grouping level, in the column order of the
// lineage input.
type Rank int

const (
	Genus Rank = iota
	Family
	Order
	Class
	Phylum
	Kingdom
	Superkingdom
)

func ParseRank(s string) (Rank, bool) {
	switch strings.ToLower(s) {
	case "genus":
		return Genus, true
	case "family":
		return Family, true
	case "order":
		return Order, true
	case "class":
		return Class, true
	case "phylum":
		return Phylum, true
	case "kingdom":
		return Kingdom, true
	case "superkingdom":
		return Superkingdom, true
	default:
		return 0, false
	}
}

// Lineage holds per-taxon taxonomic classification and the common species
// name, read from a TSV with header (taxon_id, species_name, Genus,
// Family, Order, Class, Phylum, Kingdom, Superkingdom).
type Lineage struct {
	species map[annotation.TaxonID]string
	ranks   map[annotation.TaxonID][7]string
}

// ReadLineage parses a lineage TSV. Rows whose taxon_id does not parse as
// an unsigned integer are skipped.
func ReadLineage(r io.Reader) (*Lineage, error) {
	l := &Lineage{
		species: make(map[annotation.TaxonID]string),
		ranks:   make(map[annotation.TaxonID][7]string),
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		if line == 1 {
			continue // header
		}
		fields := strings.Split(sc.Text(), "\t")
		if len(fields) < 2 {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSpace(fields[0]), 10, 32)
		if err != nil {
			continue
		}
		taxon := annotation.TaxonID(id)
		l.species[taxon] = strings.TrimSpace(fields[1])
		var ranks [7]string
		for i := 0; i < 7 && i+2 < len(fields); i++ {
			ranks[i] = strings.TrimSpace(fields[i+2])
		}
		l.ranks[taxon] = ranks
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: meta: reading lineage: %w", goerr.ErrParseError, err)
	}
	return l, nil
}

// SpeciesName returns the common name recorded for taxon, or its numeric
// ID formatted as a string if none is known.
func (l *Lineage) SpeciesName(taxon annotation.TaxonID) string {
	if name, ok := l.species[taxon]; ok && name != "" {
		return name
	}
	return strconv.FormatUint(uint64(taxon), 10)
}

// RankName returns the taxonomic name of taxon at rank, or "" if taxon is
// unknown.
func (l *Lineage) RankName(taxon annotation.TaxonID, rank Rank) string {
	ranks, ok := l.ranks[taxon]
	if !ok {
		return ""
	}
	return ranks[rank]
}

// GroupBy partitions taxa by their name at rank. Taxa with no recorded
// lineage, or an empty name at that rank, are omitted from every group.
func (l *Lineage) GroupBy(taxa []annotation.TaxonID, rank Rank) map[string][]annotation.TaxonID {
	groups := make(map[string][]annotation.TaxonID)
	for _, t := range taxa {
		name := l.RankName(t, rank)
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], t)
	}
	return groups
}
