package annotation

import (
	"fmt"
	"strings"

	"github.com/taxago/goea/goerr"
)

// Category groups GO evidence codes by how the annotation was derived.
type Category int

const (
	Experimental Category = iota
	Phylogenetic
	Computational
	Author
	Curator
	Electronic
)

func (c Category) String() string {
	switch c {
	case Experimental:
		return "experimental"
	case Phylogenetic:
		return "phylogenetic"
	case Computational:
		return "computational"
	case Author:
		return "author"
	case Curator:
		return "curator"
	case Electronic:
		return "electronic"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// AllCategories lists every recognized evidence category, in the order
// "all" expands to on the command line.
var AllCategories = []Category{Experimental, Phylogenetic, Computational, Author, Curator, Electronic}

var codeToCategory = map[string]Category{
	"EXP": Experimental, "IDA": Experimental, "IPI": Experimental, "IMP": Experimental,
	"IGI": Experimental, "IEP": Experimental, "HTP": Experimental, "HDA": Experimental,
	"HMP": Experimental, "HGI": Experimental, "HEP": Experimental,

	"IBA": Phylogenetic, "IBD": Phylogenetic, "IKR": Phylogenetic, "IRD": Phylogenetic,

	"ISS": Computational, "ISO": Computational, "ISA": Computational, "ISM": Computational,
	"IGC": Computational, "RCA": Computational,

	"TAS": Author, "NAS": Author,

	"IC": Curator, "ND": Curator,

	"IEA": Electronic,
}

var nameToCategory = map[string]Category{
	"experimental":  Experimental,
	"phylogenetic":  Phylogenetic,
	"computational": Computational,
	"author":        Author,
	"curator":       Curator,
	"electronic":    Electronic,
	"automatic":     Electronic,
}

// CategoryForCode maps a two/three-letter GO evidence code (EXP, IDA,
// IEA, ...) to the category it belongs to.
func CategoryForCode(code string) (Category, error) {
	c, ok := codeToCategory[code]
	if !ok {
		return 0, fmt.Errorf("%w: annotation: unrecognized evidence code %q", goerr.ErrParseError, code)
	}
	return c, nil
}

// ParseCategories parses a comma-separated CLI value such as
// "experimental,computational" or "all" into the set of categories it
// selects.
func ParseCategories(input string) ([]Category, error) {
	var parts []string
	for _, p := range strings.Split(strings.ToLower(input), ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	for _, p := range parts {
		if p == "all" {
			return append([]Category(nil), AllCategories...), nil
		}
	}
	var cats []Category
	for _, p := range parts {
		c, ok := nameToCategory[p]
		if !ok {
			return nil, fmt.Errorf("%w: annotation: unrecognized evidence category %q, valid categories are: experimental, phylogenetic, computational, author, curator, automatic, or all", goerr.ErrConfigError, p)
		}
		cats = append(cats, c)
	}
	if len(cats) == 0 {
		return nil, fmt.Errorf("%w: annotation: no evidence categories provided, valid categories are: experimental, phylogenetic, computational, author, curator, automatic, or all", goerr.ErrConfigError)
	}
	return cats, nil
}

func containsCategory(cats []Category, c Category) bool {
	for _, x := range cats {
		if x == c {
			return true
		}
	}
	return false
}
