// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import "fmt"

// Namespace is one of the three Gene Ontology aspects.
type Namespace int

const (
	BiologicalProcess Namespace = iota
	MolecularFunction
	CellularComponent
)

func (n Namespace) String() string {
	switch n {
	case BiologicalProcess:
		return "biological_process"
	case MolecularFunction:
		return "molecular_function"
	case CellularComponent:
		return "cellular_component"
	default:
		return fmt.Sprintf("Namespace(%d)", int(n))
	}
}

// Relation is the type of an edge from a term to one of its parents.
type Relation int

const (
	IsA Relation = iota
	PartOf
	Regulates
	PositivelyRegulates
	NegativelyRegulates
	OccursIn
)

func (r Relation) String() string {
	switch r {
	case IsA:
		return "is_a"
	case PartOf:
		return "part_of"
	case Regulates:
		return "regulates"
	case PositivelyRegulates:
		return "positively_regulates"
	case NegativelyRegulates:
		return "negatively_regulates"
	case OccursIn:
		return "occurs_in"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Propagates reports whether counts transmit along edges of this
// relation during count propagation. Only is_a and part_of transmit;
// this is the widely accepted convention for GO enrichment tools.
func (r Relation) Propagates() bool {
	return r == IsA || r == PartOf
}

// ID is a stable GO term identifier, e.g. "GO:0008150".
type ID string

// Term is a single, non-obsolete Gene Ontology term.
type Term struct {
	ID         ID
	Name       string
	Namespace  Namespace
	Def        string
	IsObsolete bool

	// index is the dense position assigned by the Dag that owns this
	// term. It is only valid in the context of that Dag.
	index int32
}

// Index returns the term's dense index within its owning Dag.
func (t *Term) Index() int32 { return t.index }
