// Package ancestor extracts the common-ancestor sub-DAG of a set of GO
// terms: every term that is an ancestor of all of them, plus the terms
// themselves, together with the induced edges between them.
package ancestor

import (
	"sort"

	"github.com/taxago/goea/ontology"
)

// Edge is an induced relation between two terms of a [SubDag], in the
// same child-to-parent direction as the owning [ontology.Dag].
type Edge struct {
	From, To int32
	Relation ontology.Relation
}

// SubDag is the induced sub-graph of Dag restricted to Nodes, the set A
// computed by [Extract]: the intersection of the input terms' ancestor
// sets, unioned with the input terms themselves.
type SubDag struct {
	Dag   *ontology.Dag
	Nodes []int32
	Edges []Edge
}

// Extract computes A = (∩_{t ∈ terms} ancestors(t)) ∪ terms and returns
// the sub-DAG induced on A, preserving the relation type of every edge
// whose endpoints are both in A. terms must be non-empty.
func Extract(dag *ontology.Dag, terms []int32) SubDag {
	if len(terms) == 0 {
		return SubDag{Dag: dag}
	}

	common := make(map[int32]bool)
	for i, t := range terms {
		if i == 0 {
			for _, a := range dag.Ancestors(t) {
				common[a] = true
			}
			continue
		}
		anc := make(map[int32]bool, len(dag.Ancestors(t)))
		for _, a := range dag.Ancestors(t) {
			anc[a] = true
		}
		for a := range common {
			if !anc[a] {
				delete(common, a)
			}
		}
	}

	a := make(map[int32]bool, len(common)+len(terms))
	for k := range common {
		a[k] = true
	}
	for _, t := range terms {
		a[t] = true
	}

	nodes := make([]int32, 0, len(a))
	for n := range a {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })

	var edges []Edge
	for _, n := range nodes {
		for p, rel := range dag.Parents(n) {
			if a[p] {
				edges = append(edges, Edge{From: n, To: p, Relation: rel})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return SubDag{Dag: dag, Nodes: nodes, Edges: edges}
}

// FirstCommonAncestors returns the elements of Extract(dag, terms)'s node
// set that are not themselves one of the input terms and have no
// descendant that is also a non-input node in that set — the common
// ancestors closest to the inputs. Ties are broken by ascending term
// index.
func FirstCommonAncestors(dag *ontology.Dag, terms []int32) []int32 {
	sub := Extract(dag, terms)

	inTerms := make(map[int32]bool, len(terms))
	for _, t := range terms {
		inTerms[t] = true
	}

	candidates := make([]int32, 0, len(sub.Nodes))
	for _, n := range sub.Nodes {
		if !inTerms[n] {
			candidates = append(candidates, n)
		}
	}

	var first []int32
	for _, c := range candidates {
		closest := true
		for _, other := range candidates {
			if other == c {
				continue
			}
			if yes, _ := dag.IsDescendantOf(other, c); yes {
				closest = false
				break
			}
		}
		if closest {
			first = append(first, c)
		}
	}
	sort.Slice(first, func(i, j int) bool { return first[i] < first[j] })
	return first
}
