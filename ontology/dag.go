// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/taxago/goea/goerr"
)

// ErrCyclic is returned by [Build] when the relation graph implied by the
// input terms is not acyclic.
var ErrCyclic = errors.New("ontology: relation graph is not acyclic")

// node is the gonum graph.Node implementation backing a Dag. Its ID is the
// term's dense index.
type node int32

func (n node) ID() int64 { return int64(n) }

// edge is a typed relation from a more specific term to a more general one.
// From is the child, To is the parent.
type edge struct {
	from, to node
	rel      Relation
}

func (e edge) From() graph.Node         { return e.from }
func (e edge) To() graph.Node           { return e.to }
func (e edge) ReversedEdge() graph.Edge { return edge{from: e.to, to: e.from, rel: e.rel} }

// Relation returns the type of relation the edge represents.
func (e edge) Relation() Relation { return e.rel }

// Dag is a Gene Ontology term graph. Edges run from a term to its parents
// (is_a, part_of, regulates, positively_regulates, negatively_regulates,
// occurs_in), matching the direction of the "is-a"/"part-of" hierarchy.
// A Dag is built once by [Build] and is immutable afterward; all derived
// closures (ancestors, descendants, depth, topological order) are computed
// eagerly so that query operations are simple slice lookups.
type Dag struct {
	terms   []*Term
	byID    map[ID]int32
	parents []map[int32]Relation
	kids    []map[int32]Relation

	// ancestors and descendants are the unrestricted closures, following
	// every relation type. propAncestors and propDescendants follow only
	// is_a/part_of, the relations that transmit counts during propagation.
	ancestors       [][]int32
	descendants     [][]int32
	propAncestors   [][]int32
	propDescendants [][]int32

	depth []int32

	// leavesFirst lists every term index such that for every edge
	// child->parent, child appears before parent. roots holds the index
	// of the namespace root term for each of the three namespaces, or -1
	// if that namespace's root was not found among the input terms.
	leavesFirst []int32
	roots       [3]int32
}

// Standard IDs of the three Gene Ontology namespace roots.
const (
	RootBiologicalProcess ID = "GO:0008150"
	RootMolecularFunction ID = "GO:0003674"
	RootCellularComponent ID = "GO:0005575"
)

// Build assembles a Dag from parsed OBO stanzas. Terms referencing a parent
// ID that is not present in terms (for example because the parent was
// obsolete) have that relation silently dropped. Build returns [ErrCyclic]
// if the resulting relation graph contains a cycle.
func Build(raw map[ID]*rawTerm) (*Dag, error) {
	ids := make([]ID, 0, len(raw))
	for id := range raw {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	d := &Dag{
		terms:   make([]*Term, len(ids)),
		byID:    make(map[ID]int32, len(ids)),
		parents: make([]map[int32]Relation, len(ids)),
		kids:    make([]map[int32]Relation, len(ids)),
	}
	for i, id := range ids {
		r := raw[id]
		t := &Term{
			ID:         r.id,
			Name:       r.name,
			Namespace:  r.namespace,
			Def:        r.def,
			IsObsolete: r.isObsolete,
			index:      int32(i),
		}
		d.terms[i] = t
		d.byID[id] = int32(i)
		d.parents[i] = make(map[int32]Relation)
		d.kids[i] = make(map[int32]Relation)
	}
	for i, id := range ids {
		for parentID, rel := range raw[id].parents {
			pi, ok := d.byID[parentID]
			if !ok {
				continue
			}
			d.parents[i][pi] = rel
			d.kids[pi][int32(i)] = rel
		}
	}

	order, err := topo.Sort(d)
	if err != nil {
		return nil, fmt.Errorf("%w: %w: %v", goerr.ErrParseError, ErrCyclic, err)
	}
	d.leavesFirst = make([]int32, len(order))
	for i, n := range order {
		d.leavesFirst[i] = int32(n.ID())
	}

	d.computeClosures()
	d.computeDepth()
	d.findRoots()

	return d, nil
}

func (d *Dag) computeClosures() {
	n := len(d.terms)
	d.ancestors = make([][]int32, n)
	d.descendants = make([][]int32, n)
	d.propAncestors = make([][]int32, n)
	d.propDescendants = make([][]int32, n)

	// A BreadthFirst keeps its visited set between walks, so each walk
	// below starts from a Reset.
	propagating := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool { return e.(edge).rel.Propagates() },
	}
	unrestricted := traverse.BreadthFirst{}

	down := reverseDag{d}
	for i := int32(0); i < int32(n); i++ {
		start := node(i)

		var anc []int32
		unrestricted.Reset()
		unrestricted.Walk(d, start, func(v graph.Node, depth int) bool {
			if depth > 0 {
				anc = append(anc, int32(v.ID()))
			}
			return false
		})
		sort.Slice(anc, func(a, b int) bool { return anc[a] < anc[b] })
		d.ancestors[i] = anc

		var desc []int32
		unrestricted.Reset()
		unrestricted.Walk(down, start, func(v graph.Node, depth int) bool {
			if depth > 0 {
				desc = append(desc, int32(v.ID()))
			}
			return false
		})
		sort.Slice(desc, func(a, b int) bool { return desc[a] < desc[b] })
		d.descendants[i] = desc

		var pAnc []int32
		propagating.Reset()
		propagating.Walk(d, start, func(v graph.Node, depth int) bool {
			if depth > 0 {
				pAnc = append(pAnc, int32(v.ID()))
			}
			return false
		})
		sort.Slice(pAnc, func(a, b int) bool { return pAnc[a] < pAnc[b] })
		d.propAncestors[i] = pAnc

		var pDesc []int32
		propagating.Reset()
		propagating.Walk(down, start, func(v graph.Node, depth int) bool {
			if depth > 0 {
				pDesc = append(pDesc, int32(v.ID()))
			}
			return false
		})
		sort.Slice(pDesc, func(a, b int) bool { return pDesc[a] < pDesc[b] })
		d.propDescendants[i] = pDesc
	}
}

// computeDepth assigns each term its longest-path distance from any root,
// via a single forward pass over the roots-first order (the reverse of the
// leaves-first topological order computed in Build).
func (d *Dag) computeDepth() {
	d.depth = make([]int32, len(d.terms))
	for i := range d.depth {
		d.depth[i] = -1
	}
	for i := len(d.leavesFirst) - 1; i >= 0; i-- {
		v := d.leavesFirst[i]
		best := int32(-1)
		for p := range d.parents[v] {
			if d.depth[p] > best {
				best = d.depth[p]
			}
		}
		if best < 0 {
			d.depth[v] = 0
		} else {
			d.depth[v] = best + 1
		}
	}
}

func (d *Dag) findRoots() {
	for i := range d.roots {
		d.roots[i] = -1
	}
	for _, rootID := range []ID{RootBiologicalProcess, RootMolecularFunction, RootCellularComponent} {
		idx, ok := d.byID[rootID]
		if !ok {
			continue
		}
		d.roots[d.terms[idx].Namespace] = idx
	}
}

// Len returns the number of terms in the Dag.
func (d *Dag) Len() int { return len(d.terms) }

// Term returns the term with the given dense index.
func (d *Dag) Term(i int32) *Term { return d.terms[i] }

// TermByID returns the term with the given GO ID and reports whether it was
// found.
func (d *Dag) TermByID(id ID) (*Term, bool) {
	i, ok := d.byID[id]
	if !ok {
		return nil, false
	}
	return d.terms[i], true
}

// Depth returns the term's longest-path distance from its namespace root.
func (d *Dag) Depth(i int32) int32 { return d.depth[i] }

// LeavesFirst returns every term index ordered so that children precede
// their parents. This is the order the count-propagation engine processes
// terms in.
func (d *Dag) LeavesFirst() []int32 { return d.leavesFirst }

// Root returns the index of the root term of ns, and reports whether it was
// present in the Dag.
func (d *Dag) Root(ns Namespace) (int32, bool) {
	r := d.roots[ns]
	return r, r >= 0
}

// Ancestors returns every term reachable from i by following any relation
// toward a parent, sorted ascending. It does not include i itself.
func (d *Dag) Ancestors(i int32) []int32 { return d.ancestors[i] }

// Descendants returns every term reachable from i by following any
// relation toward a child, sorted ascending. It does not include i itself.
func (d *Dag) Descendants(i int32) []int32 { return d.descendants[i] }

// PropagatingAncestors returns i's ancestors reachable via is_a/part_of
// relations only, the set that receives propagated annotation counts from
// i. Sorted ascending, excludes i.
func (d *Dag) PropagatingAncestors(i int32) []int32 { return d.propAncestors[i] }

// PropagatingDescendants returns i's descendants reachable via is_a/part_of
// relations only. Sorted ascending, excludes i.
func (d *Dag) PropagatingDescendants(i int32) []int32 { return d.propDescendants[i] }

// Parents returns the relation type from i to each of its immediate
// parents.
func (d *Dag) Parents(i int32) map[int32]Relation { return d.parents[i] }

// Children returns the relation type from each of i's immediate children
// to i.
func (d *Dag) Children(i int32) map[int32]Relation { return d.kids[i] }

// IsDescendantOf reports whether a is a descendant of b via any relation,
// and if so at what minimum number of edges.
func (d *Dag) IsDescendantOf(a, b int32) (yes bool, depth int) {
	if !contains(d.descendants[b], a) {
		return false, -1
	}
	unrestricted := traverse.BreadthFirst{}
	found := -1
	unrestricted.Walk(reverseDag{d}, node(b), func(v graph.Node, dep int) bool {
		if int32(v.ID()) == a {
			found = dep
			return true
		}
		return false
	})
	return found >= 0, found
}

func contains(s []int32, v int32) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= v })
	return i < len(s) && s[i] == v
}

// ClosestCommonAncestor returns the deepest term (greatest Depth) that is an ancestor
// of both a and b (including a or b itself if one is an ancestor of the
// other). Ties are broken by ascending term index for determinism.
func (d *Dag) ClosestCommonAncestor(a, b int32) (int32, bool) {
	setA := map[int32]bool{a: true}
	for _, x := range d.ancestors[a] {
		setA[x] = true
	}
	var best int32 = -1
	bestDepth := int32(-1)
	consider := func(x int32) {
		if !setA[x] {
			return
		}
		dep := d.depth[x]
		if dep > bestDepth || (dep == bestDepth && (best < 0 || x < best)) {
			bestDepth = dep
			best = x
		}
	}
	consider(b)
	for _, x := range d.ancestors[b] {
		consider(x)
	}
	return best, best >= 0
}

// gonum graph.Directed implementation. Edges run child (From) to parent
// (To), matching the semantic direction documented on Dag.

func (d *Dag) Node(id int64) graph.Node {
	if id < 0 || id >= int64(len(d.terms)) {
		return nil
	}
	return node(id)
}

func (d *Dag) Nodes() graph.Nodes {
	nodes := make([]graph.Node, len(d.terms))
	for i := range d.terms {
		nodes[i] = node(i)
	}
	return iterator.NewOrderedNodes(nodes)
}

func (d *Dag) From(id int64) graph.Nodes {
	ps := d.parents[id]
	nodes := make([]graph.Node, 0, len(ps))
	for p := range ps {
		nodes = append(nodes, node(p))
	}
	sortNodes(nodes)
	return iterator.NewOrderedNodes(nodes)
}

func (d *Dag) To(id int64) graph.Nodes {
	ks := d.kids[id]
	nodes := make([]graph.Node, 0, len(ks))
	for k := range ks {
		nodes = append(nodes, node(k))
	}
	sortNodes(nodes)
	return iterator.NewOrderedNodes(nodes)
}

func (d *Dag) HasEdgeBetween(xid, yid int64) bool {
	return d.HasEdgeFromTo(xid, yid) || d.HasEdgeFromTo(yid, xid)
}

func (d *Dag) HasEdgeFromTo(uid, vid int64) bool {
	_, ok := d.parents[uid][int32(vid)]
	return ok
}

func (d *Dag) Edge(uid, vid int64) graph.Edge {
	rel, ok := d.parents[uid][int32(vid)]
	if !ok {
		return nil
	}
	return edge{from: node(uid), to: node(vid), rel: rel}
}

func sortNodes(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID() < nodes[j].ID() })
}

// reverseDag exposes the Dag's child/parent adjacency swapped, so that
// traverse.BreadthFirst's From(id) walks toward children instead of
// parents. It is only ever used as a traversal source, never mutated.
type reverseDag struct{ *Dag }

func (r reverseDag) From(id int64) graph.Nodes { return r.Dag.To(id) }
func (r reverseDag) To(id int64) graph.Nodes   { return r.Dag.From(id) }

func (r reverseDag) HasEdgeFromTo(uid, vid int64) bool {
	return r.Dag.HasEdgeFromTo(vid, uid)
}

func (r reverseDag) Edge(uid, vid int64) graph.Edge {
	e := r.Dag.Edge(vid, uid)
	if e == nil {
		return nil
	}
	return e.(edge).ReversedEdge()
}
