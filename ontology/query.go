// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import "sort"

// Query represents a step in a Dag query, a set of term indices reached by
// a chain of relation-filtered traversals from a starting set.
type Query struct {
	d     *Dag
	terms []int32
}

// Query returns a query of d starting from the given term indices.
// Queries may not be mixed between distinct Dags.
func (d *Dag) Query(from ...int32) Query {
	return Query{d: d, terms: append([]int32(nil), from...)}
}

// Out returns a query holding terms reachable from the receiver's terms by
// following one parent-ward edge whose relation satisfies fn.
func (q Query) Out(fn func(Relation) bool) Query {
	r := Query{d: q.d}
	for _, s := range q.terms {
		for p, rel := range q.d.parents[s] {
			if fn(rel) {
				r.terms = append(r.terms, p)
			}
		}
	}
	return r
}

// In returns a query holding terms reachable from the receiver's terms by
// following one child-ward edge whose relation satisfies fn.
func (q Query) In(fn func(Relation) bool) Query {
	r := Query{d: q.d}
	for _, s := range q.terms {
		for c, rel := range q.d.kids[s] {
			if fn(rel) {
				r.terms = append(r.terms, c)
			}
		}
	}
	return r
}

// And returns a query holding the intersection of q and p.
func (q Query) And(p Query) Query {
	if q.d != p.d {
		panic("ontology: binary query operation parameters from distinct Dags")
	}
	a, b := sortedCopy(q.terms), sortedCopy(p.terms)
	r := Query{d: q.d}
	var i, j int
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case b[j] < a[i]:
			j++
		default:
			r.terms = append(r.terms, a[i])
			i++
			j++
		}
	}
	return r
}

// Or returns a query holding the union of q and p.
func (q Query) Or(p Query) Query {
	if q.d != p.d {
		panic("ontology: binary query operation parameters from distinct Dags")
	}
	a, b := sortedCopy(q.terms), sortedCopy(p.terms)
	r := Query{d: q.d}
	var i, j int
	push := func(v int32) {
		if len(r.terms) == 0 || r.terms[len(r.terms)-1] != v {
			r.terms = append(r.terms, v)
		}
	}
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			push(a[i])
			i++
		case b[j] < a[i]:
			push(b[j])
			j++
		default:
			push(a[i])
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		push(a[i])
	}
	for ; j < len(b); j++ {
		push(b[j])
	}
	return r
}

// Not returns a query holding q less p.
func (q Query) Not(p Query) Query {
	if q.d != p.d {
		panic("ontology: binary query operation parameters from distinct Dags")
	}
	excl := make(map[int32]bool, len(p.terms))
	for _, v := range p.terms {
		excl[v] = true
	}
	r := Query{d: q.d}
	for _, v := range q.terms {
		if !excl[v] {
			r.terms = append(r.terms, v)
		}
	}
	return r
}

// Unique returns a copy of the receiver that holds only one instance of
// each term, sorted ascending.
func (q Query) Unique() Query {
	return Query{d: q.d, terms: sortedCopy(q.terms)}
}

// Result returns the term indices held by the query.
func (q Query) Result() []int32 { return q.terms }

func sortedCopy(s []int32) []int32 {
	out := append([]int32(nil), s...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	uniq := out[:0]
	for i, v := range out {
		if i == 0 || v != out[i-1] {
			uniq = append(uniq, v)
		}
	}
	return uniq
}

// AnyRelation accepts every relation; it is the predicate to pass to Out
// or In to follow the unrestricted closure.
func AnyRelation(Relation) bool { return true }

// Propagating accepts is_a and part_of only.
func Propagating(r Relation) bool { return r.Propagates() }
