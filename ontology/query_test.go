// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import "testing"

func TestQueryOutAndUnique(t *testing.T) {
	d := mustBuild(t)
	transport, _ := d.TermByID("GO:0006810")
	primary, _ := d.TermByID("GO:0044238")

	parents := d.Query(transport.Index(), primary.Index()).Out(AnyRelation).Unique()
	cellular, _ := d.TermByID("GO:0009987")
	root, _ := d.Root(BiologicalProcess)

	found := map[int32]bool{}
	for _, v := range parents.Result() {
		found[v] = true
	}
	if !found[cellular.Index()] {
		t.Errorf("Out(AnyRelation) missing GO:0009987: %v", parents.Result())
	}
	if !found[root] {
		t.Errorf("Out(AnyRelation) missing root: %v", parents.Result())
	}
}

func TestQueryAndOrNot(t *testing.T) {
	d := mustBuild(t)
	root, _ := d.Root(BiologicalProcess)
	cellular, _ := d.TermByID("GO:0009987")
	nitrogen, _ := d.TermByID("GO:0006807")

	a := d.Query(root, cellular.Index())
	b := d.Query(cellular.Index(), nitrogen.Index())

	and := a.And(b).Result()
	if len(and) != 1 || and[0] != cellular.Index() {
		t.Errorf("And = %v, want [%d]", and, cellular.Index())
	}

	or := a.Or(b).Unique().Result()
	if len(or) != 3 {
		t.Errorf("Or = %v, want 3 unique terms", or)
	}

	not := a.Not(b).Result()
	if len(not) != 1 || not[0] != root {
		t.Errorf("Not = %v, want [%d]", not, root)
	}
}
