// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ancestor

import (
	"strings"
	"testing"

	"github.com/taxago/goea/ontology"
)

const sample = `
[Term]
id: GO:0008150
name: biological process
namespace: biological_process

[Term]
id: GO:0009987
name: cellular process
namespace: biological_process
is_a: GO:0008150

[Term]
id: GO:0006807
name: nitrogen compound metabolic process
namespace: biological_process
is_a: GO:0008150

[Term]
id: GO:0044238
name: primary metabolic process
namespace: biological_process
is_a: GO:0009987
is_a: GO:0006807

[Term]
id: GO:0006810
name: transport
namespace: biological_process
is_a: GO:0009987
`

func mustDag(t *testing.T) *ontology.Dag {
	t.Helper()
	raw, err := ontology.ParseOBO(strings.NewReader(sample), nil)
	if err != nil {
		t.Fatalf("ParseOBO: %v", err)
	}
	d, err := ontology.Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func idx(t *testing.T, d *ontology.Dag, id ontology.ID) int32 {
	t.Helper()
	term, ok := d.TermByID(id)
	if !ok {
		t.Fatalf("term %s not found", id)
	}
	return term.Index()
}

func TestExtractSingleTermIsJustItself(t *testing.T) {
	d := mustDag(t)
	root, _ := d.Root(ontology.BiologicalProcess)
	sub := Extract(d, []int32{root})
	if len(sub.Nodes) != 1 || sub.Nodes[0] != root {
		t.Errorf("Extract({root}) nodes = %v, want [%d]", sub.Nodes, root)
	}
	if len(sub.Edges) != 0 {
		t.Errorf("Extract({root}) edges = %v, want none", sub.Edges)
	}
}

func TestExtractIncludesSharedAncestorAndBothInputs(t *testing.T) {
	d := mustDag(t)
	primary := idx(t, d, "GO:0044238")
	transport := idx(t, d, "GO:0006810")
	cellular := idx(t, d, "GO:0009987")
	root, _ := d.Root(ontology.BiologicalProcess)

	sub := Extract(d, []int32{primary, transport})

	want := map[int32]bool{primary: true, transport: true, cellular: true, root: true}
	if len(sub.Nodes) != len(want) {
		t.Fatalf("Extract nodes = %v, want %d nodes", sub.Nodes, len(want))
	}
	for _, n := range sub.Nodes {
		if !want[n] {
			t.Errorf("unexpected node %s in sub-DAG", d.Term(n).ID)
		}
	}

	// GO:0006807 is an ancestor of primary but not of transport, so it
	// must not appear even though it is an ancestor of one of the inputs.
	nitrogen := idx(t, d, "GO:0006807")
	for _, n := range sub.Nodes {
		if n == nitrogen {
			t.Error("GO:0006807 included despite not being a common ancestor")
		}
	}
}

func TestFirstCommonAncestorIsClosestNotRoot(t *testing.T) {
	d := mustDag(t)
	primary := idx(t, d, "GO:0044238")
	transport := idx(t, d, "GO:0006810")
	cellular := idx(t, d, "GO:0009987")

	first := FirstCommonAncestors(d, []int32{primary, transport})
	if len(first) != 1 || first[0] != cellular {
		t.Errorf("FirstCommonAncestors = %v, want [%s]", first, d.Term(cellular).ID)
	}
}

func TestExtractEdgesPreserveRelationAndAreInducedOnly(t *testing.T) {
	d := mustDag(t)
	primary := idx(t, d, "GO:0044238")
	transport := idx(t, d, "GO:0006810")

	sub := Extract(d, []int32{primary, transport})
	found := false
	for _, e := range sub.Edges {
		if e.From == primary {
			found = true
			if e.Relation != ontology.IsA {
				t.Errorf("edge from primary has relation %v, want IsA", e.Relation)
			}
		}
	}
	if !found {
		t.Error("expected at least one edge originating from the primary metabolic process term")
	}
}
