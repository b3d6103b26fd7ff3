// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"strings"
	"testing"
)

// sample is a small, hand-built OBO fragment covering is_a and part_of
// edges plus one obsolete term, rooted at the standard biological_process
// root.
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
is_a: GO:0008150
relationship: part_of GO:0009987

[Term]
id: GO:0006810
name: transport
namespace: biological_process
is_a: GO:0009987

[Term]
id: GO:9999999
name: obsolete term
namespace: biological_process
is_obsolete: true
`

func mustBuild(t *testing.T) *Dag {
	t.Helper()
	raw, err := ParseOBO(strings.NewReader(sample), nil)
	if err != nil {
		t.Fatalf("ParseOBO: %v", err)
	}
	d, err := Build(raw)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return d
}

func TestBuildDropsObsolete(t *testing.T) {
	d := mustBuild(t)
	if _, ok := d.TermByID("GO:9999999"); ok {
		t.Error("obsolete term was retained")
	}
	if d.Len() != 5 {
		t.Errorf("Len() = %d, want 5", d.Len())
	}
}

func TestRoots(t *testing.T) {
	d := mustBuild(t)
	root, ok := d.Root(BiologicalProcess)
	if !ok {
		t.Fatal("biological_process root not found")
	}
	if d.Term(root).ID != RootBiologicalProcess {
		t.Errorf("root term = %s, want %s", d.Term(root).ID, RootBiologicalProcess)
	}
	if _, ok := d.Root(MolecularFunction); ok {
		t.Error("molecular_function root unexpectedly found")
	}
}

func TestAncestorsIncludeTransitivePartOf(t *testing.T) {
	d := mustBuild(t)
	primary, ok := d.TermByID("GO:0044238")
	if !ok {
		t.Fatal("GO:0044238 not found")
	}
	root, _ := d.Root(BiologicalProcess)
	anc := d.Ancestors(primary.Index())
	if !contains(anc, root) {
		t.Errorf("Ancestors(%s) = %v, want to include root %d", primary.ID, anc, root)
	}
	cellular, _ := d.TermByID("GO:0009987")
	if !contains(anc, cellular.Index()) {
		t.Errorf("Ancestors(%s) = %v, want to include GO:0009987 via part_of", primary.ID, anc)
	}
}

func TestPropagatingAncestorsIncludeIsAParent(t *testing.T) {
	d := mustBuild(t)
	transport, ok := d.TermByID("GO:0006810")
	if !ok {
		t.Fatal("GO:0006810 not found")
	}
	cellular, _ := d.TermByID("GO:0009987")
	anc := d.PropagatingAncestors(transport.Index())
	if !contains(anc, cellular.Index()) {
		t.Errorf("PropagatingAncestors(%s) = %v, want to include GO:0009987", transport.ID, anc)
	}
}

func TestDescendantsIsInverseOfAncestors(t *testing.T) {
	d := mustBuild(t)
	root, _ := d.Root(BiologicalProcess)
	for i := int32(0); i < int32(d.Len()); i++ {
		if i == root {
			continue
		}
		if !contains(d.Ancestors(i), root) {
			continue
		}
		if !contains(d.Descendants(root), i) {
			t.Errorf("term %d is an ancestor-descendant of root but not listed in Descendants(root)", i)
		}
	}
}

func TestLeavesFirstOrdersChildBeforeParent(t *testing.T) {
	d := mustBuild(t)
	pos := make(map[int32]int)
	for i, v := range d.LeavesFirst() {
		pos[v] = i
	}
	for child := int32(0); child < int32(d.Len()); child++ {
		for parent := range d.Parents(child) {
			if pos[child] >= pos[parent] {
				t.Errorf("leaves-first order places child %d at or after parent %d", child, parent)
			}
		}
	}
}

func TestDepthOfRootIsZero(t *testing.T) {
	d := mustBuild(t)
	root, _ := d.Root(BiologicalProcess)
	if d.Depth(root) != 0 {
		t.Errorf("Depth(root) = %d, want 0", d.Depth(root))
	}
	transport, _ := d.TermByID("GO:0006810")
	if d.Depth(transport.Index()) != 2 {
		t.Errorf("Depth(GO:0006810) = %d, want 2", d.Depth(transport.Index()))
	}
}

func TestClosestCommonAncestor(t *testing.T) {
	d := mustBuild(t)
	transport, _ := d.TermByID("GO:0006810")
	primary, _ := d.TermByID("GO:0044238")
	cellular, _ := d.TermByID("GO:0009987")

	cca, ok := d.ClosestCommonAncestor(transport.Index(), primary.Index())
	if !ok {
		t.Fatal("no common ancestor found")
	}
	if cca != cellular.Index() {
		t.Errorf("ClosestCommonAncestor(transport, primary) = %s, want GO:0009987", d.Term(cca).ID)
	}
}

func TestIsDescendantOf(t *testing.T) {
	d := mustBuild(t)
	transport, _ := d.TermByID("GO:0006810")
	cellular, _ := d.TermByID("GO:0009987")

	yes, depth := d.IsDescendantOf(transport.Index(), cellular.Index())
	if !yes || depth != 1 {
		t.Errorf("IsDescendantOf(transport, cellular) = (%t, %d), want (true, 1)", yes, depth)
	}

	yes, _ = d.IsDescendantOf(cellular.Index(), transport.Index())
	if yes {
		t.Error("cellular process incorrectly reported as descendant of transport")
	}
}
