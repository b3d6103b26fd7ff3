// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package semsim

import (
	"math"
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
id: GO:0001000
name: parent process
namespace: biological_process
is_a: GO:0008150

[Term]
id: GO:0002000
name: child process
namespace: biological_process
is_a: GO:0001000

[Term]
id: GO:0003000
name: sibling process
namespace: biological_process
is_a: GO:0001000

[Term]
id: GO:0003674
name: molecular function
namespace: molecular_function
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

func term(t *testing.T, d *ontology.Dag, id ontology.ID) int32 {
	t.Helper()
	tm, ok := d.TermByID(id)
	if !ok {
		t.Fatalf("term %s not found", id)
	}
	return tm.Index()
}

func TestResnikSelfSimilarityEqualsIC(t *testing.T) {
	d := mustDag(t)
	counts := map[ontology.ID]int{"GO:0002000": 2, "GO:0003000": 8}
	ic := NewIC(d, counts, false)

	child := term(t, d, "GO:0002000")
	want := ic.Value(child)
	if math.IsNaN(want) {
		t.Fatal("IC(child) is NaN, want a defined value")
	}
	if got := ic.Resnik(child, child); math.Abs(got-want) > 1e-12 {
		t.Errorf("Resnik(child, child) = %v, want IC(child) = %v", got, want)
	}
}

func TestLinSelfSimilarityIsOne(t *testing.T) {
	d := mustDag(t)
	counts := map[ontology.ID]int{"GO:0002000": 2, "GO:0003000": 8}
	ic := NewIC(d, counts, false)
	child := term(t, d, "GO:0002000")
	if got := ic.Lin(child, child); math.Abs(got-1) > 1e-12 {
		t.Errorf("Lin(child, child) = %v, want 1", got)
	}
}

func TestResnikIsSymmetric(t *testing.T) {
	d := mustDag(t)
	counts := map[ontology.ID]int{"GO:0002000": 2, "GO:0003000": 8}
	ic := NewIC(d, counts, false)
	a := term(t, d, "GO:0002000")
	b := term(t, d, "GO:0003000")
	if math.Abs(ic.Resnik(a, b)-ic.Resnik(b, a)) > 1e-12 {
		t.Error("Resnik similarity is not symmetric")
	}
}

func TestResnikSharedParentIsMICA(t *testing.T) {
	d := mustDag(t)
	counts := map[ontology.ID]int{"GO:0002000": 2, "GO:0003000": 8}
	ic := NewIC(d, counts, false)
	a := term(t, d, "GO:0002000")
	b := term(t, d, "GO:0003000")
	parent := term(t, d, "GO:0001000")

	mica, v := ic.MICA(a, b)
	if mica != parent {
		t.Errorf("MICA(child, sibling) = %s, want GO:0001000", d.Term(mica).ID)
	}
	if math.Abs(v-ic.Value(parent)) > 1e-12 {
		t.Errorf("MICA IC value = %v, want IC(parent) = %v", v, ic.Value(parent))
	}
}

func TestCrossNamespaceSimilarityIsNaN(t *testing.T) {
	d := mustDag(t)
	counts := map[ontology.ID]int{"GO:0002000": 2}
	ic := NewIC(d, counts, false)
	a := term(t, d, "GO:0002000")
	mf := term(t, d, "GO:0003674")
	if !math.IsNaN(ic.Resnik(a, mf)) {
		t.Error("Resnik across namespaces should be NaN")
	}
	if !math.IsNaN(WangSimilarity(d, a, mf)) {
		t.Error("Wang across namespaces should be NaN")
	}
}

func TestWangSelfSimilarityIsOne(t *testing.T) {
	d := mustDag(t)
	a := term(t, d, "GO:0002000")
	if got := WangSimilarity(d, a, a); got != 1 {
		t.Errorf("WangSimilarity(a, a) = %v, want 1", got)
	}
}

func TestWangIsSymmetric(t *testing.T) {
	d := mustDag(t)
	a := term(t, d, "GO:0002000")
	b := term(t, d, "GO:0003000")
	if math.Abs(WangSimilarity(d, a, b)-WangSimilarity(d, b, a)) > 1e-12 {
		t.Error("Wang similarity is not symmetric")
	}
}

func TestWangSiblingsMoreSimilarThanDistantRelatives(t *testing.T) {
	d := mustDag(t)
	a := term(t, d, "GO:0002000")
	b := term(t, d, "GO:0003000")
	root, ok := d.Root(ontology.BiologicalProcess)
	if !ok {
		t.Fatal("biological_process root not found")
	}

	siblings := WangSimilarity(d, a, b)
	// a shares only the root with root itself; siblings additionally share
	// their direct parent, so they should score strictly higher.
	distant := WangSimilarity(d, a, root)
	if siblings <= distant {
		t.Errorf("WangSimilarity(siblings) = %v, want > WangSimilarity(child, root) = %v", siblings, distant)
	}
}
