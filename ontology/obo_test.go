// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ontology

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseOBOFields(t *testing.T) {
	const doc = `format-version: 1.2

[Term]
id: GO:0000001
name: mitochondrion inheritance
namespace: biological_process
def: "The distribution of mitochondria." [GOC:mcc]
is_a: GO:0048308
is_a: GO:0048311

[Term]
id: GO:0048308
name: organelle inheritance
namespace: biological_process

[Term]
id: GO:0048311
name: mitochondrion distribution
namespace: biological_process

[Typedef]
id: part_of
name: part of
`
	terms, err := ParseOBO(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("ParseOBO: %v", err)
	}
	if len(terms) != 3 {
		t.Fatalf("got %d terms, want 3", len(terms))
	}
	got := terms["GO:0000001"]
	if got == nil {
		t.Fatal("GO:0000001 missing")
	}
	if got.name != "mitochondrion inheritance" {
		t.Errorf("name = %q", got.name)
	}
	if got.def != "The distribution of mitochondria." {
		t.Errorf("def = %q", got.def)
	}
	if len(got.parents) != 2 {
		t.Errorf("parents = %v, want 2 entries", got.parents)
	}
	if got.parents["GO:0048308"] != IsA {
		t.Errorf("GO:0048308 relation = %v, want IsA", got.parents["GO:0048308"])
	}
}

func TestParseOBODropsObsolete(t *testing.T) {
	const doc = `[Term]
id: GO:0000002
name: obsolete thing
namespace: biological_process
is_obsolete: true
`
	terms, err := ParseOBO(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("ParseOBO: %v", err)
	}
	if len(terms) != 0 {
		t.Errorf("got %d terms, want 0 obsolete terms retained", len(terms))
	}
}

func TestParseOBOWarnsOnUnknownRelationship(t *testing.T) {
	const doc = `[Term]
id: GO:0000003
name: something
namespace: biological_process
relationship: made_of GO:0000004

[Term]
id: GO:0000004
name: something else
namespace: biological_process
`
	var warn bytes.Buffer
	terms, err := ParseOBO(strings.NewReader(doc), &warn)
	if err != nil {
		t.Fatalf("ParseOBO: %v", err)
	}
	if len(terms["GO:0000003"].parents) != 0 {
		t.Errorf("unrecognized relationship was recorded: %v", terms["GO:0000003"].parents)
	}
	if !strings.Contains(warn.String(), "made_of") {
		t.Errorf("warning output = %q, want mention of made_of", warn.String())
	}
}
