// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package annotation

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/taxago/goea/ontology"
)

func TestCategoryForCode(t *testing.T) {
	cases := map[string]Category{
		"EXP": Experimental, "IDA": Experimental, "HEP": Experimental,
		"IBA": Phylogenetic, "IRD": Phylogenetic,
		"ISS": Computational, "RCA": Computational,
		"TAS": Author, "NAS": Author,
		"IC": Curator, "ND": Curator,
		"IEA": Electronic,
	}
	for code, want := range cases {
		got, err := CategoryForCode(code)
		if err != nil {
			t.Errorf("CategoryForCode(%q): %v", code, err)
			continue
		}
		if got != want {
			t.Errorf("CategoryForCode(%q) = %v, want %v", code, got, want)
		}
	}
	if _, err := CategoryForCode("XYZ"); err == nil {
		t.Error("CategoryForCode(\"XYZ\") returned nil error, want error")
	}
}

func TestParseCategoriesAll(t *testing.T) {
	cats, err := ParseCategories("all")
	if err != nil {
		t.Fatalf("ParseCategories: %v", err)
	}
	if len(cats) != len(AllCategories) {
		t.Errorf("ParseCategories(\"all\") = %v, want %v", cats, AllCategories)
	}
}

func TestParseCategoriesSubset(t *testing.T) {
	cats, err := ParseCategories("experimental, computational")
	if err != nil {
		t.Fatalf("ParseCategories: %v", err)
	}
	if len(cats) != 2 || !containsCategory(cats, Experimental) || !containsCategory(cats, Computational) {
		t.Errorf("ParseCategories = %v", cats)
	}
}

func TestParseCategoriesRejectsUnknown(t *testing.T) {
	if _, err := ParseCategories("bogus"); err == nil {
		t.Error("ParseCategories(\"bogus\") returned nil error, want error")
	}
}

func writeFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestReadBackgroundAndStudy(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "9606_background.txt", strings.Join([]string{
		"P1\tGO:0008150\tEXP",
		"P2\tGO:0008150\tIEA",
		"P3\tGO:0009987\tEXP",
		"P4\tGO:0009987\tISS",
	}, "\n")+"\n")

	bg, err := ReadBackground(dir, []TaxonID{9606}, []Category{Experimental}, 2)
	if err != nil {
		t.Fatalf("ReadBackground: %v", err)
	}
	tb, ok := bg.Taxa[9606]
	if !ok {
		t.Fatal("taxon 9606 missing from background")
	}
	if got := tb.TermProteins[ontology.ID("GO:0008150")]; len(got) != 1 {
		t.Errorf("GO:0008150 background proteins = %v, want 1 (only EXP-evidenced P1)", got)
	}

	studyCSV := writeFile(t, dir, "study.csv", "9606\nP1\nP3\n")
	study, err := ReadStudy(studyCSV, bg)
	if err != nil {
		t.Fatalf("ReadStudy: %v", err)
	}
	ts, ok := study.Taxa[9606]
	if !ok {
		t.Fatal("taxon 9606 missing from study")
	}
	if len(ts.Proteins) != 2 {
		t.Errorf("study proteins = %v, want 2", ts.Proteins)
	}
	if got := ts.TermProteins[ontology.ID("GO:0008150")]; len(got) != 1 {
		t.Errorf("GO:0008150 study proteins = %v, want 1", got)
	}
	if got := ts.TermProteins[ontology.ID("GO:0009987")]; len(got) != 1 {
		t.Errorf("GO:0009987 study proteins = %v, want 1 (only EXP-evidenced P3 kept in background)", got)
	}
}

func TestFilterByStudyPopulationDropsUnstudiedTerms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "9606_background.txt", "P1\tGO:0008150\tEXP\nP2\tGO:0009987\tEXP\n")
	bg, err := ReadBackground(dir, []TaxonID{9606}, AllCategories, 1)
	if err != nil {
		t.Fatalf("ReadBackground: %v", err)
	}
	studyCSV := writeFile(t, dir, "study.csv", "9606\nP1\n")
	study, err := ReadStudy(studyCSV, bg)
	if err != nil {
		t.Fatalf("ReadStudy: %v", err)
	}
	bg.FilterByStudyPopulation(study)
	if _, ok := bg.Taxa[9606].TermProteins[ontology.ID("GO:0009987")]; ok {
		t.Error("GO:0009987 should have been dropped, not present in study set")
	}
	if _, ok := bg.Taxa[9606].TermProteins[ontology.ID("GO:0008150")]; !ok {
		t.Error("GO:0008150 should have been retained")
	}
}

func TestStudyFilterByThresholdDropsSparseTerms(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "9606_background.txt", strings.Join([]string{
		"P1\tGO:0008150\tEXP",
		"P2\tGO:0008150\tEXP",
		"P3\tGO:0009987\tEXP",
	}, "\n")+"\n")
	bg, err := ReadBackground(dir, []TaxonID{9606}, AllCategories, 1)
	if err != nil {
		t.Fatalf("ReadBackground: %v", err)
	}
	studyCSV := writeFile(t, dir, "study.csv", "9606\nP1\nP2\nP3\n")
	study, err := ReadStudy(studyCSV, bg)
	if err != nil {
		t.Fatalf("ReadStudy: %v", err)
	}

	study.FilterByThreshold(1)
	ts := study.Taxa[9606]
	if _, ok := ts.TermProteins[ontology.ID("GO:0009987")]; ok {
		t.Error("GO:0009987 has only 1 study protein, should have been dropped at threshold 1")
	}
	if _, ok := ts.TermProteins[ontology.ID("GO:0008150")]; !ok {
		t.Error("GO:0008150 has 2 study proteins, should have been retained at threshold 1")
	}
}
