package ontology

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"

	"github.com/taxago/goea/goerr"
)

var (
	relationLineRe    = regexp.MustCompile(`^relationship:\s+(\w+)\s+(GO:\d{7})`)
	intersectionLine  = regexp.MustCompile(`^intersection_of:\s+(\w+)\s+(GO:\d{7})`)
)

var relationNames = map[string]Relation{
	"part_of":               PartOf,
	"occurs_in":             OccursIn,
	"regulates":             Regulates,
	"positively_regulates":  PositivelyRegulates,
	"negatively_regulates":  NegativelyRegulates,
}

// rawTerm is the OBO stanza as parsed, before obsolescence filtering and
// before parent IDs are resolved into a Dag's dense index space.
type rawTerm struct {
	id         ID
	name       string
	namespace  Namespace
	def        string
	isObsolete bool
	// parents maps a parent term ID to the relation by which this term
	// reaches it.
	parents map[ID]Relation
}

// ParseOBO reads an OBO-format file from r and returns every non-obsolete
// [Term] stanza found, keyed by ID; stanzas marked is_obsolete: true are
// omitted. Unrecognized stanza types are skipped.
// Unrecognized relationship types within a [Term] stanza are ignored
// with a warning written to warn (if warn is nil, warnings are
// discarded).
func ParseOBO(r io.Reader, warn io.Writer) (map[ID]*rawTerm, error) {
	if warn == nil {
		warn = io.Discard
	}
	logger := log.New(warn, "", 0)

	terms := make(map[ID]*rawTerm)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var (
		inTerm  bool
		current *rawTerm
	)
	flush := func() {
		if inTerm && current != nil && current.id != "" && !current.isObsolete {
			terms[current.id] = current
		}
	}

	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "[Term]":
			flush()
			inTerm = true
			current = &rawTerm{namespace: BiologicalProcess, parents: make(map[ID]Relation)}
		case line == "" || strings.HasPrefix(line, "[") && line != "[Term]":
			flush()
			inTerm = false
			current = nil
		case inTerm:
			parseOBOLine(current, line, logger)
		}
	}
	flush()
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%w: ontology: reading OBO stream: %w", goerr.ErrParseError, err)
	}
	return terms, nil
}

func parseOBOLine(t *rawTerm, line string, logger *log.Logger) {
	switch {
	case strings.HasPrefix(line, "id: "):
		t.id = ID(strings.TrimSpace(strings.TrimPrefix(line, "id: ")))
	case strings.HasPrefix(line, "name: "):
		t.name = strings.TrimSpace(strings.TrimPrefix(line, "name: "))
	case strings.HasPrefix(line, "namespace: "):
		switch strings.TrimSpace(strings.TrimPrefix(line, "namespace: ")) {
		case "biological_process":
			t.namespace = BiologicalProcess
		case "molecular_function":
			t.namespace = MolecularFunction
		case "cellular_component":
			t.namespace = CellularComponent
		default:
			logger.Printf("ontology: term %s: unrecognized namespace, defaulting to biological_process", t.id)
		}
	case strings.HasPrefix(line, "def: "):
		if i, j := strings.Index(line, `"`), strings.LastIndex(line, `"`); i >= 0 && j > i {
			t.def = line[i+1 : j]
		}
	case strings.HasPrefix(line, "is_obsolete: "):
		t.isObsolete = strings.TrimSpace(strings.TrimPrefix(line, "is_obsolete: ")) == "true"
	case strings.HasPrefix(line, "is_a: "):
		rest := strings.TrimPrefix(line, "is_a: ")
		if id := firstGOID(rest); id != "" {
			t.parents[id] = IsA
		}
	case strings.HasPrefix(line, "relationship: "):
		if m := relationLineRe.FindStringSubmatch(line); m != nil {
			if rel, ok := relationNames[m[1]]; ok {
				t.parents[ID(m[2])] = rel
			} else {
				logger.Printf("ontology: term %s: unrecognized relationship type %q ignored", t.id, m[1])
			}
		}
	case strings.HasPrefix(line, "intersection_of: "):
		if m := intersectionLine.FindStringSubmatch(line); m != nil {
			if rel, ok := relationNames[m[1]]; ok {
				t.parents[ID(m[2])] = rel
			}
		}
	}
}

func firstGOID(s string) ID {
	i := strings.Index(s, "GO:")
	if i < 0 {
		return ""
	}
	s = s[i:]
	if len(s) < 10 {
		return ""
	}
	return ID(s[:10])
}
