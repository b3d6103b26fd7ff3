package meta

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/taxago/goea/annotation"
	"github.com/taxago/goea/goerr"
	"gonum.org/v1/gonum/mat"
)

// VCV is a phylogenetic variance-covariance matrix read from a CSV whose
// first column ("taxa") and header name the same set of taxon IDs, in the
// same order, so the matrix is square and symmetric over that taxon set.
type VCV struct {
	taxa  []annotation.TaxonID
	index map[annotation.TaxonID]int
	m     *mat.SymDense
}

// ReadVCV parses a VCV CSV: header "taxa,<id>,<id>,...", one row per
// taxon with that taxon's covariances against every column. It is an
// error for the matrix not to be symmetric (within a small tolerance).
func ReadVCV(r io.Reader) (*VCV, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: meta: reading VCV header: %w", goerr.ErrParseError, err)
	}
	if len(header) < 2 || header[0] != "taxa" {
		return nil, fmt.Errorf("%w: meta: VCV header must start with \"taxa\"", goerr.ErrParseError)
	}
	cols := make([]annotation.TaxonID, len(header)-1)
	for i, h := range header[1:] {
		id, err := strconv.ParseUint(h, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: meta: VCV column %q is not a taxon ID: %w", goerr.ErrParseError, h, err)
		}
		cols[i] = annotation.TaxonID(id)
	}

	n := len(cols)
	raw := make([]float64, n*n)
	rows := make([]annotation.TaxonID, 0, n)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: meta: reading VCV row: %w", goerr.ErrParseError, err)
		}
		if len(rec) != n+1 {
			return nil, fmt.Errorf("%w: meta: VCV row for taxon %s has %d values, want %d", goerr.ErrParseError, rec[0], len(rec)-1, n)
		}
		id, err := strconv.ParseUint(rec[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: meta: VCV row label %q is not a taxon ID: %w", goerr.ErrParseError, rec[0], err)
		}
		taxon := annotation.TaxonID(id)
		row := len(rows)
		if row >= n {
			return nil, fmt.Errorf("%w: meta: VCV has more rows than columns", goerr.ErrParseError)
		}
		if taxon != cols[row] {
			return nil, fmt.Errorf("%w: meta: VCV row %d is taxon %d, want %d to match the header order", goerr.ErrParseError, row, taxon, cols[row])
		}
		for i, v := range rec[1:] {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("%w: meta: VCV value %q for taxon %d: %w", goerr.ErrParseError, v, taxon, err)
			}
			raw[row*n+i] = f
		}
		rows = append(rows, taxon)
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%w: meta: VCV has %d rows, want %d to match its header", goerr.ErrParseError, len(rows), n)
	}

	const symTol = 1e-6
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if d := raw[i*n+j] - raw[j*n+i]; d < -symTol || d > symTol {
				return nil, fmt.Errorf("%w: meta: VCV is not symmetric at (%d,%d)", goerr.ErrParseError, i, j)
			}
		}
	}

	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := (raw[i*n+j] + raw[j*n+i]) / 2
			sym.SetSym(i, j, v)
		}
	}

	index := make(map[annotation.TaxonID]int, n)
	for i, t := range cols {
		index[t] = i
	}
	return &VCV{taxa: cols, index: index, m: sym}, nil
}

// Has reports whether taxon appears in the VCV.
func (v *VCV) Has(taxon annotation.TaxonID) bool {
	_, ok := v.index[taxon]
	return ok
}

// Submatrix extracts the rows/columns of v restricted to taxa, in the
// given order, and scales the result to correlation form (unit
// diagonal). It is an error for any taxon not to appear in v, or for any
// diagonal entry used in the scaling to be non-positive.
func (v *VCV) Submatrix(taxa []annotation.TaxonID) (*mat.SymDense, error) {
	n := len(taxa)
	idx := make([]int, n)
	for i, t := range taxa {
		j, ok := v.index[t]
		if !ok {
			return nil, fmt.Errorf("%w: meta: taxon %d not present in VCV matrix", goerr.ErrInconsistentInput, t)
		}
		idx[i] = j
	}

	scale := make([]float64, n)
	for i, j := range idx {
		d := v.m.At(j, j)
		if d <= 0 {
			return nil, fmt.Errorf("%w: meta: VCV diagonal for taxon %d is non-positive", goerr.ErrNumericFailure, taxa[i])
		}
		scale[i] = 1 / math.Sqrt(d)
	}

	out := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			out.SetSym(i, j, v.m.At(idx[i], idx[j])*scale[i]*scale[j])
		}
	}
	return out, nil
}
