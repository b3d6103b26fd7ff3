// Package goerr defines the sentinel error kinds every fallible operation
// in this module classifies its failures into, so that callers can branch
// on failure class with errors.Is instead of parsing message text.
package goerr

import "errors"

var (
	// ErrInputMissing is wrapped when a required file or directory does
	// not exist.
	ErrInputMissing = errors.New("goea: required input is missing")

	// ErrParseError is wrapped when an input file exists but its
	// contents do not conform to the expected format (OBO, CSV, TSV or
	// FASTA).
	ErrParseError = errors.New("goea: malformed input")

	// ErrInconsistentInput is wrapped when two well-formed inputs
	// disagree with each other, such as a study taxon with no matching
	// background, or a VCV matrix missing a taxon named in the lineage.
	ErrInconsistentInput = errors.New("goea: inconsistent input")

	// ErrNumericFailure is wrapped when a computation cannot produce a
	// result for numeric reasons, such as a singular covariance matrix
	// during the Paule-Mandel fit or a degenerate contingency table.
	ErrNumericFailure = errors.New("goea: numeric computation failed")

	// ErrConfigError is wrapped when a configuration value is invalid,
	// whether supplied on the command line or set directly on a
	// [github.com/taxago/goea/pipeline.Config].
	ErrConfigError = errors.New("goea: invalid configuration")
)
