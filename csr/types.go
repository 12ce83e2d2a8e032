// Package csr: sentinel errors and verification options.
package csr

import "errors"

// Sentinel errors for CSR construction and verification.
var (
	// ErrNilGraph indicates a nil *Graph was passed where a graph is required.
	ErrNilGraph = errors.New("csr: graph is nil")

	// ErrBadShape indicates array lengths that cannot form a valid CSR
	// (wrong RowOffsets length, ColIndices/EdgeWeights length mismatch, ...).
	ErrBadShape = errors.New("csr: invalid array shape")

	// ErrOffsetsNotMonotonic indicates RowOffsets decreases somewhere, or its
	// endpoints disagree with 0 / NNZ.
	ErrOffsetsNotMonotonic = errors.New("csr: row offsets not monotonic")

	// ErrColumnOutOfRange indicates a ColIndices entry outside [0, NodeCount).
	ErrColumnOutOfRange = errors.New("csr: column index out of range")

	// ErrRowNotSorted indicates a row whose column indices are not ascending.
	ErrRowNotSorted = errors.New("csr: row columns not sorted")

	// ErrDuplicateColumn indicates the same column appears twice in one row.
	ErrDuplicateColumn = errors.New("csr: duplicate column within row")

	// ErrSelfLoop indicates a diagonal entry; the lattice forbids self-loops.
	ErrSelfLoop = errors.New("csr: self-loop entry")

	// ErrAsymmetric indicates an entry (u,v) without its mirror (v,u) in a
	// graph declared symmetric.
	ErrAsymmetric = errors.New("csr: missing mirror entry")

	// ErrNegativeWeight indicates an edge weight below zero.
	ErrNegativeWeight = errors.New("csr: negative edge weight")
)

// VerifyOptions controls how strict Verify is.
//
// The cheap checks (offset monotonicity, column range, row order) always run;
// they are the hard publication gate. The remaining checks cost extra passes
// and are reserved for scientific-validation runs.
type VerifyOptions struct {
	// CheckDuplicates rejects rows containing the same column twice.
	CheckDuplicates bool
	// CheckSymmetry rejects entries whose mirror is absent.
	CheckSymmetry bool
	// CheckWeights rejects negative edge weights.
	CheckWeights bool
}

// DefaultVerifyOptions returns the per-rebuild gate configuration:
// structural checks only, no extra passes.
func DefaultVerifyOptions() VerifyOptions {
	return VerifyOptions{}
}

// StrictVerifyOptions returns the scientific-validation configuration with
// every check enabled.
func StrictVerifyOptions() VerifyOptions {
	return VerifyOptions{CheckDuplicates: true, CheckSymmetry: true, CheckWeights: true}
}
