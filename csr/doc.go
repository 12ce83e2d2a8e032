// Package csr provides the compressed-sparse-row topology container used by
// the rewiring pipeline, together with its structural verifier.
//
// A Graph is immutable between rebuilds: the orchestrator replaces the live
// instance wholesale on every successful rebuild and never mutates row
// structure in place. Undirected lattices are stored symmetrically (every
// edge {u,v} appears once in row u and once in row v), so NNZ() is twice
// EdgeCount().
//
// Layout:
//
//	RowOffsets[i] .. RowOffsets[i+1]  → the slice of ColIndices/EdgeWeights
//	                                     belonging to row i, sorted ascending.
//
// Verify is the correctness gate run on every freshly compacted graph before
// it is published; a failed verification aborts the rebuild and the previous
// topology stays live.
package csr
