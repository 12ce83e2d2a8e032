package csr

import "fmt"

// Verify checks the structural invariants of the graph and returns the first
// violation found, wrapped with row context. A nil return means the graph is
// safe to publish.
//
// Always checked:
//  1. RowOffsets starts at 0, ends at NNZ, and never decreases.
//  2. Every ColIndices entry lies in [0, NodeCount) and is not a self-loop.
//  3. Every row is sorted ascending (EdgeIndex relies on this).
//
// Opt-in (VerifyOptions):
//  4. No duplicate column within a row.
//  5. Every entry (u,v) has its mirror (v,u).
//  6. No negative edge weight.
//
// Complexity: O(V + E) for 1–4 and 6; symmetry adds O(E·log d_max).
func (g *Graph) Verify(opts VerifyOptions) error {
	if g == nil {
		return ErrNilGraph
	}
	n := int32(g.nodeCount)
	nnz := int32(g.NNZ())

	// 1) Offset endpoints and monotonicity.
	if g.RowOffsets[0] != 0 || g.RowOffsets[n] != nnz {
		return fmt.Errorf("Verify: offsets [%d..%d] want [0..%d]: %w",
			g.RowOffsets[0], g.RowOffsets[n], nnz, ErrOffsetsNotMonotonic)
	}
	for i := int32(0); i < n; i++ {
		if g.RowOffsets[i] > g.RowOffsets[i+1] {
			return fmt.Errorf("Verify: row %d: offset %d > %d: %w",
				i, g.RowOffsets[i], g.RowOffsets[i+1], ErrOffsetsNotMonotonic)
		}
	}

	// 2+3+4) Per-row scan: range, loop, order, duplicates.
	for i := int32(0); i < n; i++ {
		prev := int32(-1)
		for e := g.RowOffsets[i]; e < g.RowOffsets[i+1]; e++ {
			c := g.ColIndices[e]
			if c < 0 || c >= n {
				return fmt.Errorf("Verify: row %d slot %d: col %d: %w", i, e, c, ErrColumnOutOfRange)
			}
			if c == i {
				return fmt.Errorf("Verify: row %d slot %d: %w", i, e, ErrSelfLoop)
			}
			if c < prev {
				return fmt.Errorf("Verify: row %d slot %d: col %d after %d: %w", i, e, c, prev, ErrRowNotSorted)
			}
			if opts.CheckDuplicates && c == prev {
				return fmt.Errorf("Verify: row %d slot %d: col %d: %w", i, e, c, ErrDuplicateColumn)
			}
			prev = c
		}
	}

	// 5) Symmetry: each (u,v) needs a (v,u).
	if opts.CheckSymmetry {
		for u := int32(0); u < n; u++ {
			for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
				if v := g.ColIndices[e]; !g.EdgeExists(v, u) {
					return fmt.Errorf("Verify: entry (%d,%d) has no mirror: %w", u, v, ErrAsymmetric)
				}
			}
		}
	}

	// 6) Weight domain.
	if opts.CheckWeights {
		for e, w := range g.EdgeWeights {
			if w < 0 {
				return fmt.Errorf("Verify: slot %d: weight %g: %w", e, w, ErrNegativeWeight)
			}
		}
	}

	return nil
}
