package rewire

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/proposal"
)

// Compactor is the stream-compaction collaborator contract: turn the old CSR
// plus deletion flags and accepted additions into a freshly built CSR whose
// row lengths equal the recomputed final degrees.
//
// Implementations must produce conflict-free scatters (each surviving or
// added entry lands in a slot uniquely determined by a per-node write
// counter) and stamp the result with the predecessor's version + 1.
type Compactor interface {
	CompactTopology(ctx context.Context, g *csr.Graph, flags []bool, additions []proposal.EdgeProposal) (*csr.Graph, error)
}

// PrefixSumCompactor is the reference Compactor: exclusive prefix sum over
// final degrees for the new row offsets, atomic per-node write counters for
// the scatter, then a per-row sort to restore the column-order invariant.
type PrefixSumCompactor struct {
	// Shards caps scatter fan-out; 0 means runtime.GOMAXPROCS(0).
	Shards int
}

// CompactTopology implements Compactor.
// Complexity: O(V + E + A) scatter plus O(E·log d_max) row sorting.
func (c *PrefixSumCompactor) CompactTopology(ctx context.Context, g *csr.Graph, flags []bool, additions []proposal.EdgeProposal) (*csr.Graph, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	n := g.NodeCount()

	// Exclusive prefix sum over the recomputed degrees.
	degrees := FinalDegrees(g, flags, additions)
	rowOffsets := make([]int32, n+1)
	for i := 0; i < n; i++ {
		rowOffsets[i+1] = rowOffsets[i] + degrees[i]
	}
	nnz := int(rowOffsets[n])

	colIndices := make([]int32, nnz)
	weights := make([]float64, nnz)
	cursor := make([]int32, n)

	// claim allocates the next slot of node u's new row.
	claim := func(u int32) int32 {
		return rowOffsets[u] + atomic.AddInt32(&cursor[u], 1) - 1
	}

	shards := c.Shards
	if shards == 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	if shards > n {
		shards = n
	}
	if shards < 1 {
		shards = 1
	}

	// Scatter survivors: each shard walks its rows' stored slots.
	grp, gctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		shard := int32(s)
		grp.Go(func() error {
			for u := shard; u < int32(n); u += int32(shards) {
				if err := gctx.Err(); err != nil {
					return err
				}
				for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
					if flags[e] {
						continue
					}
					slot := claim(u)
					colIndices[slot] = g.ColIndices[e]
					weights[slot] = g.EdgeWeights[e]
				}
			}

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	// Scatter additions: both directions of each accepted pair.
	for _, p := range additions {
		if !p.IsAddition {
			continue
		}
		slot := claim(p.NodeA)
		colIndices[slot] = p.NodeB
		weights[slot] = p.Weight
		slot = claim(p.NodeB)
		colIndices[slot] = p.NodeA
		weights[slot] = p.Weight
	}

	// Restore per-row column order (the scatter is order-free).
	grp, gctx = errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		shard := s
		grp.Go(func() error {
			for u := shard; u < n; u += shards {
				if err := gctx.Err(); err != nil {
					return err
				}
				lo, hi := rowOffsets[u], rowOffsets[u+1]
				sort.Sort(&rowSorter{cols: colIndices[lo:hi], weights: weights[lo:hi]})
			}

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	potential := append([]float64(nil), g.NodePotential...)

	return csr.New(rowOffsets, colIndices, weights, potential, csr.WithVersion(g.Version()+1))
}

// rowSorter co-sorts one row's columns and weights by column.
type rowSorter struct {
	cols    []int32
	weights []float64
}

func (r *rowSorter) Len() int           { return len(r.cols) }
func (r *rowSorter) Less(i, j int) bool { return r.cols[i] < r.cols[j] }
func (r *rowSorter) Swap(i, j int) {
	r.cols[i], r.cols[j] = r.cols[j], r.cols[i]
	r.weights[i], r.weights[j] = r.weights[j], r.weights[i]
}
