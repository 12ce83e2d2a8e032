package csr

// Graph is the compressed-sparse-row topology of the lattice plus its
// per-node scalar field. Instances are immutable between rebuilds: only the
// orchestrator replaces the live graph, and readers must not hold a reference
// across a swap.
//
// Index arrays are int32 to match the device-resident layout the pipeline
// mirrors; NodeCount is therefore bounded by MaxInt32.
type Graph struct {
	// RowOffsets has NodeCount+1 entries; RowOffsets[0]=0 and
	// RowOffsets[NodeCount]=NNZ. Row i occupies [RowOffsets[i], RowOffsets[i+1]).
	RowOffsets []int32

	// ColIndices holds the destination node of each edge slot, sorted
	// ascending within each row.
	ColIndices []int32

	// EdgeWeights holds the coupling strength of each edge slot, ≥ 0.
	EdgeWeights []float64

	// NodePotential is the per-node scalar field carried alongside the
	// topology (same length as the node count).
	NodePotential []float64

	nodeCount int
	version   uint64
}

// Option configures a Graph at construction time.
type Option func(*Graph)

// WithVersion sets the structural-generation counter of the new graph.
// Rebuilds pass the predecessor's version + 1.
func WithVersion(v uint64) Option {
	return func(g *Graph) { g.version = v }
}

// New builds a Graph over the given arrays and validates their shape.
//
// Shape rules (content is checked separately by Verify):
//  1. len(rowOffsets) ≥ 1, node count = len(rowOffsets)-1.
//  2. len(colIndices) == len(edgeWeights) == rowOffsets[last].
//  3. nodePotential is either nil (zero field allocated) or node-count long.
//
// The arrays are adopted, not copied; callers hand over ownership.
// Complexity: O(1) beyond the nil-potential allocation.
func New(rowOffsets, colIndices []int32, edgeWeights, nodePotential []float64, opts ...Option) (*Graph, error) {
	if len(rowOffsets) < 1 {
		return nil, ErrBadShape
	}
	n := len(rowOffsets) - 1
	nnz := int(rowOffsets[n])
	if rowOffsets[0] != 0 || nnz < 0 {
		return nil, ErrOffsetsNotMonotonic
	}
	if len(colIndices) != nnz || len(edgeWeights) != nnz {
		return nil, ErrBadShape
	}
	if nodePotential == nil {
		nodePotential = make([]float64, n)
	} else if len(nodePotential) != n {
		return nil, ErrBadShape
	}

	g := &Graph{
		RowOffsets:    rowOffsets,
		ColIndices:    colIndices,
		EdgeWeights:   edgeWeights,
		NodePotential: nodePotential,
		nodeCount:     n,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g, nil
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return g.nodeCount }

// NNZ returns the number of stored entries (directed slots).
func (g *Graph) NNZ() int { return len(g.ColIndices) }

// EdgeCount returns the number of undirected edges (NNZ/2 under symmetric
// storage).
func (g *Graph) EdgeCount() int { return len(g.ColIndices) / 2 }

// Version returns the structural-generation counter.
func (g *Graph) Version() uint64 { return g.version }

// Degree returns the row length of node i. Out-of-range i yields 0.
func (g *Graph) Degree(i int32) int {
	if i < 0 || int(i) >= g.nodeCount {
		return 0
	}

	return int(g.RowOffsets[i+1] - g.RowOffsets[i])
}

// Row returns node i's neighbor and weight slices. The slices alias the
// graph's backing arrays and must not be mutated.
func (g *Graph) Row(i int32) (cols []int32, weights []float64) {
	lo, hi := g.RowOffsets[i], g.RowOffsets[i+1]

	return g.ColIndices[lo:hi], g.EdgeWeights[lo:hi]
}

// EdgeIndex locates the slot of entry (u,v) via binary search over u's
// sorted row. Complexity: O(log degree(u)).
func (g *Graph) EdgeIndex(u, v int32) (int, bool) {
	if u < 0 || int(u) >= g.nodeCount {
		return 0, false
	}
	lo, hi := int(g.RowOffsets[u]), int(g.RowOffsets[u+1])
	for lo < hi {
		mid := (lo + hi) / 2
		switch c := g.ColIndices[mid]; {
		case c == v:
			return mid, true
		case c < v:
			lo = mid + 1
		default:
			hi = mid
		}
	}

	return 0, false
}

// RowOf returns the row owning slot e, found by binary search over
// RowOffsets. Complexity: O(log n).
func (g *Graph) RowOf(e int) int32 {
	lo, hi := 0, g.nodeCount-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if int(g.RowOffsets[mid]) <= e {
			lo = mid
		} else {
			hi = mid - 1
		}
	}

	return int32(lo)
}

// MirrorIndex returns the slot of the opposite direction of entry e under
// symmetric storage.
func (g *Graph) MirrorIndex(e int) (int, bool) {
	u := g.RowOf(e)
	v := g.ColIndices[e]

	return g.EdgeIndex(v, u)
}

// EdgeExists reports whether entry (u,v) is present.
func (g *Graph) EdgeExists(u, v int32) bool {
	_, ok := g.EdgeIndex(u, v)

	return ok
}

// Clone returns a deep copy sharing no backing arrays with the receiver.
// Complexity: O(V + E).
func (g *Graph) Clone() *Graph {
	cp := &Graph{
		RowOffsets:    append([]int32(nil), g.RowOffsets...),
		ColIndices:    append([]int32(nil), g.ColIndices...),
		EdgeWeights:   append([]float64(nil), g.EdgeWeights...),
		NodePotential: append([]float64(nil), g.NodePotential...),
		nodeCount:     g.nodeCount,
		version:       g.version,
	}

	return cp
}
