package lattice

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"

	"github.com/latticeworks/dyntopo/csr"
)

// Sentinel errors for lattice construction.
var (
	// ErrTooFewNodes indicates a node count below the constructor's minimum.
	ErrTooFewNodes = errors.New("lattice: too few nodes")

	// ErrBadWeight indicates a negative or non-finite edge weight.
	ErrBadWeight = errors.New("lattice: invalid edge weight")

	// ErrBadDegree indicates an infeasible degree request (d<0, d≥n, or odd n·d).
	ErrBadDegree = errors.New("lattice: infeasible degree")

	// ErrConstructFailed indicates stub matching exhausted its retry limit.
	ErrConstructFailed = errors.New("lattice: construction failed after retries")
)

// maxMatchingAttempts bounds stub-matching retries; kept small and documented.
const maxMatchingAttempts = 64

// Ring builds the n-node cycle 0-1-…-(n-1)-0 with uniform weight w. n ≥ 3.
// Complexity: O(n).
func Ring(n int, w float64) (*csr.Graph, error) {
	const minRing = 3
	if n < minRing {
		return nil, fmt.Errorf("Ring: n=%d < min=%d: %w", n, minRing, ErrTooFewNodes)
	}
	if w < 0 || w != w {
		return nil, fmt.Errorf("Ring: w=%g: %w", w, ErrBadWeight)
	}

	edges := make([][2]int32, n)
	for i := 0; i < n; i++ {
		edges[i] = [2]int32{int32(i), int32((i + 1) % n)}
	}

	return fromEdges(n, edges, w)
}

// Grid builds the w×h rectangular lattice with 4-neighbor connectivity and
// uniform edge weight. Nodes are row-major: node(x,y) = y·w + x.
// Complexity: O(w·h).
func Grid(w, h int, weight float64) (*csr.Graph, error) {
	if w < 1 || h < 1 || w*h < 2 {
		return nil, fmt.Errorf("Grid: %dx%d: %w", w, h, ErrTooFewNodes)
	}
	if weight < 0 || weight != weight {
		return nil, fmt.Errorf("Grid: weight=%g: %w", weight, ErrBadWeight)
	}

	var edges [][2]int32
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			u := int32(y*w + x)
			if x+1 < w {
				edges = append(edges, [2]int32{u, u + 1})
			}
			if y+1 < h {
				edges = append(edges, [2]int32{u, u + int32(w)})
			}
		}
	}

	return fromEdges(w*h, edges, weight)
}

// RandomRegular builds an undirected d-regular simple graph on n nodes via
// stub matching with local repair: pair a shuffled stub sequence in order
// and, when a pair would form a loop or parallel edge, redraw its partner
// from the not-yet-paired suffix. A full reshuffle happens only when a pair
// cannot be repaired from what remains, so the constructor stays feasible
// at degrees well beyond the rejection-sampling regime.
// Requires 0 ≤ d < n and even n·d. Deterministic per seed.
// Complexity: expected O(n·d) with a constant retry bound.
func RandomRegular(n, d int, weight float64, seed int64) (*csr.Graph, error) {
	if n < 1 {
		return nil, fmt.Errorf("RandomRegular: n=%d: %w", n, ErrTooFewNodes)
	}
	if d < 0 || d >= n || (n*d)%2 != 0 {
		return nil, fmt.Errorf("RandomRegular: n=%d d=%d: %w", n, d, ErrBadDegree)
	}
	if weight < 0 || weight != weight {
		return nil, fmt.Errorf("RandomRegular: weight=%g: %w", weight, ErrBadWeight)
	}

	stubs := make([]int32, 0, n*d)
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			stubs = append(stubs, int32(i))
		}
	}

	rng := rand.New(rand.NewSource(seed))
	for attempt := 0; attempt < maxMatchingAttempts; attempt++ {
		rng.Shuffle(len(stubs), func(i, j int) { stubs[i], stubs[j] = stubs[j], stubs[i] })

		edges, ok := matchStubs(stubs, rng)
		if !ok {
			continue // an unrepairable pair near the tail; reshuffle
		}

		return fromEdges(n, edges, weight)
	}

	return nil, fmt.Errorf("RandomRegular: n=%d d=%d after %d attempts: %w",
		n, d, maxMatchingAttempts, ErrConstructFailed)
}

// matchStubs pairs consecutive stubs into edges. A pair that would form a
// self-loop or duplicate an earlier edge is repaired in place: its partner
// stub is swapped with a uniformly drawn stub from the unpaired suffix and
// the pair re-checked. Swapping preserves the stub multiset, so every node
// keeps exactly d endpoints. Returns false only when a pair exhausts the
// suffix without finding a valid partner.
func matchStubs(stubs []int32, rng *rand.Rand) ([][2]int32, bool) {
	seen := make(map[[2]int32]struct{}, len(stubs)/2)
	edges := make([][2]int32, 0, len(stubs)/2)
	for i := 0; i < len(stubs); i += 2 {
		paired := false
		for try := 0; try <= len(stubs); try++ {
			u, v := stubs[i], stubs[i+1]
			if u > v {
				u, v = v, u
			}
			key := [2]int32{u, v}
			if u != v {
				if _, dup := seen[key]; !dup {
					seen[key] = struct{}{}
					edges = append(edges, key)
					paired = true
					break
				}
			}
			if i+2 >= len(stubs) {
				break // last pair: nothing left to redraw from
			}
			j := i + 2 + rng.Intn(len(stubs)-i-2)
			stubs[i+1], stubs[j] = stubs[j], stubs[i+1]
		}
		if !paired {
			return nil, false
		}
	}

	return edges, true
}

// fromEdges assembles symmetric CSR storage from an undirected edge list:
// degree count, exclusive prefix sum, scatter of both directions, then a
// per-row sort so the verifier's order invariant holds by construction.
func fromEdges(n int, edges [][2]int32, w float64) (*csr.Graph, error) {
	degree := make([]int32, n)
	for _, e := range edges {
		degree[e[0]]++
		degree[e[1]]++
	}

	rowOffsets := make([]int32, n+1)
	for i := 0; i < n; i++ {
		rowOffsets[i+1] = rowOffsets[i] + degree[i]
	}

	nnz := int(rowOffsets[n])
	colIndices := make([]int32, nnz)
	weights := make([]float64, nnz)
	cursor := make([]int32, n)
	put := func(u, v int32) {
		slot := rowOffsets[u] + cursor[u]
		cursor[u]++
		colIndices[slot] = v
		weights[slot] = w
	}
	for _, e := range edges {
		put(e[0], e[1])
		put(e[1], e[0])
	}

	for i := 0; i < n; i++ {
		lo, hi := rowOffsets[i], rowOffsets[i+1]
		row := colIndices[lo:hi]
		sort.Slice(row, func(a, b int) bool { return row[a] < row[b] })
	}

	return csr.New(rowOffsets, colIndices, weights, nil)
}
