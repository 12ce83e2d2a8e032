package topk

import (
	"errors"
	"fmt"
	"sort"
)

// Method identifies which selection path produced a result.
type Method int

const (
	// MethodBlocked is the primary path: local top-M per block, exact refine.
	MethodBlocked Method = iota
	// MethodQuickselect is the exact CPU fallback.
	MethodQuickselect
	// MethodNone means selection failed entirely; no edges are protected.
	MethodNone
)

func (m Method) String() string {
	switch m {
	case MethodBlocked:
		return "blocked"
	case MethodQuickselect:
		return "quickselect"
	default:
		return "none"
	}
}

// Strategy picks the entry point of the fallback chain.
type Strategy int

const (
	// StrategyBlocked tries the blocked path first (default).
	StrategyBlocked Strategy = iota
	// StrategyQuickselect skips straight to the exact path.
	StrategyQuickselect
	// StrategyNone disables protection.
	StrategyNone
)

// ErrEmptyResult signals that a selection path produced nothing for a
// non-empty request, triggering the next fallback.
var ErrEmptyResult = errors.New("topk: selection produced empty result")

// blockSize is the partition width of the blocked path.
const blockSize = 256

// localTopM caps how many candidates one block may contribute. When k exceeds
// this cap the blocked result is approximate: the refine step is exact only
// over the pooled candidates.
const localTopM = 32

// Result carries the selected slot indices, the method that produced them and
// the error of any path that had to be abandoned along the way.
type Result struct {
	Indices     []int
	Method      Method
	FallbackErr error
}

// Select returns (up to) the k indices with the largest weights.
//
// The chain degrades gracefully: blocked → quickselect → empty. A failure
// never propagates to the caller; it is recorded on Result.FallbackErr and
// the next path serves the request.
func Select(weights []float64, k int, strategy Strategy) Result {
	if k <= 0 || len(weights) == 0 || strategy == StrategyNone {
		return Result{Method: MethodNone}
	}
	if k >= len(weights) {
		// Everything is protected; no ranking needed.
		all := make([]int, len(weights))
		for i := range all {
			all[i] = i
		}

		return Result{Indices: all, Method: methodFor(strategy)}
	}

	var fallbackErr error
	if strategy == StrategyBlocked {
		idx, err := selectBlocked(weights, k)
		if err == nil && len(idx) > 0 {
			return Result{Indices: idx, Method: MethodBlocked}
		}
		if err == nil {
			err = ErrEmptyResult
		}
		fallbackErr = fmt.Errorf("blocked path failed: %w", err)
	}

	if idx := selectQuick(weights, k); len(idx) > 0 {
		return Result{Indices: idx, Method: MethodQuickselect, FallbackErr: fallbackErr}
	}

	return Result{Method: MethodNone, FallbackErr: fallbackErr}
}

// methodFor maps a strategy to the method label used for trivial selections.
func methodFor(s Strategy) Method {
	if s == StrategyQuickselect {
		return MethodQuickselect
	}

	return MethodBlocked
}

// selectBlocked pools each block's local top-M and refines the pool exactly.
// Any panic in the path is converted to an error so the caller can fall back.
func selectBlocked(weights []float64, k int) (idx []int, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx, err = nil, fmt.Errorf("topk: blocked selection panic: %v", r)
		}
	}()

	m := localTopM
	if k < m {
		m = k
	}

	// Phase 1: each block contributes its local top-M indices.
	pool := make([]int, 0, (len(weights)/blockSize+1)*m)
	for lo := 0; lo < len(weights); lo += blockSize {
		hi := lo + blockSize
		if hi > len(weights) {
			hi = len(weights)
		}
		pool = appendBlockTop(pool, weights, lo, hi, m)
	}

	// Phase 2: exact refine over the pooled candidates.
	sort.Slice(pool, func(i, j int) bool { return weights[pool[i]] > weights[pool[j]] })
	if len(pool) > k {
		pool = pool[:k]
	}

	return pool, nil
}

// appendBlockTop appends the indices of the m largest weights in [lo,hi) to
// pool via a small insertion pass (m is tiny relative to blockSize).
func appendBlockTop(pool []int, weights []float64, lo, hi, m int) []int {
	if hi-lo <= m {
		for i := lo; i < hi; i++ {
			pool = append(pool, i)
		}

		return pool
	}

	best := make([]int, 0, m)
	for i := lo; i < hi; i++ {
		pos := len(best)
		for pos > 0 && weights[i] > weights[best[pos-1]] {
			pos--
		}
		if pos >= m {
			continue
		}
		if len(best) < m {
			best = append(best, 0)
		}
		copy(best[pos+1:], best[pos:len(best)-1])
		best[pos] = i
	}

	return append(pool, best...)
}

// selectQuick is the exact fallback: iterative Hoare-style quickselect over
// an index permutation, then a final sort of the selected prefix for stable
// output order.
func selectQuick(weights []float64, k int) []int {
	idx := make([]int, len(weights))
	for i := range idx {
		idx[i] = i
	}

	lo, hi := 0, len(idx)-1
	for lo < hi {
		p := partition(weights, idx, lo, hi)
		switch {
		case p == k-1:
			lo = hi // done
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}

	out := idx[:k]
	sort.Slice(out, func(i, j int) bool { return weights[out[i]] > weights[out[j]] })

	return out
}

// partition arranges idx[lo..hi] so indices of weights larger than the pivot
// precede it; returns the pivot's final position.
func partition(weights []float64, idx []int, lo, hi int) int {
	// Median-of-three pivot keeps adversarial inputs off the O(n²) path.
	mid := lo + (hi-lo)/2
	if weights[idx[mid]] > weights[idx[lo]] {
		idx[lo], idx[mid] = idx[mid], idx[lo]
	}
	if weights[idx[hi]] > weights[idx[lo]] {
		idx[lo], idx[hi] = idx[hi], idx[lo]
	}
	if weights[idx[hi]] > weights[idx[mid]] {
		idx[mid], idx[hi] = idx[hi], idx[mid]
	}
	pivot := weights[idx[mid]]
	idx[mid], idx[hi] = idx[hi], idx[mid]

	store := lo
	for i := lo; i < hi; i++ {
		if weights[idx[i]] > pivot {
			idx[store], idx[i] = idx[i], idx[store]
			store++
		}
	}
	idx[store], idx[hi] = idx[hi], idx[store]

	return store
}
