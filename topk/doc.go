// Package topk selects the K highest-weight edge slots to exempt from the
// deletion sweep ("protection").
//
// Selection is a best-effort optimization, never a correctness requirement:
// the primary blocked path (local top-M per block, exact refine over the
// candidate pool) degrades to an exact quickselect, and that in turn degrades
// to an empty protected set. Each result reports which method produced it so
// the orchestrator can log fallback occurrences.
package topk
