// Package conserve redistributes the scalar content of dying edges to their
// endpoint nodes so the graph-wide total is preserved across a topology
// rebuild.
//
// Each edge flagged for deletion has its weight moved into the fixed-point
// domain and split into two shares that sum to the original exactly; the
// smaller-indexed endpoint absorbs the odd unit. Shares land in the per-node
// mass buffer through saturating atomic adds; a clamped or abandoned write
// raises the integrity flag instead of wrapping. After the sweep, the audit
// totals (energy before vs energy actually transferred) must agree within the
// configured tolerance: a mismatch is a hard failure in strict mode and a
// recorded statistic otherwise.
package conserve
