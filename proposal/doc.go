// Package proposal generates candidate topology mutations for the rewiring
// pipeline and collects the accepted ones into a fixed-capacity buffer.
//
// Two kernels exist: an addition kernel (one logical worker per node, each
// sampling a missing partner) and a deletion kernel (one logical worker per
// stored edge). Both test their candidate against a Metropolis–Hastings
// criterion
//
//	P(accept) = min(1, exp(-β·ΔS) · qRatio)
//
// where ΔS combines a link-cost term with a quadratic degree penalty around
// the configured target degree, and qRatio corrects for the asymmetry
// between the densities of the add and remove proposal moves (derived from
// the current counts of existing vs missing edge slots).
//
// Every worker draws its own xorshift32 stream reseeded per call from the
// base seed and its worker index, so the accepted set is reproducible for a
// fixed seed regardless of how workers are scheduled onto shards. Accepted
// proposals claim a buffer slot through one atomic increment; candidates that
// land beyond capacity are counted but not stored (observable through
// Dropped), and the buffer grows geometrically before the next phase.
package proposal
