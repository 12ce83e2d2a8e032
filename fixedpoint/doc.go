// Package fixedpoint implements the scaled 32-bit integer domain used by the
// conservation phase to move edge-borne quantities into node accumulators
// with atomic adds.
//
// Values are represented as v·Scale with Scale = 2^24, giving roughly seven
// decimal digits of fractional precision. Accumulation is saturating: an add
// that would leave the representable range clamps to the range bound and
// reports the clamp instead of wrapping, so a scientific audit can detect the
// loss rather than silently absorbing it.
//
// Graph-wide audit totals use a plain 64-bit atomic accumulator; the paired
// 32-bit high/low emulation some accelerator targets require is unnecessary
// where native 64-bit atomics exist.
package fixedpoint
