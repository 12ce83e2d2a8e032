package fixedpoint

import (
	"errors"
	"math"
	"sync/atomic"
)

// Scale converts between the real-valued and fixed-point domains: a real w is
// stored as round(w·Scale). 2^24 leaves 7 bits of integer headroom inside
// int32 plus sign.
const Scale = 1 << 24

// Representable range of a fixed-point accumulator. Saturating adds clamp to
// these bounds.
const (
	MaxValue = math.MaxInt32
	MinValue = math.MinInt32
)

// maxCASRetries bounds the compare-and-swap loop in SatAdd. Under the
// pipeline's per-edge contention two retries are already rare; hitting the
// bound abandons the write and reports it like an overflow.
const maxCASRetries = 64

// ErrUnrepresentable indicates a real value outside the fixed-point range.
var ErrUnrepresentable = errors.New("fixedpoint: value outside representable range")

// FromFloat converts a real value into the fixed-point domain.
// Returns ErrUnrepresentable when |w·Scale| exceeds int32.
func FromFloat(w float64) (int32, error) {
	scaled := math.Round(w * Scale)
	if scaled > MaxValue || scaled < MinValue || math.IsNaN(scaled) {
		return 0, ErrUnrepresentable
	}

	return int32(scaled), nil
}

// ToFloat converts a fixed-point value back to the real domain.
func ToFloat(v int32) float64 { return float64(v) / Scale }

// SplitHalves splits w into two shares that sum to w exactly: the first share
// is ⌊w/2⌋ plus the remainder, the second is ⌊w/2⌋. The conservation phase
// gives the first share to the smaller-indexed endpoint so only one side ever
// absorbs the odd unit.
func SplitHalves(w int32) (withRemainder, half int32) {
	half = w / 2

	return w - half, half
}

// SatAdd atomically adds delta to *addr with saturating semantics.
//
// The CAS retry loop recomputes the clamped sum from the freshly observed
// value on every iteration; if the loop exhausts maxCASRetries the write is
// abandoned. Both outcomes, clamp and abandonment, report saturated=true
// so callers can raise the conservation integrity flag.
func SatAdd(addr *int32, delta int32) (saturated bool) {
	_, saturated = SatAddApplied(addr, delta)

	return saturated
}

// SatAddApplied is SatAdd reporting the increment actually written, which a
// conservation audit needs: a clamped write applies less than delta and an
// abandoned write applies nothing.
func SatAddApplied(addr *int32, delta int32) (applied int32, saturated bool) {
	if delta == 0 {
		return 0, false
	}
	for i := 0; i < maxCASRetries; i++ {
		old := atomic.LoadInt32(addr)
		sum := int64(old) + int64(delta)
		clamped := sum
		if sum > MaxValue {
			clamped = MaxValue
		} else if sum < MinValue {
			clamped = MinValue
		}
		if atomic.CompareAndSwapInt32(addr, old, int32(clamped)) {
			return int32(clamped) - old, clamped != sum
		}
	}

	return 0, true
}

// Accumulator is a graph-wide audit total in the fixed-point domain.
// It relies on native 64-bit atomic adds, which cannot overflow for any
// realistic edge population (2^63/Scale ≈ 5.5·10^11 whole units).
type Accumulator struct {
	total atomic.Int64
}

// Add accumulates a fixed-point value.
func (a *Accumulator) Add(v int32) { a.total.Add(int64(v)) }

// Total returns the accumulated fixed-point sum.
func (a *Accumulator) Total() int64 { return a.total.Load() }

// Float returns the accumulated sum in the real domain.
func (a *Accumulator) Float() float64 { return float64(a.total.Load()) / Scale }

// Reset zeroes the accumulator.
func (a *Accumulator) Reset() { a.total.Store(0) }
