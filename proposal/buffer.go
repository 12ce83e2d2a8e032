package proposal

import "sync/atomic"

// growthFactor is the minimum geometric growth applied by Grow.
// Buffers never shrink, so steady-state rebuilds reallocate nothing.
const growthFactor = 3 // numerator over growthDenom → 1.5×
const growthDenom = 2

// Buffer collects accepted proposals through lock-free slot allocation.
//
// One atomic fetch-and-add per accepted proposal yields that proposal's
// unique destination slot, so concurrent workers never race on a write even
// though many succeed at once. Slots at or beyond capacity are not written;
// the acceptance is still counted, which makes capacity pressure observable
// (Dropped) instead of silent.
type Buffer struct {
	candidates []EdgeProposal
	accepted   atomic.Int64
}

// NewBuffer allocates a buffer with the given candidate capacity.
func NewBuffer(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, ErrBadCapacity
	}

	return &Buffer{candidates: make([]EdgeProposal, capacity)}, nil
}

// Reset zeroes the accepted counter. Called at the start of each proposal
// phase; stored candidates from the previous phase become dead slots.
func (b *Buffer) Reset() { b.accepted.Store(0) }

// TryAppend claims the next slot for p. The returned slot is unique across
// all concurrent callers; stored=false means the slot lay beyond capacity
// and p was counted but not written.
func (b *Buffer) TryAppend(p EdgeProposal) (slot int, stored bool) {
	slot = int(b.accepted.Add(1) - 1)
	if slot >= len(b.candidates) {
		return slot, false
	}
	b.candidates[slot] = p

	return slot, true
}

// Accepted returns the total number of accepted proposals this phase,
// including any that did not fit.
func (b *Buffer) Accepted() int { return int(b.accepted.Load()) }

// Stored returns the number of proposals actually written, clamped to
// capacity.
func (b *Buffer) Stored() int {
	if n := b.Accepted(); n < len(b.candidates) {
		return n
	}

	return len(b.candidates)
}

// Dropped returns how many accepted proposals were lost to capacity.
func (b *Buffer) Dropped() int { return b.Accepted() - b.Stored() }

// Cap returns the current candidate capacity.
func (b *Buffer) Cap() int { return len(b.candidates) }

// Proposals returns the stored candidates. The slice aliases the buffer and
// is invalidated by Reset and Grow.
func (b *Buffer) Proposals() []EdgeProposal { return b.candidates[:b.Stored()] }

// Grow reallocates to max(1.5×cap, demand) when the last phase dropped
// proposals, and returns the resulting capacity. Must not be called while a
// phase is running; previously returned Proposals slices become invalid.
func (b *Buffer) Grow() int {
	demand := b.Accepted()
	if demand <= len(b.candidates) {
		return len(b.candidates)
	}
	next := len(b.candidates) * growthFactor / growthDenom
	if next < demand {
		next = demand
	}
	b.candidates = make([]EdgeProposal, next)
	b.accepted.Store(0)

	return next
}
