// Package proposal: domain types and sentinel errors.
package proposal

import "errors"

// Sentinel errors for proposal collection.
var (
	// ErrNilGraph indicates a nil graph was passed to a collector kernel.
	ErrNilGraph = errors.New("proposal: graph is nil")

	// ErrNilBuffer indicates a nil proposal buffer.
	ErrNilBuffer = errors.New("proposal: buffer is nil")

	// ErrBadCapacity indicates a non-positive buffer capacity.
	ErrBadCapacity = errors.New("proposal: capacity must be positive")

	// ErrBadParams indicates kernel parameters outside their domain
	// (negative β, non-positive target degree, ...).
	ErrBadParams = errors.New("proposal: invalid kernel parameters")
)

// EdgeProposal is a candidate structural change, not yet applied.
// For additions NodeA < NodeB always holds (canonical orientation), which is
// what guarantees a missing pair can be proposed by at most one worker.
type EdgeProposal struct {
	NodeA, NodeB int32
	Weight       float64
	IsAddition   bool
}

// Params is the immutable kernel-invocation descriptor. Any change to the
// acceptance parameters means constructing a new Collector; nothing is cached
// host-side beyond this value.
type Params struct {
	// Beta is the inverse temperature of the Metropolis criterion.
	Beta float64
	// LinkCost is the action cost per unit of edge weight.
	LinkCost float64
	// TargetDegree is the centre of the quadratic degree penalty.
	TargetDegree int
	// DegreePenalty scales the quadratic degree-penalty term.
	DegreePenalty float64
	// NewEdgeWeight is the weight assigned to accepted additions.
	NewEdgeWeight float64
	// Seed is the base of every per-worker random stream.
	Seed uint64
	// Shards caps worker fan-out; 0 means runtime.GOMAXPROCS(0).
	Shards int
}

// validate checks the parameter domain. β and the coefficients must be
// non-negative, the degree target positive.
func (p Params) validate() error {
	if p.Beta < 0 || p.LinkCost < 0 || p.DegreePenalty < 0 ||
		p.NewEdgeWeight < 0 || p.TargetDegree < 1 || p.Shards < 0 {
		return ErrBadParams
	}

	return nil
}
