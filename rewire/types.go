// Package rewire: states, sentinel and typed errors.
package rewire

import (
	"errors"
	"fmt"
)

// Sentinel errors for orchestration.
var (
	// ErrNilGraph indicates the orchestrator was built without a live graph.
	ErrNilGraph = errors.New("rewire: graph is nil")

	// ErrBadConfig indicates configuration outside its documented domain.
	ErrBadConfig = errors.New("rewire: invalid configuration")

	// ErrMassLength indicates the caller's mass buffer does not span the
	// node count while conservation is enabled.
	ErrMassLength = errors.New("rewire: mass buffer length mismatch")
)

// StructuralError is the fatal rebuild error: the freshly compacted topology
// violated a structural invariant and was discarded. The previous topology
// remains live.
type StructuralError struct {
	// State names the phase that detected the violation.
	State State
	// Err is the underlying violation (a csr sentinel, or a degree-mismatch
	// description).
	Err error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("rewire: structural integrity failure in %s: %v", e.State, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// State enumerates the orchestrator's rebuild state machine.
type State int

const (
	// StateIdle is the resting state between rebuilds.
	StateIdle State = iota
	// StateProposal collects MCMC addition/deletion candidates.
	StateProposal
	// StateMark computes per-slot deletion flags.
	StateMark
	// StateConserve transfers dying-edge content to endpoint masses.
	StateConserve
	// StateDegree recomputes final node degrees.
	StateDegree
	// StateCompact builds the new CSR arrays.
	StateCompact
	// StateVerify gates the new topology before publication.
	StateVerify
	// StatePublished means the new topology replaced the live one.
	StatePublished
	// StateRolledBack means the rebuild was abandoned and the previous
	// topology kept.
	StateRolledBack
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProposal:
		return "proposal"
	case StateMark:
		return "mark"
	case StateConserve:
		return "conserve"
	case StateDegree:
		return "degree"
	case StateCompact:
		return "compact"
	case StateVerify:
		return "verify"
	case StatePublished:
		return "published"
	case StateRolledBack:
		return "rolled-back"
	default:
		return "unknown"
	}
}

// DeletionSource selects which mechanism produces the deletion flags feeding
// a rebuild. The threshold sweep and the MCMC deletion kernel are independent
// producers; exactly one gates a given call.
type DeletionSource int

const (
	// DeleteByThreshold marks every edge below the deletion threshold,
	// minus the protected top-K. This is the conservation-pipeline default.
	DeleteByThreshold DeletionSource = iota
	// DeleteByProposals marks the edges the MCMC deletion kernel accepted,
	// minus the protected top-K.
	DeleteByProposals
)

func (d DeletionSource) String() string {
	if d == DeleteByProposals {
		return "proposals"
	}

	return "threshold"
}
