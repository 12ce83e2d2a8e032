package rewire

import (
	"time"

	"github.com/latticeworks/dyntopo/conserve"
	"github.com/latticeworks/dyntopo/topk"
)

// Stats is the per-call telemetry record. It informs dashboards, never
// control flow.
type Stats struct {
	// RebuildID correlates this call's log lines and metrics.
	RebuildID string
	// GraphVersion is the version of the graph the call operated on.
	GraphVersion uint64
	// FinalState is where the state machine ended (Idle for cadence skips).
	FinalState State
	// NoChange is true when no topology was published this call.
	NoChange bool

	// Proposal phase.
	AcceptedAdditions int
	AcceptedDeletions int
	DroppedAdditions  int
	DroppedDeletions  int

	// Mark phase.
	MarkedCount      int
	ProtectedCount   int
	ProtectionMethod topk.Method
	// ProtectionFallback carries the abandoned path's error text, if any.
	ProtectionFallback string

	// Publication.
	NewEdgeCount     int
	DeletedEdgeCount int

	// Conservation audit (zero value when the phase was skipped).
	Conservation conserve.Stats

	// Phase wall times.
	ProposalTime time.Duration
	MarkTime     time.Duration
	ConserveTime time.Duration
	DegreeTime   time.Duration
	CompactTime  time.Duration
	VerifyTime   time.Duration
	TotalTime    time.Duration
}
