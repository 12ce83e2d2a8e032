package rewire

import (
	"fmt"
	"math"

	"github.com/latticeworks/dyntopo/topk"
)

// Defaults are the single source of truth for DefaultConfig.
const (
	// DefaultBeta is the inverse temperature of the acceptance criterion.
	DefaultBeta = 1.0
	// DefaultLinkCost is the action cost per unit of edge weight.
	DefaultLinkCost = 0.5
	// DefaultTargetDegree centres the quadratic degree penalty.
	DefaultTargetDegree = 6
	// DefaultDegreePenalty scales the degree-penalty term.
	DefaultDegreePenalty = 0.05
	// DefaultNewEdgeWeight is assigned to accepted additions.
	DefaultNewEdgeWeight = 0.1
	// DefaultDeletionThreshold marks edges below this weight in the sweep.
	DefaultDeletionThreshold = 0.01
	// DefaultRebuildInterval rebuilds on every Nth call.
	DefaultRebuildInterval = 10
	// DefaultMaxAdditions / DefaultMaxDeletions size the proposal buffers.
	DefaultMaxAdditions = 4096
	DefaultMaxDeletions = 4096
	// DefaultProtectedCount exempts this many highest-weight edges.
	DefaultProtectedCount = 64
	// DefaultConservationTolerance bounds the transfer audit, real units.
	DefaultConservationTolerance = 1e-6
)

// Config is the value object governing a rebuild. It carries no ownership
// semantics; copy it freely.
type Config struct {
	// Acceptance parameters (see proposal.Params).
	Beta          float64
	LinkCost      float64
	TargetDegree  int
	DegreePenalty float64
	NewEdgeWeight float64

	// DeletionThreshold drives the mark sweep: weight < threshold dies
	// unless protected.
	DeletionThreshold float64

	// DeletionSource picks which producer gates this pipeline's deletions.
	DeletionSource DeletionSource

	// RebuildInterval runs the pipeline on every Nth EvolveTopology call;
	// other calls return "no change" untouched. Must be ≥ 1.
	RebuildInterval int

	// MaxAdditions / MaxDeletions are the initial proposal-buffer
	// capacities; buffers grow geometrically when demand exceeds them.
	MaxAdditions int
	MaxDeletions int

	// ProtectedCount exempts the K highest-weight edges from deletion;
	// ProtectionStrategy selects the top-K path.
	ProtectedCount     int
	ProtectionStrategy topk.Strategy

	// Conservation toggles the transfer phase.
	Conservation bool
	// ConservationTolerance bounds the audit, real units.
	ConservationTolerance float64
	// MassUnitScale converts edge-weight units to mass units.
	MassUnitScale float64
	// StrictConservation escalates an audit breach to a rollback.
	StrictConservation bool

	// StrictVerify enables the expensive verifier passes (duplicates,
	// symmetry, weight domain) on every rebuild.
	StrictVerify bool

	// Seed is the base of all per-worker random streams.
	Seed uint64
	// Shards caps worker fan-out per phase; 0 means GOMAXPROCS.
	Shards int
}

// DefaultConfig returns the documented defaults with conservation enabled.
func DefaultConfig() Config {
	return Config{
		Beta:                  DefaultBeta,
		LinkCost:              DefaultLinkCost,
		TargetDegree:          DefaultTargetDegree,
		DegreePenalty:         DefaultDegreePenalty,
		NewEdgeWeight:         DefaultNewEdgeWeight,
		DeletionThreshold:     DefaultDeletionThreshold,
		DeletionSource:        DeleteByThreshold,
		RebuildInterval:       DefaultRebuildInterval,
		MaxAdditions:          DefaultMaxAdditions,
		MaxDeletions:          DefaultMaxDeletions,
		ProtectedCount:        DefaultProtectedCount,
		ProtectionStrategy:    topk.StrategyBlocked,
		Conservation:          true,
		ConservationTolerance: DefaultConservationTolerance,
		MassUnitScale:         1,
	}
}

// Validate checks the configuration domain and returns ErrBadConfig with
// context on the first violation.
func (c Config) Validate() error {
	switch {
	case c.Beta < 0 || math.IsNaN(c.Beta):
		return fmt.Errorf("beta=%g: %w", c.Beta, ErrBadConfig)
	case c.LinkCost < 0:
		return fmt.Errorf("link cost=%g: %w", c.LinkCost, ErrBadConfig)
	case c.TargetDegree < 1:
		return fmt.Errorf("target degree=%d: %w", c.TargetDegree, ErrBadConfig)
	case c.DegreePenalty < 0:
		return fmt.Errorf("degree penalty=%g: %w", c.DegreePenalty, ErrBadConfig)
	case c.NewEdgeWeight < 0:
		return fmt.Errorf("new edge weight=%g: %w", c.NewEdgeWeight, ErrBadConfig)
	case c.DeletionThreshold < 0:
		return fmt.Errorf("deletion threshold=%g: %w", c.DeletionThreshold, ErrBadConfig)
	case c.RebuildInterval < 1:
		return fmt.Errorf("rebuild interval=%d: %w", c.RebuildInterval, ErrBadConfig)
	case c.MaxAdditions < 1 || c.MaxDeletions < 1:
		return fmt.Errorf("proposal capacities %d/%d: %w", c.MaxAdditions, c.MaxDeletions, ErrBadConfig)
	case c.ProtectedCount < 0:
		return fmt.Errorf("protected count=%d: %w", c.ProtectedCount, ErrBadConfig)
	case c.ConservationTolerance < 0:
		return fmt.Errorf("conservation tolerance=%g: %w", c.ConservationTolerance, ErrBadConfig)
	case c.MassUnitScale <= 0:
		return fmt.Errorf("mass unit scale=%g: %w", c.MassUnitScale, ErrBadConfig)
	case c.Shards < 0:
		return fmt.Errorf("shards=%d: %w", c.Shards, ErrBadConfig)
	}

	return nil
}
