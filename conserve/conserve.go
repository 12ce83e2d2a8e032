package conserve

import (
	"context"
	"errors"
	"fmt"
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/fixedpoint"
)

// Sentinel errors for the transfer phase.
var (
	// ErrNilGraph indicates a nil graph.
	ErrNilGraph = errors.New("conserve: graph is nil")

	// ErrFlagsLength indicates the deletion-flag array does not span NNZ.
	ErrFlagsLength = errors.New("conserve: deletion flags length mismatch")

	// ErrMassLength indicates the mass buffer does not span the node count.
	ErrMassLength = errors.New("conserve: mass buffer length mismatch")

	// ErrBadTolerance indicates a negative conservation tolerance.
	ErrBadTolerance = errors.New("conserve: tolerance must be non-negative")

	// ErrBadUnitScale indicates a non-positive unit-conversion factor.
	ErrBadUnitScale = errors.New("conserve: unit scale must be positive")
)

// ConservationError reports a strict-mode conservation violation; it carries
// the measured error and the tolerance it exceeded.
type ConservationError struct {
	Measured  float64
	Tolerance float64
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("conserve: energy mismatch %g exceeds tolerance %g", e.Measured, e.Tolerance)
}

// DefaultTolerance matches one fixed-point unit per ~16 dying edges.
const DefaultTolerance = 1e-6

// Options configures a transfer sweep.
type Options struct {
	// Tolerance bounds |EnergyBefore − EnergyTransferred| (real units).
	Tolerance float64
	// Strict escalates a tolerance breach from a statistic to an error.
	Strict bool
	// UnitScale converts edge-weight units into mass units before the
	// fixed-point transfer (1 when both live in the same unit).
	UnitScale float64
	// Shards caps worker fan-out; 0 means runtime.GOMAXPROCS(0).
	Shards int
}

// DefaultOptions returns the non-strict default configuration.
func DefaultOptions() Options {
	return Options{Tolerance: DefaultTolerance, UnitScale: 1}
}

// Stats is the audit record of one transfer sweep.
type Stats struct {
	// EnergyBefore is the summed weight of dying edges, real units.
	EnergyBefore float64
	// EnergyTransferred is the amount actually added to node masses.
	EnergyTransferred float64
	// DyingEdgeCount counts undirected edges processed.
	DyingEdgeCount int
	// IsConserved is |EnergyBefore−EnergyTransferred| ≤ Tolerance.
	IsConserved bool
	// Saturated is the integrity flag: some write clamped or was abandoned.
	Saturated bool
	// Elapsed is the wall time of the sweep.
	Elapsed time.Duration
}

// Transfer moves the content of every flagged, previously-alive edge into the
// endpoint masses.
//
// flags spans the NNZ slots of g (mirror slots carry equal flags after the
// mark phase); only the u < v slot of each edge is processed, so each dying
// edge contributes exactly once. prevExistence may be nil, meaning every
// stored edge was alive in the previous frame.
//
// masses is the per-node fixed-point buffer updated in place. The sweep is
// sharded over nodes; writes contend only on shared endpoints and go through
// saturating CAS adds.
func Transfer(ctx context.Context, g *csr.Graph, flags []bool, prevExistence []bool, masses []int32, opts Options) (Stats, error) {
	start := time.Now()
	var stats Stats

	if g == nil {
		return stats, ErrNilGraph
	}
	if len(flags) != g.NNZ() {
		return stats, ErrFlagsLength
	}
	if prevExistence != nil && len(prevExistence) != g.NNZ() {
		return stats, ErrFlagsLength
	}
	if len(masses) != g.NodeCount() {
		return stats, ErrMassLength
	}
	if opts.Tolerance < 0 {
		return stats, ErrBadTolerance
	}
	if opts.UnitScale <= 0 {
		return stats, ErrBadUnitScale
	}

	var before, transferred fixedpoint.Accumulator
	var dying, saturations atomic.Int64

	n := int32(g.NodeCount())
	shards := opts.Shards
	if shards == 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	if shards > int(n) {
		shards = int(n)
	}
	if shards < 1 {
		shards = 1
	}

	grp, ctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		shard := int32(s)
		grp.Go(func() error {
			for u := shard; u < n; u += int32(shards) {
				if err := ctx.Err(); err != nil {
					return err
				}
				for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
					v := g.ColIndices[e]
					if v <= u || !flags[e] {
						continue
					}
					if prevExistence != nil && !prevExistence[e] {
						continue
					}

					w, err := fixedpoint.FromFloat(g.EdgeWeights[e] * opts.UnitScale)
					if err != nil {
						// Unrepresentable weight: clamp the contribution and flag.
						w = fixedpoint.MaxValue
						saturations.Add(1)
					}
					dying.Add(1)
					before.Add(w)

					// The smaller-indexed endpoint absorbs the remainder, so
					// the two shares always sum to w exactly.
					loShare, hiShare := fixedpoint.SplitHalves(w)
					applied, sat := fixedpoint.SatAddApplied(&masses[u], loShare)
					transferred.Add(applied)
					if sat {
						saturations.Add(1)
					}
					applied, sat = fixedpoint.SatAddApplied(&masses[v], hiShare)
					transferred.Add(applied)
					if sat {
						saturations.Add(1)
					}
				}
			}

			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return stats, err
	}

	stats.EnergyBefore = before.Float()
	stats.EnergyTransferred = transferred.Float()
	stats.DyingEdgeCount = int(dying.Load())
	stats.Saturated = saturations.Load() > 0
	drift := math.Abs(stats.EnergyBefore - stats.EnergyTransferred)
	stats.IsConserved = drift <= opts.Tolerance
	stats.Elapsed = time.Since(start)

	if !stats.IsConserved && opts.Strict {
		return stats, &ConservationError{Measured: drift, Tolerance: opts.Tolerance}
	}

	return stats, nil
}
