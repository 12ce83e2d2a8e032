package rewire

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/latticeworks/dyntopo/conserve"
	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/proposal"
	"github.com/latticeworks/dyntopo/topk"
)

// Orchestrator owns the live topology and runs the rebuild state machine.
//
// It is a single writer: only EvolveTopology swaps the live graph, and the
// proposal buffers are owned exclusively by one orchestrator instance and
// reused across rebuilds. Readers obtain the current graph via Graph() and
// must not hold the reference across a rebuild.
type Orchestrator struct {
	cfg       Config
	log       *zap.Logger
	compactor Compactor

	mu    sync.RWMutex
	graph *csr.Graph

	addBuf *proposal.Buffer
	delBuf *proposal.Buffer
	calls  uint64
}

// Option configures an Orchestrator at construction time.
type Option func(*Orchestrator)

// WithLogger attaches a structured logger; default is zap.NewNop().
func WithLogger(log *zap.Logger) Option {
	return func(o *Orchestrator) {
		if log != nil {
			o.log = log
		}
	}
}

// WithCompactor substitutes the stream-compaction collaborator; default is
// the in-package PrefixSumCompactor.
func WithCompactor(c Compactor) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.compactor = c
		}
	}
}

// New builds an orchestrator over the given live graph.
func New(g *csr.Graph, cfg Config, opts ...Option) (*Orchestrator, error) {
	if g == nil {
		return nil, ErrNilGraph
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	addBuf, err := proposal.NewBuffer(cfg.MaxAdditions)
	if err != nil {
		return nil, err
	}
	delBuf, err := proposal.NewBuffer(cfg.MaxDeletions)
	if err != nil {
		return nil, err
	}

	o := &Orchestrator{
		cfg:       cfg,
		log:       zap.NewNop(),
		compactor: &PrefixSumCompactor{Shards: cfg.Shards},
		graph:     g,
		addBuf:    addBuf,
		delBuf:    delBuf,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// Graph returns the current live topology.
func (o *Orchestrator) Graph() *csr.Graph {
	o.mu.RLock()
	defer o.mu.RUnlock()

	return o.graph
}

// Config returns the orchestrator's configuration value.
func (o *Orchestrator) Config() Config { return o.cfg }

// EvolveTopology runs one rebuild cycle against the live graph.
//
// The returned graph is nil when no structural change was published: either
// the call fell between rebuild cadence ticks, no deletions were marked, or
// the rebuild rolled back (in which case the error is a *StructuralError or
// *conserve.ConservationError and the previous topology stays live).
//
// masses is the caller's per-node fixed-point scalar buffer; the conserve
// phase updates it in place. It is ignored when conservation is disabled.
func (o *Orchestrator) EvolveTopology(ctx context.Context, masses []int32) (*csr.Graph, *Stats, error) {
	start := time.Now()
	g := o.Graph()
	stats := &Stats{
		RebuildID:    uuid.NewString(),
		GraphVersion: g.Version(),
		FinalState:   StateIdle,
		NoChange:     true,
	}
	defer func() { stats.TotalTime = time.Since(start) }()

	// Cadence gate: rebuild only every Nth call.
	o.calls++
	if o.calls%uint64(o.cfg.RebuildInterval) != 0 {
		return nil, stats, nil
	}
	if o.cfg.Conservation && len(masses) != g.NodeCount() {
		return nil, stats, ErrMassLength
	}

	log := o.log.With(
		zap.String("rebuild_id", stats.RebuildID),
		zap.Uint64("graph_version", g.Version()),
	)
	// Grow on every exit, not just publication: a rollback or early exit
	// that dropped proposals still proves the next rebuild needs room.
	defer o.growBuffers(log)

	// Proposal phase (MCMC candidates). Only the proposals deletion source
	// feeds this pipeline with MCMC output; the threshold sweep is its own
	// independent producer.
	var additions []proposal.EdgeProposal
	if o.cfg.DeletionSource == DeleteByProposals {
		phase := time.Now()
		if err := o.collectProposals(ctx, g, stats); err != nil {
			return nil, stats, err
		}
		additions = o.addBuf.Proposals()
		stats.ProposalTime = time.Since(phase)
		log.Debug("proposal phase complete",
			zap.Int("accepted_additions", stats.AcceptedAdditions),
			zap.Int("accepted_deletions", stats.AcceptedDeletions),
			zap.Int("dropped", stats.DroppedAdditions+stats.DroppedDeletions),
			zap.Duration("elapsed", stats.ProposalTime),
		)
	}

	// Mark phase: deletion flags from the configured producer, minus the
	// protected top-K.
	phase := time.Now()
	flags, marked := o.mark(g, stats)
	stats.MarkedCount = marked
	stats.MarkTime = time.Since(phase)
	log.Debug("mark phase complete",
		zap.Int("marked", marked),
		zap.Int("protected", stats.ProtectedCount),
		zap.String("protection_method", stats.ProtectionMethod.String()),
		zap.Duration("elapsed", stats.MarkTime),
	)

	// Early exit: nothing marked means no structural change this call.
	if marked == 0 {
		log.Debug("no deletions marked; topology unchanged")

		return nil, stats, nil
	}

	// Conserve phase (optional): move dying-edge content into node masses.
	if o.cfg.Conservation {
		phase = time.Now()
		copts := conserve.Options{
			Tolerance: o.cfg.ConservationTolerance,
			Strict:    o.cfg.StrictConservation,
			UnitScale: o.cfg.MassUnitScale,
			Shards:    o.cfg.Shards,
		}
		cstats, err := conserve.Transfer(ctx, g, flags, nil, masses, copts)
		stats.Conservation = cstats
		stats.ConserveTime = time.Since(phase)
		if err != nil {
			var cerr *conserve.ConservationError
			if errors.As(err, &cerr) {
				stats.FinalState = StateRolledBack
				log.Error("conservation violated; rebuild rolled back",
					zap.Float64("measured", cerr.Measured),
					zap.Float64("tolerance", cerr.Tolerance),
				)
			}

			return nil, stats, err
		}
		if !cstats.IsConserved {
			log.Warn("conservation tolerance exceeded (non-strict)",
				zap.Float64("energy_before", cstats.EnergyBefore),
				zap.Float64("energy_transferred", cstats.EnergyTransferred),
			)
		}
	}

	// Degree phase.
	phase = time.Now()
	degrees := FinalDegrees(g, flags, additions)
	stats.DegreeTime = time.Since(phase)

	// Compact phase.
	phase = time.Now()
	newGraph, err := o.compactor.CompactTopology(ctx, g, flags, additions)
	stats.CompactTime = time.Since(phase)
	if err != nil {
		if ctx.Err() != nil {
			return nil, stats, err
		}
		stats.FinalState = StateRolledBack
		serr := &StructuralError{State: StateCompact, Err: err}
		log.Error("compaction failed; rebuild rolled back", zap.Error(err))

		return nil, stats, serr
	}

	// Verify phase: structural gate plus degree cross-check.
	phase = time.Now()
	err = o.verify(newGraph, g, degrees)
	stats.VerifyTime = time.Since(phase)
	if err != nil {
		stats.FinalState = StateRolledBack
		log.Error("verification failed; previous topology kept", zap.Error(err))

		return nil, stats, err
	}

	// Publish: swap the live graph; the predecessor's buffers are released
	// to the collector once no reader holds them.
	o.mu.Lock()
	o.graph = newGraph
	o.mu.Unlock()

	stats.FinalState = StatePublished
	stats.NoChange = false
	stats.NewEdgeCount = countAdditions(additions)
	stats.DeletedEdgeCount = marked

	log.Info("topology published",
		zap.Uint64("new_version", newGraph.Version()),
		zap.Int("nodes", newGraph.NodeCount()),
		zap.Int("edges", newGraph.EdgeCount()),
		zap.Int("deleted", marked),
		zap.Int("added", stats.NewEdgeCount),
	)

	return newGraph, stats, nil
}

// collectProposals runs the MCMC kernels with a per-call reseed.
func (o *Orchestrator) collectProposals(ctx context.Context, g *csr.Graph, stats *Stats) error {
	params := proposal.Params{
		Beta:          o.cfg.Beta,
		LinkCost:      o.cfg.LinkCost,
		TargetDegree:  o.cfg.TargetDegree,
		DegreePenalty: o.cfg.DegreePenalty,
		NewEdgeWeight: o.cfg.NewEdgeWeight,
		Seed:          o.cfg.Seed + o.calls,
		Shards:        o.cfg.Shards,
	}
	collector, err := proposal.NewCollector(params)
	if err != nil {
		return err
	}

	o.addBuf.Reset()
	if err = collector.CollectAdditions(ctx, g, o.addBuf); err != nil {
		return err
	}
	o.delBuf.Reset()
	if err = collector.CollectDeletions(ctx, g, o.delBuf); err != nil {
		return err
	}

	stats.AcceptedAdditions = o.addBuf.Accepted()
	stats.AcceptedDeletions = o.delBuf.Accepted()
	stats.DroppedAdditions = o.addBuf.Dropped()
	stats.DroppedDeletions = o.delBuf.Dropped()

	return nil
}

// mark computes the deletion flags for this rebuild: fresh every call, over
// the configured producer's candidates, minus the protected top-K (both
// mirror slots of a protected edge are exempt). Returns the flags and the
// number of undirected edges marked.
func (o *Orchestrator) mark(g *csr.Graph, stats *Stats) ([]bool, int) {
	flags := make([]bool, g.NNZ())

	protected := o.protect(g, stats)

	marked := 0
	switch o.cfg.DeletionSource {
	case DeleteByProposals:
		for _, p := range o.delBuf.Proposals() {
			if p.IsAddition {
				continue
			}
			e, ok := g.EdgeIndex(p.NodeA, p.NodeB)
			if !ok {
				continue
			}
			m, ok := g.EdgeIndex(p.NodeB, p.NodeA)
			if !ok {
				continue
			}
			if protected[e] || protected[m] {
				continue
			}
			flags[e], flags[m] = true, true
			marked++
		}
	default: // DeleteByThreshold
		for u := int32(0); u < int32(g.NodeCount()); u++ {
			for e := g.RowOffsets[u]; e < g.RowOffsets[u+1]; e++ {
				v := g.ColIndices[e]
				if v <= u {
					continue
				}
				if g.EdgeWeights[e] >= o.cfg.DeletionThreshold || protected[int(e)] {
					continue
				}
				if m, ok := g.EdgeIndex(v, u); ok {
					flags[e], flags[m] = true, true
					marked++
				}
			}
		}
	}

	return flags, marked
}

// protect runs top-K selection over the edge weights and expands the result
// to cover mirror slots. ProtectedCount counts undirected edges, so 2K slots
// are requested from the selector.
func (o *Orchestrator) protect(g *csr.Graph, stats *Stats) map[int]bool {
	if o.cfg.ProtectedCount == 0 || o.cfg.ProtectionStrategy == topk.StrategyNone {
		stats.ProtectionMethod = topk.MethodNone

		return nil
	}

	res := topk.Select(g.EdgeWeights, 2*o.cfg.ProtectedCount, o.cfg.ProtectionStrategy)
	stats.ProtectionMethod = res.Method
	if res.FallbackErr != nil {
		stats.ProtectionFallback = res.FallbackErr.Error()
		o.log.Warn("protection selector fell back",
			zap.String("method", res.Method.String()),
			zap.Error(res.FallbackErr),
		)
	}

	protected := make(map[int]bool, 2*len(res.Indices))
	edges := 0
	for _, e := range res.Indices {
		if protected[e] {
			continue
		}
		// First sight of this edge in either direction: both slots become
		// exempt and the undirected edge counts once.
		protected[e] = true
		edges++
		if m, ok := g.MirrorIndex(e); ok {
			protected[m] = true
		}
	}
	stats.ProtectedCount = edges

	return protected
}

// verify gates a freshly compacted graph: structural invariants per the
// configured strictness, node-count stability, and row lengths equal to the
// recomputed degrees.
func (o *Orchestrator) verify(newGraph, oldGraph *csr.Graph, degrees []int32) error {
	vopts := csr.DefaultVerifyOptions()
	if o.cfg.StrictVerify {
		vopts = csr.StrictVerifyOptions()
	}
	if err := newGraph.Verify(vopts); err != nil {
		return &StructuralError{State: StateVerify, Err: err}
	}
	if newGraph.NodeCount() != oldGraph.NodeCount() {
		return &StructuralError{
			State: StateVerify,
			Err:   fmt.Errorf("node count changed %d → %d", oldGraph.NodeCount(), newGraph.NodeCount()),
		}
	}
	for i, want := range degrees {
		if got := newGraph.Degree(int32(i)); got != int(want) {
			return &StructuralError{
				State: StateVerify,
				Err:   fmt.Errorf("node %d: row length %d, recomputed degree %d", i, got, want),
			}
		}
	}

	return nil
}

// growBuffers expands any proposal buffer that dropped candidates this call
// so the next rebuild can hold the observed demand.
func (o *Orchestrator) growBuffers(log *zap.Logger) {
	if o.addBuf.Dropped() > 0 {
		log.Warn("addition buffer grown", zap.Int("capacity", o.addBuf.Grow()))
	}
	if o.delBuf.Dropped() > 0 {
		log.Warn("deletion buffer grown", zap.Int("capacity", o.delBuf.Grow()))
	}
}

// countAdditions counts addition proposals in a candidate slice.
func countAdditions(additions []proposal.EdgeProposal) int {
	n := 0
	for _, p := range additions {
		if p.IsAddition {
			n++
		}
	}

	return n
}
