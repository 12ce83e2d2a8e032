package proposal

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/latticeworks/dyntopo/csr"
)

// deletionSalt separates the deletion kernel's stream family from the
// addition kernel's within one call (both derive from the same base seed).
const deletionSalt = 0xD1E7

// Collector runs the proposal kernels. It is a thin immutable wrapper around
// Params; construct a new one to change acceptance behavior.
type Collector struct {
	params Params
}

// NewCollector validates p and returns a collector bound to it.
func NewCollector(p Params) (*Collector, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	return &Collector{params: p}, nil
}

// Params returns the descriptor the collector was built with.
func (c *Collector) Params() Params { return c.params }

// qRatios derives the proposal-asymmetry corrections from the current counts
// of existing vs missing edge slots. With E existing undirected edges out of
// M = n(n-1)/2 possible, an add move was one of (M-E) choices while its
// reverse would be one of (E+1); the deletion ratio mirrors that.
func qRatios(g *csr.Graph) (qAdd, qDel float64) {
	n := int64(g.NodeCount())
	total := n * (n - 1) / 2
	existing := int64(g.EdgeCount())
	missing := total - existing

	qAdd = float64(missing) / float64(existing+1)
	qDel = float64(existing) / float64(missing+1)

	return qAdd, qDel
}

// penaltyDelta is the change of the quadratic degree penalty (d-target)²
// when node degree moves from d to d+step.
func penaltyDelta(d, target, step int) float64 {
	before := float64(d - target)
	after := float64(d + step - target)

	return after*after - before*before
}

// accept applies the Metropolis–Hastings criterion for an action change dS.
func accept(rng *xorshift32, beta, dS, qRatio float64) bool {
	p := math.Exp(-beta*dS) * qRatio
	if p >= 1 {
		return true
	}

	return rng.uniform() < p
}

// shardCount resolves the worker fan-out for n units of work.
func (c *Collector) shardCount(n int) int {
	shards := c.params.Shards
	if shards == 0 {
		shards = runtime.GOMAXPROCS(0)
	}
	if shards > n {
		shards = n
	}
	if shards < 1 {
		shards = 1
	}

	return shards
}

// CollectAdditions runs one logical worker per node. Each worker draws one
// candidate partner from its own stream; self-loops and already-adjacent
// pairs are discarded before acceptance, and a candidate is only kept in the
// canonical orientation u < v, so no pair can be proposed twice in a phase.
//
// Accepted proposals claim buffer slots atomically. The accepted *set* is
// deterministic for a fixed seed and graph; slot order depends on scheduling.
// Complexity: O(n·log d_max / shards) per shard.
func (c *Collector) CollectAdditions(ctx context.Context, g *csr.Graph, buf *Buffer) error {
	if g == nil {
		return ErrNilGraph
	}
	if buf == nil {
		return ErrNilBuffer
	}
	n := int32(g.NodeCount())
	if n < 2 {
		return nil
	}
	qAdd, _ := qRatios(g)
	p := c.params

	shards := c.shardCount(int(n))
	grp, ctx := errgroup.WithContext(ctx)
	for s := 0; s < shards; s++ {
		shard := int32(s)
		grp.Go(func() error {
			for u := shard; u < n; u += int32(shards) {
				if err := ctx.Err(); err != nil {
					return err
				}
				rng := newStream(p.Seed, uint32(u))
				v := rng.intn(n)
				if v == u || v < u {
					continue // not this worker's orientation
				}
				if g.EdgeExists(u, v) {
					continue // duplicate guard: never propose an existing edge
				}
				dS := p.LinkCost*p.NewEdgeWeight +
					p.DegreePenalty*(penaltyDelta(g.Degree(u), p.TargetDegree, +1)+
						penaltyDelta(g.Degree(v), p.TargetDegree, +1))
				if !accept(&rng, p.Beta, dS, qAdd) {
					continue
				}
				buf.TryAppend(EdgeProposal{NodeA: u, NodeB: v, Weight: p.NewEdgeWeight, IsAddition: true})
			}

			return nil
		})
	}

	return grp.Wait()
}

// CollectDeletions runs one logical worker per stored edge slot, visiting
// only the u < v side of the symmetric storage so each undirected edge is
// considered exactly once. The worker index, and therefore the stream, is
// the slot index, which is stable for a fixed graph.
// Complexity: O(nnz / shards) per shard.
func (c *Collector) CollectDeletions(ctx context.Context, g *csr.Graph, buf *Buffer) error {
	if g == nil {
		return ErrNilGraph
	}
	if buf == nil {
		return ErrNilBuffer
	}
	n := int32(g.NodeCount())
	_, qDel := qRatios(g)
	p := c.params

	shards := c.shardCount(int(n))
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
					if v <= u {
						continue // mirror slot; the u < v side owns this edge
					}
					rng := newStream(p.Seed^deletionSalt, uint32(e))
					w := g.EdgeWeights[e]
					dS := -p.LinkCost*w +
						p.DegreePenalty*(penaltyDelta(g.Degree(u), p.TargetDegree, -1)+
							penaltyDelta(g.Degree(v), p.TargetDegree, -1))
					if !accept(&rng, p.Beta, dS, qDel) {
						continue
					}
					buf.TryAppend(EdgeProposal{NodeA: u, NodeB: v, Weight: w, IsAddition: false})
				}
			}

			return nil
		})
	}

	return grp.Wait()
}
