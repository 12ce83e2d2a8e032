package rewire_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/lattice"
	"github.com/latticeworks/dyntopo/proposal"
	"github.com/latticeworks/dyntopo/rewire"
)

// flagEdge marks both mirror slots of {u,v} in flags.
func flagEdge(t *testing.T, g *csr.Graph, flags []bool, u, v int32) {
	t.Helper()
	e, ok := g.EdgeIndex(u, v)
	require.True(t, ok)
	m, ok := g.EdgeIndex(v, u)
	require.True(t, ok)
	flags[e], flags[m] = true, true
}

func TestPrefixSumCompactor_DeleteAndAdd(t *testing.T) {
	g, err := lattice.Ring(8, 0.5)
	require.NoError(t, err)
	g.NodePotential[3] = 1.25

	flags := make([]bool, g.NNZ())
	flagEdge(t, g, flags, 0, 1)
	flagEdge(t, g, flags, 4, 5)
	additions := []proposal.EdgeProposal{
		{NodeA: 0, NodeB: 4, Weight: 0.1, IsAddition: true},
		{NodeA: 2, NodeB: 6, Weight: 0.1, IsAddition: true},
		{NodeA: 1, NodeB: 5, Weight: 0.2, IsAddition: false}, // not an addition
	}

	c := &rewire.PrefixSumCompactor{Shards: 3}
	newG, err := c.CompactTopology(context.Background(), g, flags, additions)
	require.NoError(t, err)

	require.Equal(t, 8, newG.NodeCount())
	require.Equal(t, 8, newG.EdgeCount(), "8 - 2 deleted + 2 added")
	require.Equal(t, g.Version()+1, newG.Version())
	require.NoError(t, newG.Verify(csr.StrictVerifyOptions()))

	require.False(t, newG.EdgeExists(0, 1))
	require.False(t, newG.EdgeExists(4, 5))
	require.True(t, newG.EdgeExists(0, 4))
	require.True(t, newG.EdgeExists(6, 2))
	require.False(t, newG.EdgeExists(1, 5), "non-addition proposal must be ignored")
	require.True(t, newG.EdgeExists(2, 3), "untouched ring edge survives")

	e, ok := newG.EdgeIndex(0, 4)
	require.True(t, ok)
	require.Equal(t, 0.1, newG.EdgeWeights[e])

	// Row lengths must equal the recomputed degrees.
	for i, want := range rewire.FinalDegrees(g, flags, additions) {
		require.Equal(t, int(want), newG.Degree(int32(i)), "node %d", i)
	}

	// Potentials carry over by value.
	require.Equal(t, 1.25, newG.NodePotential[3])
	newG.NodePotential[3] = 0
	require.Equal(t, 1.25, g.NodePotential[3])
}

func TestPrefixSumCompactor_NilGraph(t *testing.T) {
	c := &rewire.PrefixSumCompactor{}
	_, err := c.CompactTopology(context.Background(), nil, nil, nil)
	require.ErrorIs(t, err, rewire.ErrNilGraph)
}

func TestPrefixSumCompactor_ContextCancelled(t *testing.T) {
	g, err := lattice.Grid(16, 16, 0.5)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := &rewire.PrefixSumCompactor{Shards: 4}
	_, err = c.CompactTopology(ctx, g, make([]bool, g.NNZ()), nil)
	require.ErrorIs(t, err, context.Canceled)
}

func TestFinalDegrees(t *testing.T) {
	g, err := lattice.Ring(5, 0.5)
	require.NoError(t, err)

	flags := make([]bool, g.NNZ())
	flagEdge(t, g, flags, 0, 1)
	additions := []proposal.EdgeProposal{
		{NodeA: 0, NodeB: 2, Weight: 0.1, IsAddition: true},
	}

	got := rewire.FinalDegrees(g, flags, additions)
	require.Equal(t, []int32{2, 1, 3, 2, 2}, got)
}
