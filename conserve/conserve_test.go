package conserve_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeworks/dyntopo/conserve"
	"github.com/latticeworks/dyntopo/csr"
	"github.com/latticeworks/dyntopo/fixedpoint"
	"github.com/latticeworks/dyntopo/lattice"
)

// TestTransfer_Ring5AllDying is the reference scenario: a 5-node ring, all
// weights 0.5, every edge dying. Each node receives 0.25 from each of its two
// incident edges; totals are exactly 2.5 and conservation holds.
func TestTransfer_Ring5AllDying(t *testing.T) {
	g, err := lattice.Ring(5, 0.5)
	require.NoError(t, err)

	flags := make([]bool, g.NNZ())
	for i := range flags {
		flags[i] = true
	}
	masses := make([]int32, g.NodeCount())

	stats, err := conserve.Transfer(context.Background(), g, flags, nil, masses, conserve.DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, 5, stats.DyingEdgeCount)
	require.True(t, stats.IsConserved)
	require.False(t, stats.Saturated)
	require.InDelta(t, 2.5, stats.EnergyBefore, 1e-9)
	require.InDelta(t, 2.5, stats.EnergyTransferred, 1e-9)

	half, _ := fixedpoint.FromFloat(0.5)
	for i, m := range masses {
		require.Equal(t, half, m, "node %d must receive 2×0.25", i)
	}
}

// TestTransfer_ExactIntegerConservation checks the integer-domain property:
// the applied increments sum to the dying total exactly, including odd-unit
// remainders.
func TestTransfer_ExactIntegerConservation(t *testing.T) {
	// Single edge {0,1} whose scaled weight is odd.
	oddWeight := fixedpoint.ToFloat(3) // 3 fixed-point units
	g, err := csr.New(
		[]int32{0, 1, 2},
		[]int32{1, 0},
		[]float64{oddWeight, oddWeight},
		nil,
	)
	require.NoError(t, err)

	flags := []bool{true, true}
	masses := make([]int32, 2)

	stats, err := conserve.Transfer(context.Background(), g, flags, nil, masses, conserve.DefaultOptions())
	require.NoError(t, err)

	require.Equal(t, 1, stats.DyingEdgeCount)
	require.Equal(t, int32(2), masses[0], "smaller endpoint absorbs the remainder")
	require.Equal(t, int32(1), masses[1])
	require.True(t, stats.IsConserved)
}

func TestTransfer_RespectsFlagsAndPrevExistence(t *testing.T) {
	g, err := lattice.Ring(6, 0.5)
	require.NoError(t, err)

	// Flag only edge {0,1} (both mirror slots).
	flags := make([]bool, g.NNZ())
	e01, ok := g.EdgeIndex(0, 1)
	require.True(t, ok)
	e10, ok := g.EdgeIndex(1, 0)
	require.True(t, ok)
	flags[e01], flags[e10] = true, true

	// prevExistence vetoes it.
	prev := make([]bool, g.NNZ())
	masses := make([]int32, g.NodeCount())
	stats, err := conserve.Transfer(context.Background(), g, flags, prev, masses, conserve.DefaultOptions())
	require.NoError(t, err)
	require.Zero(t, stats.DyingEdgeCount)
	for _, m := range masses {
		require.Zero(t, m)
	}

	// With the edge alive previously, exactly one edge transfers.
	for i := range prev {
		prev[i] = true
	}
	stats, err = conserve.Transfer(context.Background(), g, flags, prev, masses, conserve.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 1, stats.DyingEdgeCount)
	require.InDelta(t, 0.5, stats.EnergyTransferred, 1e-9)
}

// TestTransfer_SaturationFlagged drives a node mass near the ceiling and
// checks the clamp is reported instead of wrapping.
func TestTransfer_SaturationFlagged(t *testing.T) {
	g, err := csr.New(
		[]int32{0, 1, 2},
		[]int32{1, 0},
		[]float64{1.0, 1.0},
		nil,
	)
	require.NoError(t, err)

	flags := []bool{true, true}
	masses := []int32{math.MaxInt32 - 10, 0}

	stats, err := conserve.Transfer(context.Background(), g, flags, nil, masses, conserve.DefaultOptions())
	require.NoError(t, err, "non-strict mode records, never fails")

	require.True(t, stats.Saturated)
	require.False(t, stats.IsConserved)
	require.Equal(t, int32(math.MaxInt32), masses[0], "clamped to ceiling")
	require.Less(t, stats.EnergyTransferred, stats.EnergyBefore)
}

func TestTransfer_StrictViolation(t *testing.T) {
	g, err := csr.New(
		[]int32{0, 1, 2},
		[]int32{1, 0},
		[]float64{1.0, 1.0},
		nil,
	)
	require.NoError(t, err)

	flags := []bool{true, true}
	masses := []int32{math.MaxInt32 - 10, 0}

	opts := conserve.DefaultOptions()
	opts.Strict = true
	_, err = conserve.Transfer(context.Background(), g, flags, nil, masses, opts)

	var cerr *conserve.ConservationError
	require.ErrorAs(t, err, &cerr)
	require.Greater(t, cerr.Measured, cerr.Tolerance)
}

func TestTransfer_ArgumentErrors(t *testing.T) {
	g, err := lattice.Ring(4, 0.5)
	require.NoError(t, err)
	flags := make([]bool, g.NNZ())
	masses := make([]int32, g.NodeCount())

	_, err = conserve.Transfer(context.Background(), nil, flags, nil, masses, conserve.DefaultOptions())
	require.ErrorIs(t, err, conserve.ErrNilGraph)

	_, err = conserve.Transfer(context.Background(), g, flags[:1], nil, masses, conserve.DefaultOptions())
	require.ErrorIs(t, err, conserve.ErrFlagsLength)

	_, err = conserve.Transfer(context.Background(), g, flags, flags[:1], masses, conserve.DefaultOptions())
	require.ErrorIs(t, err, conserve.ErrFlagsLength)

	_, err = conserve.Transfer(context.Background(), g, flags, nil, masses[:2], conserve.DefaultOptions())
	require.ErrorIs(t, err, conserve.ErrMassLength)

	bad := conserve.DefaultOptions()
	bad.Tolerance = -1
	_, err = conserve.Transfer(context.Background(), g, flags, nil, masses, bad)
	require.ErrorIs(t, err, conserve.ErrBadTolerance)
}

func TestTransfer_ContextCancelled(t *testing.T) {
	g, err := lattice.Ring(64, 0.5)
	require.NoError(t, err)
	flags := make([]bool, g.NNZ())
	masses := make([]int32, g.NodeCount())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = conserve.Transfer(ctx, g, flags, nil, masses, conserve.DefaultOptions())
	require.True(t, errors.Is(err, context.Canceled))
}
