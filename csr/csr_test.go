package csr_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeworks/dyntopo/csr"
)

// ring5 builds the symmetric CSR of the 5-cycle 0-1-2-3-4-0, all weights w.
func ring5(t *testing.T, w float64) *csr.Graph {
	t.Helper()
	rowOffsets := []int32{0, 2, 4, 6, 8, 10}
	colIndices := []int32{1, 4, 0, 2, 1, 3, 2, 4, 0, 3}
	weights := make([]float64, len(colIndices))
	for i := range weights {
		weights[i] = w
	}
	g, err := csr.New(rowOffsets, colIndices, weights, nil)
	require.NoError(t, err)

	return g
}

func TestNew_ShapeErrors(t *testing.T) {
	cases := []struct {
		name      string
		offsets   []int32
		cols      []int32
		weights   []float64
		potential []float64
		err       error
	}{
		{"EmptyOffsets", []int32{}, nil, nil, nil, csr.ErrBadShape},
		{"NonZeroStart", []int32{1, 2}, []int32{0}, []float64{1}, nil, csr.ErrOffsetsNotMonotonic},
		{"ColsMismatch", []int32{0, 2}, []int32{1}, []float64{1, 1}, nil, csr.ErrBadShape},
		{"WeightsMismatch", []int32{0, 1}, []int32{1}, []float64{}, nil, csr.ErrBadShape},
		{"PotentialMismatch", []int32{0, 0, 0}, nil, nil, []float64{1}, csr.ErrBadShape},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := csr.New(tc.offsets, tc.cols, tc.weights, tc.potential)
			if !errors.Is(err, tc.err) {
				t.Errorf("New error = %v; want %v", err, tc.err)
			}
		})
	}
}

func TestGraph_Accessors(t *testing.T) {
	g := ring5(t, 0.5)

	require.Equal(t, 5, g.NodeCount())
	require.Equal(t, 10, g.NNZ())
	require.Equal(t, 5, g.EdgeCount())
	require.Equal(t, uint64(0), g.Version())

	for i := int32(0); i < 5; i++ {
		require.Equal(t, 2, g.Degree(i), "node %d", i)
	}
	require.Equal(t, 0, g.Degree(-1))
	require.Equal(t, 0, g.Degree(99))

	cols, weights := g.Row(2)
	require.Equal(t, []int32{1, 3}, cols)
	require.Equal(t, []float64{0.5, 0.5}, weights)
}

func TestGraph_EdgeExists(t *testing.T) {
	g := ring5(t, 0.5)

	present := [][2]int32{{0, 1}, {1, 0}, {4, 0}, {2, 3}}
	for _, p := range present {
		if !g.EdgeExists(p[0], p[1]) {
			t.Errorf("EdgeExists(%d,%d)=false; want true", p[0], p[1])
		}
	}
	absent := [][2]int32{{0, 2}, {1, 3}, {0, 0}, {-1, 0}, {7, 1}}
	for _, p := range absent {
		if g.EdgeExists(p[0], p[1]) {
			t.Errorf("EdgeExists(%d,%d)=true; want false", p[0], p[1])
		}
	}
}

func TestGraph_Clone_Independent(t *testing.T) {
	g := ring5(t, 0.5)
	cp := g.Clone()

	cp.EdgeWeights[0] = 9.0
	cp.ColIndices[0] = 3
	require.Equal(t, 0.5, g.EdgeWeights[0], "clone must not alias weights")
	require.Equal(t, int32(1), g.ColIndices[0], "clone must not alias columns")
	require.Equal(t, g.Version(), cp.Version())
}

func TestWithVersion(t *testing.T) {
	g, err := csr.New([]int32{0, 0}, nil, nil, nil, csr.WithVersion(7))
	require.NoError(t, err)
	require.Equal(t, uint64(7), g.Version())
}

func TestVerify_ValidRing(t *testing.T) {
	g := ring5(t, 0.5)
	require.NoError(t, g.Verify(csr.DefaultVerifyOptions()))
	require.NoError(t, g.Verify(csr.StrictVerifyOptions()))
}

func TestVerify_Violations(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(g *csr.Graph)
		opts   csr.VerifyOptions
		err    error
	}{
		{
			"DecreasingOffsets",
			func(g *csr.Graph) { g.RowOffsets[2] = 1 },
			csr.DefaultVerifyOptions(), csr.ErrOffsetsNotMonotonic,
		},
		{
			"ColumnOutOfRange",
			func(g *csr.Graph) { g.ColIndices[3] = 42 },
			csr.DefaultVerifyOptions(), csr.ErrColumnOutOfRange,
		},
		{
			"SelfLoop",
			func(g *csr.Graph) { g.ColIndices[0] = 0 },
			csr.DefaultVerifyOptions(), csr.ErrSelfLoop,
		},
		{
			"UnsortedRow",
			func(g *csr.Graph) { g.ColIndices[0], g.ColIndices[1] = g.ColIndices[1], g.ColIndices[0] },
			csr.DefaultVerifyOptions(), csr.ErrRowNotSorted,
		},
		{
			"DuplicateColumn",
			func(g *csr.Graph) { g.ColIndices[1] = g.ColIndices[0] },
			csr.StrictVerifyOptions(), csr.ErrDuplicateColumn,
		},
		{
			"Asymmetric",
			func(g *csr.Graph) { g.ColIndices[5] = 4; g.ColIndices[4] = 0 },
			csr.StrictVerifyOptions(), csr.ErrAsymmetric,
		},
		{
			"NegativeWeight",
			func(g *csr.Graph) { g.EdgeWeights[2] = -0.1 },
			csr.StrictVerifyOptions(), csr.ErrNegativeWeight,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := ring5(t, 0.5)
			tc.mutate(g)
			err := g.Verify(tc.opts)
			if !errors.Is(err, tc.err) {
				t.Errorf("Verify error = %v; want %v", err, tc.err)
			}
		})
	}
}
