package fixedpoint_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticeworks/dyntopo/fixedpoint"
)

func TestFromFloat_RoundTrip(t *testing.T) {
	for _, w := range []float64{0, 0.5, 0.25, 1, -1, 1.0 / 3.0, 100.125} {
		v, err := fixedpoint.FromFloat(w)
		require.NoError(t, err)
		require.InDelta(t, w, fixedpoint.ToFloat(v), 1.0/fixedpoint.Scale, "w=%g", w)
	}
}

func TestFromFloat_OutOfRange(t *testing.T) {
	for _, w := range []float64{200, -200, math.Inf(1), math.NaN()} {
		if _, err := fixedpoint.FromFloat(w); !errors.Is(err, fixedpoint.ErrUnrepresentable) {
			t.Errorf("FromFloat(%g) error = %v; want ErrUnrepresentable", w, err)
		}
	}
}

func TestSplitHalves_ExactSum(t *testing.T) {
	for _, w := range []int32{0, 1, 2, 3, 7, 1 << 24, (1 << 24) + 1, math.MaxInt32} {
		a, b := fixedpoint.SplitHalves(w)
		require.Equal(t, w, a+b, "halves of %d must sum exactly", w)
		require.LessOrEqual(t, a-b, int32(1), "remainder absorbed by one side only")
	}
}

func TestSatAdd_PlainAdd(t *testing.T) {
	var acc int32 = 100
	require.False(t, fixedpoint.SatAdd(&acc, 23))
	require.Equal(t, int32(123), acc)
	require.False(t, fixedpoint.SatAdd(&acc, -200))
	require.Equal(t, int32(-77), acc)
}

func TestSatAdd_SaturatesHigh(t *testing.T) {
	var acc int32 = math.MaxInt32 - 1
	require.True(t, fixedpoint.SatAdd(&acc, 10))
	require.Equal(t, int32(math.MaxInt32), acc, "clamped, not wrapped")
}

func TestSatAdd_SaturatesLow(t *testing.T) {
	var acc int32 = math.MinInt32 + 1
	require.True(t, fixedpoint.SatAdd(&acc, -10))
	require.Equal(t, int32(math.MinInt32), acc)
}

// TestSatAdd_ConcurrentExact drives many goroutines into one accumulator and
// expects an exact total while the sum stays in range.
func TestSatAdd_ConcurrentExact(t *testing.T) {
	const workers = 32
	const perWorker = 1000

	var acc int32
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if fixedpoint.SatAdd(&acc, 3) {
					t.Error("unexpected saturation")
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(workers*perWorker*3), acc)
}

func TestAccumulator(t *testing.T) {
	var a fixedpoint.Accumulator
	half, _ := fixedpoint.FromFloat(0.25)
	for i := 0; i < 10; i++ {
		a.Add(half)
	}
	require.Equal(t, int64(half)*10, a.Total())
	require.InDelta(t, 2.5, a.Float(), 1e-9)

	a.Reset()
	require.Zero(t, a.Total())
}
