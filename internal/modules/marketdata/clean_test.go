package marketdata

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClean(t *testing.T) {
	input := func() *PriceTable {
		return table(t, []string{"A", "B"},
			[]float64{nan, 10},
			[]float64{1, nan},
			[]float64{2, nan},
			[]float64{nan, 40},
			[]float64{4, 50},
		)
	}

	t.Run("drop", func(t *testing.T) {
		out := Clean(input(), CleanDrop)
		require.Equal(t, 1, out.Len())
		assert.Equal(t, []float64{4, 50}, out.Rows[0])
		assert.Equal(t, day(4), out.Dates[0])
	})

	t.Run("forward fill", func(t *testing.T) {
		out := Clean(input(), CleanForwardFill)
		assert.True(t, math.IsNaN(out.Rows[0][0]))
		assert.Equal(t, []float64{10, 10, 10, 40, 50}, out.Column(1))
		assert.Equal(t, 2.0, out.Rows[3][0])
	})

	t.Run("interpolate", func(t *testing.T) {
		out := Clean(input(), CleanInterpolate)
		assert.True(t, math.IsNaN(out.Rows[0][0]))
		assert.InDelta(t, 3.0, out.Rows[3][0], 1e-12)
		assert.InDelta(t, 20.0, out.Rows[1][1], 1e-12)
		assert.InDelta(t, 30.0, out.Rows[2][1], 1e-12)
	})

	t.Run("input untouched", func(t *testing.T) {
		in := input()
		_ = Clean(in, CleanForwardFill)
		assert.True(t, math.IsNaN(in.Rows[1][1]))
	})
}

func TestParseCleanMethod(t *testing.T) {
	m, err := ParseCleanMethod("")
	require.NoError(t, err)
	assert.Equal(t, CleanDrop, m)

	m, err = ParseCleanMethod("interpolate")
	require.NoError(t, err)
	assert.Equal(t, CleanInterpolate, m)

	_, err = ParseCleanMethod("spline")
	assert.Error(t, err)
}
