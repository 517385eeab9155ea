package units

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestConverter_Linear checks each conversion is a plain scale, including negative counts.
func TestConverter_Linear(t *testing.T) {
	t.Parallel()

	c := &Converter{
		MLPerCount:    0.5,
		CmH2OPerCount: 0.25,
		SLMPerCount:   2,
	}

	require.InDelta(t, 250.0, c.CountToML(500), 1e-9)
	require.InDelta(t, -12.5, c.CountToCmH2O(-50), 1e-9)
	require.InDelta(t, 0.0, c.CountToSLM(0), 1e-9)
	require.InDelta(t, -60.0, c.CountToSLM(-30), 1e-9)
}

// TestConverter_InverseWithinScale verifies physical values survive a count round trip.
func TestConverter_InverseWithinScale(t *testing.T) {
	t.Parallel()

	c := Default()

	for _, ml := range []float64{0, 450, 512.3, -37.9} {
		require.InDelta(t, ml, c.CountToML(c.MLToCount(ml)), c.MLPerCount/2)
	}

	for _, p := range []float64{5.25, 32.01, -2.5} {
		require.InDelta(t, p, c.CountToCmH2O(c.CmH2OToCount(p)), c.CmH2OPerCount/2)
	}

	for _, f := range []float64{-45.67, 60.0} {
		require.InDelta(t, f, c.CountToSLM(c.SLMToCount(f)), c.SLMPerCount/2)
	}
}

// TestToCount_Clamps ensures out-of-range values saturate instead of wrapping.
func TestToCount_Clamps(t *testing.T) {
	t.Parallel()

	require.Equal(t, int32(math.MaxInt32), toCount(1e12))
	require.Equal(t, int32(math.MinInt32), toCount(-1e12))
}

// TestConverter_Validate rejects non-positive scales.
func TestConverter_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, Default().Validate())

	c := Default()
	c.SLMPerCount = 0
	require.ErrorIs(t, c.Validate(), ErrNonPositiveScale)
}

// TestConverter_FillDefaults only touches unset scales.
func TestConverter_FillDefaults(t *testing.T) {
	t.Parallel()

	c := Converter{CmH2OPerCount: 0.02, SLMPerCount: -1}
	c.FillDefaults()

	require.Equal(t, Converter{
		MLPerCount:    DefaultMLPerCount,
		CmH2OPerCount: 0.02,
		SLMPerCount:   -1,
	}, c)
	require.ErrorIs(t, c.Validate(), ErrNonPositiveScale)
}
