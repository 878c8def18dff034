package templog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinearApply(t *testing.T) {
	require := require.New(t)

	cal := DefaultCalibration
	for _, x := range []float64{-10, 0, 1, 23.4, 100} {
		require.InDelta(1.3573018709524816*x-2.314821772480257, cal.Apply(x), 1e-12)
	}
	require.Equal(-2.314821772480257, cal.Apply(0))

	require.Equal(7.0, Linear{A: 2, B: 1}.Apply(3))
}
