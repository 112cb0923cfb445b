package calibration

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// generate builds samples whose durations follow the model exactly, so
// the fit should recover the coefficients.
func generate(td, ta, tl, tu float64, loads [][3]int) []Sample {
	out := make([]Sample, len(loads))
	for i, l := range loads {
		out[i] = Sample{
			Units:              l[0],
			Lines:              l[1],
			DeliveryNotesCount: l[2],
			ActualDurationMin:  td + ta*float64(l[0]) + tl*float64(l[1]) + tu*float64(l[2]),
		}
	}
	return out
}

var variedLoads = [][3]int{
	{1, 2, 3}, {2, 5, 1}, {3, 1, 4}, {4, 3, 2}, {5, 7, 6}, {6, 2, 5},
}

func TestFit_RecoversExactModel(t *testing.T) {
	samples := generate(10, 2, 3, 0.5, variedLoads)

	td, ta, tl, tu, err := Fit(samples, true)
	require.NoError(t, err)

	assert.InDelta(t, 10, td, 0.01)
	assert.InDelta(t, 2, ta, 0.01)
	assert.InDelta(t, 3, tl, 0.01)
	assert.InDelta(t, 0.5, tu, 0.01)
}

func TestFit_WithoutIntercept(t *testing.T) {
	loads := [][3]int{{1, 0, 1}, {2, 0, 3}, {3, 0, 1}, {4, 0, 5}, {5, 0, 2}}
	samples := make([]Sample, len(loads))
	for i, l := range loads {
		samples[i] = Sample{
			Units:              l[0],
			DeliveryNotesCount: l[2],
			ActualDurationMin:  5*float64(l[0]) + 2*float64(l[2]),
		}
	}

	td, ta, tl, tu, err := Fit(samples, false)
	require.NoError(t, err)

	assert.Zero(t, td)
	assert.Zero(t, tl)
	assert.InDelta(t, 5, ta, 0.01)
	assert.InDelta(t, 2, tu, 0.01)
}

func TestFit_ClipsNegativeCoefficients(t *testing.T) {
	// True model has a negative lines coefficient; the fit must not
	// publish one.
	samples := generate(20, 3, -2, 1, variedLoads)

	td, ta, tl, tu, err := Fit(samples, true)
	require.NoError(t, err)

	assert.InDelta(t, 20, td, 0.01)
	assert.InDelta(t, 3, ta, 0.01)
	assert.Zero(t, tl)
	assert.InDelta(t, 1, tu, 0.01)
}

func TestFit_SingularOnConstantSample(t *testing.T) {
	samples := make([]Sample, 5)
	for i := range samples {
		samples[i] = Sample{Units: 2, Lines: 2, DeliveryNotesCount: 2, ActualDurationMin: 30}
	}

	_, _, _, _, err := Fit(samples, true)
	assert.True(t, errors.Is(err, ErrSingular))
}

func TestMAE(t *testing.T) {
	samples := []Sample{
		{Units: 1, Lines: 1, DeliveryNotesCount: 1, ActualDurationMin: 12},
		{Units: 2, Lines: 1, DeliveryNotesCount: 1, ActualDurationMin: 6},
	}

	// Constant prediction of 10: errors 2 and 4.
	assert.InDelta(t, 3, MAE(samples, 10, 0, 0, 0), 0.001)
}

func TestMAE_ZeroCountsDefaultToOne(t *testing.T) {
	samples := []Sample{
		{Units: 0, Lines: 0, DeliveryNotesCount: 0, ActualDurationMin: 2},
	}

	// lines and notes read as 1, so the prediction is exactly 2.
	assert.Zero(t, MAE(samples, 0, 0, 2, 0))
}
