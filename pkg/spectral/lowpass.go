package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"phasepack/internal/check"
)

// LowPassFilter builds a Butterworth low-pass filter 1/(1+(r/cutoff)^(2n))
// over the unshifted frequency grid of a rows x cols transform.
//
// Parameters:
//   - cutoff: cutoff frequency as a fraction of the sampling rate, in [0, 0.5]
//   - order: filter sharpness n, a positive integer
//
// The returned values lie in [0, 1] with 1 at DC.
func LowPassFilter(rows, cols int, cutoff, order float64) (*mat.Dense, error) {
	values, err := LowPass(rows, cols, cutoff, order)
	if err != nil {
		return nil, err
	}
	return mat.NewDense(rows, cols, values), nil
}

// LowPass is LowPassFilter returning the row-major values.
func LowPass(rows, cols int, cutoff, order float64) ([]float64, error) {
	if err := check.First(
		check.Positive("rows", rows),
		check.Positive("cols", cols),
		check.Closed("cutoff", cutoff, 0, 0.5),
		check.Integer("order", order),
	); err != nil {
		return nil, err
	}

	g := NewFrequencyGrid(rows, cols)
	out := make([]float64, rows*cols)
	out[0] = 1
	if cutoff == 0 {
		return out, nil
	}
	for i := 1; i < len(out); i++ {
		out[i] = 1 / (1 + math.Pow(g.Radius[i]/cutoff, 2*order))
	}
	return out, nil
}
