package phasepack

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// SymResult is the output of PhaseSym and PhaseSymMono.
type SymResult struct {
	// Symmetry is the phase symmetry map in [0, 1].
	Symmetry *mat.Dense

	// Orientation is the orientation of the strongest symmetric response.
	// PhaseSym reports the angle of the winning filter, PhaseSymMono the
	// direction of the summed Riesz components.
	Orientation *mat.Dense

	// TotalEnergy is the un-normalised symmetry energy. It is useful for
	// thresholding when the image has areas of low contrast where the
	// normalised Symmetry exaggerates noise.
	TotalEnergy *mat.Dense

	// T is the noise threshold; the mean over orientations when each
	// orientation has its own.
	T float64
}

// PhaseSym computes phase symmetry, a contrast invariant measure of local
// symmetry that marks line and blob like features, with a bank of oriented
// log-Gabor filters.
func PhaseSym(img mat.Matrix, p SymParams) (*SymResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	run, err := newFilterRun(img, p.bank, p.Workers)
	if err != nil {
		return nil, err
	}

	norient := run.bank.NOrient()
	eo, err := run.responses(allOrientations(norient), run.bank.NScale())
	if err != nil {
		return nil, err
	}
	thresholds, err := newNoiseModel(p.FilterParams).orientationThresholds(eo)
	if err != nil {
		return nil, err
	}

	n := run.rows * run.cols
	totalEnergy := make([]float64, n)
	totalSumAn := make([]float64, n)
	orientation := make([]float64, n)
	maxEnergy := make([]float64, n)
	energy := make([]float64, n)
	for o := 0; o < norient; o++ {
		clear(energy)
		for _, resp := range eo[o] {
			for i, v := range resp {
				e, od := real(v), imag(v)
				energy[i] += p.Polarity.symmetry(e, math.Abs(od))
				totalSumAn[i] += math.Hypot(e, od)
			}
		}

		angle := p.AngleUnit.angle(run.bank.Angles[o])
		for i, v := range energy {
			v = math.Max(v-thresholds[o], 0)
			totalEnergy[i] += v
			if o == 0 || v > maxEnergy[i] {
				maxEnergy[i] = v
				orientation[i] = angle
			}
		}
	}

	sym := make([]float64, n)
	for i := range sym {
		sym[i] = totalEnergy[i] / (totalSumAn[i] + epsilon)
	}
	return &SymResult{
		Symmetry:    mat.NewDense(run.rows, run.cols, sym),
		Orientation: mat.NewDense(run.rows, run.cols, orientation),
		TotalEnergy: mat.NewDense(run.rows, run.cols, totalEnergy),
		T:           mean(thresholds),
	}, nil
}

// symmetry is the symmetric energy contribution of an even response and an
// odd amplitude: large even response with small odd response.
func (pol Polarity) symmetry(even, oddAbs float64) float64 {
	switch pol {
	case PolarityBright:
		return even - oddAbs
	case PolarityDark:
		return -even - oddAbs
	default:
		return math.Abs(even) - oddAbs
	}
}
