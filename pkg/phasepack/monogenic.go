package phasepack

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// CongMonoResult is the output of PhaseCongMono.
type CongMonoResult struct {
	// PC is the phase congruency map in [0, 1].
	PC *mat.Dense

	// Orientation is the feature orientation in [0, 180) degrees, or
	// [0, π) when AngleUnit is Radians.
	Orientation *mat.Dense

	// FeatureType is the local weighted mean phase angle; see CongResult.
	FeatureType *mat.Dense

	T float64
}

// monogenicSums accumulates the monogenic responses over scales.
type monogenicSums struct {
	sumAn, maxAn       []float64
	sumF, sumH1, sumH2 []float64
	totalEnergy        []float64
	smallestAmplitude  []float64
}

// sumMonogenic folds the per-scale monogenic responses. Symmetric energy is
// only accumulated when polarity is non-nil.
func sumMonogenic(scales []monogenicScale, polarity *Polarity) monogenicSums {
	n := len(scales[0].f)
	m := monogenicSums{
		sumAn: make([]float64, n),
		maxAn: make([]float64, n),
		sumF:  make([]float64, n),
		sumH1: make([]float64, n),
		sumH2: make([]float64, n),
	}
	if polarity != nil {
		m.totalEnergy = make([]float64, n)
	}
	for s, sc := range scales {
		var an0 []float64
		if s == 0 {
			an0 = make([]float64, n)
		}
		for i := range sc.f {
			f, h1, h2 := sc.f[i], sc.h1[i], sc.h2[i]
			an := math.Sqrt(f*f + h1*h1 + h2*h2)
			m.sumAn[i] += an
			m.sumF[i] += f
			m.sumH1[i] += h1
			m.sumH2[i] += h2
			if s == 0 || an > m.maxAn[i] {
				m.maxAn[i] = an
			}
			if an0 != nil {
				an0[i] = an
			}
			if polarity != nil {
				m.totalEnergy[i] += polarity.symmetry(f, math.Hypot(h1, h2))
			}
		}
		if an0 != nil {
			m.smallestAmplitude = an0
		}
	}
	return m
}

// PhaseCongMono computes phase congruency with monogenic filters. It is
// faster and uses less memory than PhaseCong but only yields a single,
// orientation independent, congruency map.
func PhaseCongMono(img mat.Matrix, p CongMonoParams) (*CongMonoResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	run, err := newFilterRun(img, p.FilterParams.bank, p.Workers)
	if err != nil {
		return nil, err
	}
	scales, err := run.monogenic()
	if err != nil {
		return nil, err
	}
	sums := sumMonogenic(scales, nil)

	T, err := newNoiseModel(p.FilterParams).estimate(sums.smallestAmplitude, sums.sumAn)
	if err != nil {
		return nil, err
	}

	n := run.rows * run.cols
	pc := make([]float64, n)
	ori := make([]float64, n)
	ft := make([]float64, n)
	nscale := len(scales)
	for i := range pc {
		weight := spreadWeight(sums.sumAn[i], sums.maxAn[i], nscale, p.CutOff, p.G)

		oddEnergy := math.Hypot(sums.sumH1[i], sums.sumH2[i])
		energy := math.Hypot(sums.sumF[i], oddEnergy)

		// Phase deviation from the weighted mean phase, measured with the
		// arc cosine of the energy to amplitude ratio
		ratio := math.Min(energy/(sums.sumAn[i]+epsilon), 1)
		deviation := math.Max(1-p.DeviationGain*math.Acos(ratio), 0)

		pc[i] = weight * deviation * math.Max(energy-T, 0) / (energy + epsilon)
		ori[i] = p.AngleUnit.angle(wrapHalfTurn(math.Atan2(-sums.sumH2[i], sums.sumH1[i])))
		ft[i] = math.Atan2(sums.sumF[i], oddEnergy)
	}
	return &CongMonoResult{
		PC:          mat.NewDense(run.rows, run.cols, pc),
		Orientation: mat.NewDense(run.rows, run.cols, ori),
		FeatureType: mat.NewDense(run.rows, run.cols, ft),
		T:           T,
	}, nil
}

// PhaseSymMono computes phase symmetry with monogenic filters.
func PhaseSymMono(img mat.Matrix, p SymMonoParams) (*SymResult, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	run, err := newFilterRun(img, p.FilterParams.bank, p.Workers)
	if err != nil {
		return nil, err
	}
	scales, err := run.monogenic()
	if err != nil {
		return nil, err
	}
	sums := sumMonogenic(scales, &p.Polarity)

	T, err := newNoiseModel(p.FilterParams).estimate(sums.smallestAmplitude, sums.sumAn)
	if err != nil {
		return nil, err
	}

	n := run.rows * run.cols
	sym := make([]float64, n)
	ori := make([]float64, n)
	for i := range sym {
		sym[i] = math.Max(sums.totalEnergy[i]-T, 0) / (sums.sumAn[i] + epsilon)
		ori[i] = p.AngleUnit.angle(wrapHalfTurn(math.Atan2(-sums.sumH2[i], sums.sumH1[i])))
	}
	return &SymResult{
		Symmetry:    mat.NewDense(run.rows, run.cols, sym),
		Orientation: mat.NewDense(run.rows, run.cols, ori),
		TotalEnergy: mat.NewDense(run.rows, run.cols, sums.totalEnergy),
		T:           T,
	}, nil
}
