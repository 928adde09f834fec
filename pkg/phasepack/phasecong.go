package phasepack

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Moments are the principal moments of the phase congruency covariance.
// Max indicates edge strength and Min corner strength; both lie in [0, 1].
type Moments struct {
	Max *mat.Dense
	Min *mat.Dense
}

// CongResult is the output of PhaseCong.
type CongResult struct {
	Moments

	// Orientation is the feature orientation in [0, 180) degrees, or
	// [0, π) when AngleUnit is Radians. Angles are positive anticlockwise.
	Orientation *mat.Dense

	// FeatureType is the local weighted mean phase angle in (-π/2, π/2]:
	// π/2 is a bright line, 0 a step edge and -π/2 a dark line.
	FeatureType *mat.Dense

	// PC holds the phase congruency map of each orientation.
	PC []*mat.Dense

	// EO holds the filter responses indexed EO[orientation][scale].
	EO [][]QuadraturePair

	// T is the noise threshold; the mean over orientations when each
	// orientation has its own.
	T float64
}

// PhaseCong computes phase congruency on an image with a bank of oriented
// log-Gabor filters, returning the principal moments of the orientation
// covariance together with per-orientation congruency, the filter
// responses, feature orientation and feature type.
//
// The image is transformed through its periodic component so that border
// discontinuities do not leak into the filter responses.
func PhaseCong(img mat.Matrix, p CongParams) (*CongResult, error) {
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
	cov := newCovariance(n)
	// Weighted sum of the even responses and the orientation-projected odd
	// responses, used for feature type and orientation.
	ev0 := make([]float64, n)
	ev1 := make([]float64, n)
	ev2 := make([]float64, n)

	res := &CongResult{
		PC: make([]*mat.Dense, norient),
		EO: make([][]QuadraturePair, norient),
		T:  mean(thresholds),
	}
	for o := 0; o < norient; o++ {
		angle := run.bank.Angles[o]
		oc := congruency(eo[o], thresholds[o], p)
		cov.add(oc.pc, angle)

		sinA, cosA := math.Sincos(angle)
		for i := range ev0 {
			ev0[i] += oc.sumE[i]
			ev1[i] += cosA * oc.sumO[i]
			ev2[i] += sinA * oc.sumO[i]
		}

		res.PC[o] = mat.NewDense(run.rows, run.cols, oc.pc)
		res.EO[o] = make([]QuadraturePair, len(eo[o]))
		for s, resp := range eo[o] {
			res.EO[o][s] = splitPair(run.rows, run.cols, resp)
		}
	}
	res.Moments = cov.moments(run.rows, run.cols, norient)

	ori := make([]float64, n)
	ft := make([]float64, n)
	for i := range ori {
		ori[i] = p.AngleUnit.angle(wrapHalfTurn(math.Atan2(ev2[i], ev1[i])))
		ft[i] = math.Atan2(ev0[i], math.Hypot(ev1[i], ev2[i]))
	}
	res.Orientation = mat.NewDense(run.rows, run.cols, ori)
	res.FeatureType = mat.NewDense(run.rows, run.cols, ft)
	return res, nil
}

// PhaseCongMoments computes only the covariance moments of PhaseCong. It
// streams one orientation at a time and never keeps the filter responses
// of more than one orientation, so its peak memory does not grow with the
// number of orientations. Results are identical to PhaseCong's.
func PhaseCongMoments(img mat.Matrix, p CongParams) (*Moments, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	run, err := newFilterRun(img, p.bank, p.Workers)
	if err != nil {
		return nil, err
	}

	norient := run.bank.NOrient()
	nscale := run.bank.NScale()
	noise := newNoiseModel(p.FilterParams)

	var pooled float64
	if noise.Scope == ScopeGlobal && noise.Method != NoiseFixed {
		if pooled, err = pooledThreshold(run, noise); err != nil {
			return nil, err
		}
	}

	cov := newCovariance(run.rows * run.cols)
	for o := 0; o < norient; o++ {
		eo, err := run.responses([]int{o}, nscale)
		if err != nil {
			return nil, err
		}
		T := pooled
		if noise.Scope != ScopeGlobal || noise.Method == NoiseFixed {
			if T, err = noise.estimate(scaleAmplitudes(eo[0])); err != nil {
				return nil, err
			}
		}
		cov.add(congruency(eo[0], T, p).pc, run.bank.Angles[o])
	}
	m := cov.moments(run.rows, run.cols, norient)
	return &m, nil
}

// pooledThreshold streams the orientations once to estimate a single
// threshold from all of them. Only the smallest scale is filtered when the
// threshold does not depend on the summed amplitude.
func pooledThreshold(run *filterRun, noise noiseModel) (float64, error) {
	nscale := run.bank.NScale()
	if noise.Threshold == ThresholdEnergy {
		nscale = 1
	}
	var smallest, sumAn []float64
	for o := 0; o < run.bank.NOrient(); o++ {
		eo, err := run.responses([]int{o}, nscale)
		if err != nil {
			return 0, err
		}
		s, a := scaleAmplitudes(eo[0])
		smallest = append(smallest, s...)
		sumAn = append(sumAn, a...)
	}
	return noise.estimate(smallest, sumAn)
}

// orientationCongruency is the phase congruency of one orientation with the
// response sums needed for feature type and orientation.
type orientationCongruency struct {
	pc         []float64
	sumE, sumO []float64
}

// congruency computes phase congruency for one orientation from its
// responses eo[s]. Energy is measured as the projection of each response
// onto the mean phase vector less the deviation from it.
func congruency(eo [][]complex128, T float64, p CongParams) orientationCongruency {
	n := len(eo[0])
	nscale := len(eo)
	sumE := make([]float64, n)
	sumO := make([]float64, n)
	sumAn := make([]float64, n)
	maxAn := make([]float64, n)
	for s, resp := range eo {
		for i, v := range resp {
			e, o := real(v), imag(v)
			an := math.Hypot(e, o)
			sumE[i] += e
			sumO[i] += o
			sumAn[i] += an
			if s == 0 || an > maxAn[i] {
				maxAn[i] = an
			}
		}
	}

	pc := make([]float64, n)
	for i := range pc {
		xEnergy := math.Hypot(sumE[i], sumO[i]) + epsilon
		meanE := sumE[i] / xEnergy
		meanO := sumO[i] / xEnergy

		var energy float64
		for _, resp := range eo {
			e, o := real(resp[i]), imag(resp[i])
			energy += e*meanE + o*meanO - math.Abs(e*meanO-o*meanE)
		}
		energy = math.Max(energy-T, 0)

		weight := spreadWeight(sumAn[i], maxAn[i], nscale, p.CutOff, p.G)
		pc[i] = weight * energy / (sumAn[i] + epsilon)
	}
	return orientationCongruency{pc: pc, sumE: sumE, sumO: sumO}
}

// spreadWeight penalises points where only a narrow range of scales
// responds. Width is the fractional spread of amplitudes over scales.
func spreadWeight(sumAn, maxAn float64, nscale int, cutOff, g float64) float64 {
	var width float64
	if nscale > 1 {
		width = (sumAn/(maxAn+epsilon) - 1) / float64(nscale-1)
	}
	return 1 / (1 + math.Exp(g*(cutOff-width)))
}

// covariance accumulates the second moments of the phase congruency vector
// field (PC·cos θ, PC·sin θ) over orientations.
type covariance struct {
	x2, y2, xy []float64
}

func newCovariance(n int) *covariance {
	return &covariance{
		x2: make([]float64, n),
		y2: make([]float64, n),
		xy: make([]float64, n),
	}
}

func (c *covariance) add(pc []float64, angle float64) {
	sinA, cosA := math.Sincos(angle)
	for i, v := range pc {
		x := v * cosA
		y := v * sinA
		c.x2[i] += x * x
		c.y2[i] += y * y
		c.xy[i] += x * y
	}
}

// moments returns the principal moments of the covariance accumulated over
// norient orientations.
func (c *covariance) moments(rows, cols, norient int) Moments {
	scale := 2 / float64(norient)
	maxM := make([]float64, len(c.x2))
	minM := make([]float64, len(c.x2))
	for i := range c.x2 {
		x2 := c.x2[i] * scale
		y2 := c.y2[i] * scale
		xy := c.xy[i] * 2 * scale

		denom := math.Hypot(xy, x2-y2) + epsilon
		maxM[i] = (y2 + x2 + denom) / 2
		minM[i] = (y2 + x2 - denom) / 2
	}
	return Moments{
		Max: mat.NewDense(rows, cols, maxM),
		Min: mat.NewDense(rows, cols, minM),
	}
}
