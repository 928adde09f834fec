package phasepack

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"phasepack/pkg/spectral"
)

// noiseModel turns filter amplitudes into a noise threshold. Noise
// amplitude at the smallest scale is modelled as Rayleigh distributed with
// scale tau, which is then scaled up to the energy sums the threshold is
// subtracted from.
type noiseModel struct {
	NoiseParams
	nscale int
	mult   float64
	k      float64
}

func newNoiseModel(p FilterParams) noiseModel {
	return noiseModel{
		NoiseParams: p.Noise,
		nscale:      p.NScale,
		mult:        p.Mult,
		k:           p.K,
	}
}

// estimate returns the threshold for one set of points given their
// smallest-scale amplitude and their amplitude summed over all scales.
func (m noiseModel) estimate(smallest, sumAn []float64) (float64, error) {
	if m.Method == NoiseFixed {
		return m.Fixed, nil
	}
	if m.nscale < 2 {
		return 0, nil
	}
	tau, err := m.tau(smallest)
	if err != nil {
		return 0, err
	}
	if m.Threshold == ThresholdEnergy {
		return m.energyThreshold(tau), nil
	}
	return m.amplitudeThreshold(tau, sumAn), nil
}

// tau estimates the Rayleigh scale parameter of amp.
func (m noiseModel) tau(amp []float64) (float64, error) {
	if m.Method == NoiseMedian {
		return median(amp) / math.Sqrt(math.Log(4)), nil
	}
	bins := m.Bins
	if bins == 0 {
		bins = spectral.DefaultModeBins
	}
	return spectral.RayleighMode(amp, bins)
}

// amplitudeThreshold scales the noise mode by how skewed the summed
// amplitude is: T = tau·(1 + k·median/mean).
func (m noiseModel) amplitudeThreshold(tau float64, sumAn []float64) float64 {
	if !(tau > 0) || math.IsInf(tau, 0) {
		return 0
	}
	mu := mean(sumAn)
	if !(mu > 0) {
		return 0
	}
	return math.Max(tau*(1+m.k*median(sumAn)/mu), 0)
}

// energyThreshold is mean noise energy plus k standard deviations.
func (m noiseModel) energyThreshold(tau float64) float64 {
	if !(tau > 0) || math.IsInf(tau, 0) {
		return 0
	}
	totalTau := tau * (1 - math.Pow(1/m.mult, float64(m.nscale))) / (1 - 1/m.mult)
	mean := totalTau * math.Sqrt(math.Pi/2)
	sigma := totalTau * math.Sqrt((4-math.Pi)/2)
	return math.Max(mean+m.k*sigma, 0)
}

// orientationThresholds returns one threshold per orientation, pooling
// every orientation when the scope is global.
func (m noiseModel) orientationThresholds(eo [][][]complex128) ([]float64, error) {
	out := make([]float64, len(eo))
	if m.Method == NoiseFixed {
		for o := range out {
			out[o] = m.Fixed
		}
		return out, nil
	}

	if m.Scope == ScopeGlobal {
		var smallest, sumAn []float64
		for o := range eo {
			s, a := scaleAmplitudes(eo[o])
			smallest = append(smallest, s...)
			sumAn = append(sumAn, a...)
		}
		T, err := m.estimate(smallest, sumAn)
		if err != nil {
			return nil, err
		}
		for o := range out {
			out[o] = T
		}
		return out, nil
	}
	for o := range eo {
		T, err := m.estimate(scaleAmplitudes(eo[o]))
		if err != nil {
			return nil, err
		}
		out[o] = T
	}
	return out, nil
}

// scaleAmplitudes returns the amplitude of the smallest scale of one
// orientation's responses and the amplitude summed over its scales.
func scaleAmplitudes(eo [][]complex128) (smallest, sumAn []float64) {
	smallest = amplitude(eo[0])
	sumAn = make([]float64, len(smallest))
	copy(sumAn, smallest)
	for _, resp := range eo[1:] {
		for i, v := range resp {
			sumAn[i] += math.Hypot(real(v), imag(v))
		}
	}
	return smallest, sumAn
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return stat.Mean(v, nil)
}

func median(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sorted := make([]float64, len(v))
	copy(sorted, v)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}
