package spectral

import (
	"errors"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"phasepack/internal/check"
)

// DefaultModeBins is the histogram resolution used by RayleighMode when the
// caller passes nbins == 0.
const DefaultModeBins = 50

// RayleighMode estimates the mode of a Rayleigh distributed sample by finding
// the peak of its histogram. For a Rayleigh distribution the mode equals the
// scale parameter sigma, which is how the noise amplitude floor is recovered.
//
// The bin counts are smoothed over a window proportional to nbins/25 before
// the peak is located, which keeps the estimate stable across bin counts.
func RayleighMode(samples []float64, nbins int) (float64, error) {
	if len(samples) == 0 {
		return 0, errors.New("spectral: rayleigh mode of an empty sample")
	}
	if nbins < 0 {
		return 0, check.Param("nbins", nbins, "a positive integer or 0 for the default")
	}
	if nbins == 0 {
		nbins = DefaultModeBins
	}
	for _, v := range samples {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, check.Param("samples", v, "finite")
		}
	}

	x := make([]float64, len(samples))
	copy(x, samples)
	sort.Float64s(x)

	lo := math.Min(0, x[0])
	mx := x[len(x)-1]
	if mx <= lo {
		// All samples equal the lower bound: the distribution is degenerate
		return mx, nil
	}
	hi := math.Nextafter(mx, math.Inf(1))

	dividers := make([]float64, nbins+1)
	floats.Span(dividers, lo, hi)
	dividers[nbins] = hi
	counts := stat.Histogram(nil, dividers, x, nil)

	half := max(1, nbins/25)
	best, bestCount := 0, math.Inf(-1)
	for i := range counts {
		var sum float64
		for j := max(0, i-half); j <= min(len(counts)-1, i+half); j++ {
			sum += counts[j]
		}
		if sum > bestCount {
			best, bestCount = i, sum
		}
	}
	return (dividers[best] + dividers[best+1]) / 2, nil
}
