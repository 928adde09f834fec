// Package filterbank constructs the frequency-domain log-Gabor filters used
// for phase congruency and phase symmetry: one radial filter per scale and,
// for oriented banks, one angular spread filter per orientation.
package filterbank

import (
	"fmt"
	"math"

	"phasepack/internal/check"
	"phasepack/pkg/spectral"
)

// AngularShape selects the angular spread profile of oriented filters.
type AngularShape string

const (
	// Gaussian spread exp(-dθ²/(2σθ²)) with σθ = π/norient/dThetaOnSigma.
	Gaussian AngularShape = "gaussian"

	// Cosine is a raised cosine reaching zero at 2π/norient from the
	// preferred direction.
	Cosine AngularShape = "cosine"
)

// Params describes a filter bank.
type Params struct {
	Rows, Cols int

	// NScale is the number of radial (log-Gabor) filters.
	NScale int

	// NOrient is the number of angular filters. Zero builds an isotropic
	// bank for the monogenic path.
	NOrient int

	// MinWaveLength is the wavelength of the smallest scale filter in pixels.
	MinWaveLength float64

	// Mult scales the wavelength between successive filters.
	Mult float64

	// SigmaOnf is the ratio of the Gaussian's standard deviation to the
	// centre frequency in the log-frequency domain.
	SigmaOnf float64

	AngularShape  AngularShape
	DThetaOnSigma float64

	// LowPassCutoff and LowPassOrder configure the Butterworth envelope
	// multiplied into every radial filter.
	LowPassCutoff float64
	LowPassOrder  float64
}

// Validate checks the parameters without building anything.
func (p Params) Validate() error {
	if err := check.First(
		check.Positive("rows", p.Rows),
		check.Positive("cols", p.Cols),
		check.Positive("nscale", p.NScale),
		check.Above("minWaveLength", p.MinWaveLength, 0),
		check.Above("mult", p.Mult, 1),
		check.Open("sigmaOnf", p.SigmaOnf, 0, 1),
		check.Closed("lowPassCutoff", p.LowPassCutoff, 0, 0.5),
		check.Integer("lowPassOrder", p.LowPassOrder),
	); err != nil {
		return err
	}
	if p.NOrient < 0 {
		return check.Param("norient", p.NOrient, "a non-negative integer")
	}
	if p.NOrient == 0 {
		return nil
	}
	switch p.AngularShape {
	case Gaussian:
		return check.Above("dThetaOnSigma", p.DThetaOnSigma, 0)
	case Cosine:
		return nil
	default:
		return check.Param("angularShape", p.AngularShape, fmt.Sprintf("%q or %q", Gaussian, Cosine))
	}
}

// Bank is a set of frequency-domain filters sharing one frequency grid.
// All filters are unshifted (DC at index 0) and row-major.
type Bank struct {
	Grid *spectral.FrequencyGrid

	// LowPass is the envelope already multiplied into every Radial filter.
	LowPass []float64

	// Radial holds one log-Gabor filter per scale, by increasing wavelength.
	Radial [][]float64

	// Angular holds one spread filter per orientation; empty for
	// isotropic banks.
	Angular [][]float64

	// Angles is the preferred direction of each angular filter in radians.
	Angles []float64

	// Wavelengths is the centre wavelength of each radial filter.
	Wavelengths []float64
}

// Build validates p and constructs the bank.
func Build(p Params) (*Bank, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	lp, err := spectral.LowPass(p.Rows, p.Cols, p.LowPassCutoff, p.LowPassOrder)
	if err != nil {
		return nil, err
	}

	b := &Bank{
		Grid:        spectral.NewFrequencyGrid(p.Rows, p.Cols),
		LowPass:     lp,
		Radial:      make([][]float64, p.NScale),
		Wavelengths: make([]float64, p.NScale),
	}
	for s := 0; s < p.NScale; s++ {
		b.Wavelengths[s] = p.MinWaveLength * math.Pow(p.Mult, float64(s))
		b.Radial[s] = b.createRadialFilter(b.Wavelengths[s], p.SigmaOnf)
	}

	if p.NOrient > 0 {
		b.Angular = make([][]float64, p.NOrient)
		b.Angles = make([]float64, p.NOrient)
		for o := 0; o < p.NOrient; o++ {
			b.Angles[o] = float64(o) * math.Pi / float64(p.NOrient)
			b.Angular[o] = b.createAngularFilter(b.Angles[o], p)
		}
	}
	return b, nil
}

// NScale returns the number of radial filters.
func (b *Bank) NScale() int { return len(b.Radial) }

// NOrient returns the number of angular filters.
func (b *Bank) NOrient() int { return len(b.Angular) }

// Filter returns the combined filter for a scale and orientation in a fresh
// slice. For isotropic banks orient is ignored.
func (b *Bank) Filter(scale, orient int) []float64 {
	out := make([]float64, len(b.Radial[scale]))
	copy(out, b.Radial[scale])
	if len(b.Angular) == 0 {
		return out
	}
	spread := b.Angular[orient]
	for i := range out {
		out[i] *= spread[i]
	}
	return out
}

// createRadialFilter builds the log-Gabor transfer function
// exp(-(log(r/fo))² / (2 log(sigmaOnf)²)) times the low-pass envelope.
func (b *Bank) createRadialFilter(wavelength, sigmaOnf float64) []float64 {
	fo := 1 / wavelength
	denom := 2 * math.Pow(math.Log(sigmaOnf), 2)

	filter := make([]float64, len(b.Grid.Radius))
	for i, r := range b.Grid.Radius {
		l := math.Log(r / fo)
		filter[i] = math.Exp(-(l*l)/denom) * b.LowPass[i]
	}
	// No DC response
	filter[0] = 0
	return filter
}

// createAngularFilter builds the spread function around angle. The angular
// distance uses the sine/cosine difference so that it wraps correctly.
func (b *Bank) createAngularFilter(angle float64, p Params) []float64 {
	sinA, cosA := math.Sincos(angle)
	thetaSigma := math.Pi / float64(p.NOrient) / p.DThetaOnSigma

	filter := make([]float64, len(b.Grid.Theta))
	for i, theta := range b.Grid.Theta {
		sinT, cosT := math.Sincos(theta)
		ds := sinT*cosA - cosT*sinA
		dc := cosT*cosA + sinT*sinA
		dtheta := math.Abs(math.Atan2(ds, dc))

		switch p.AngularShape {
		case Cosine:
			dtheta = math.Min(dtheta*float64(p.NOrient)/2, math.Pi)
			filter[i] = (math.Cos(dtheta) + 1) / 2
		default:
			filter[i] = math.Exp(-(dtheta * dtheta) / (2 * thetaSigma * thetaSigma))
		}
	}
	return filter
}
