package phasepack

import (
	"errors"
	"fmt"
	"math"

	"phasepack/internal/check"
	"phasepack/pkg/filterbank"
)

// ErrInvalidParameter is wrapped by every parameter validation error.
var ErrInvalidParameter = check.ErrInvalid

// ErrInvalidImage is returned for empty images or images with NaN/Inf samples.
var ErrInvalidImage = errors.New("phasepack: invalid image")

// epsilon guards the denominators that vanish in flat image regions.
const epsilon = 1e-4

// NoiseMethod selects how the noise threshold is obtained.
type NoiseMethod string

const (
	// NoiseMode fits the Rayleigh mode of the smallest-scale amplitude with
	// a histogram.
	NoiseMode NoiseMethod = "mode"

	// NoiseMedian derives the Rayleigh scale from the median amplitude.
	NoiseMedian NoiseMethod = "median"

	// NoiseFixed uses NoiseParams.Fixed as the threshold.
	NoiseFixed NoiseMethod = "fixed"
)

// ThresholdModel selects how the noise scale becomes a threshold.
type ThresholdModel string

const (
	// ThresholdAmplitude scales the noise mode by the skew of the amplitude
	// summed over scales: T = mode·(1 + k·median/mean).
	ThresholdAmplitude ThresholdModel = "amplitude"

	// ThresholdEnergy sets T k standard deviations above the mean of the
	// Rayleigh noise energy summed over scales.
	ThresholdEnergy ThresholdModel = "energy"
)

// NoiseScope selects whether oriented filter banks estimate one noise
// threshold per orientation or a single pooled one.
type NoiseScope string

const (
	ScopeOrientation NoiseScope = "orientation"
	ScopeGlobal      NoiseScope = "global"
)

// NoiseParams configures the noise threshold estimator.
type NoiseParams struct {
	Method NoiseMethod `yaml:"method"`

	// Fixed is the threshold used by NoiseFixed.
	Fixed float64 `yaml:"fixed"`

	// Bins is the histogram size for NoiseMode; 0 selects the default.
	Bins int `yaml:"bins"`

	Threshold ThresholdModel `yaml:"threshold"`
	Scope     NoiseScope     `yaml:"scope"`
}

// AngleUnit selects the unit of orientation maps.
type AngleUnit string

const (
	Degrees AngleUnit = "degrees"
	Radians AngleUnit = "radians"
)

// Polarity selects which symmetric features phase symmetry responds to.
type Polarity int

const (
	// PolarityDark responds to dark lines and blobs only.
	PolarityDark Polarity = -1
	// PolarityBoth responds to bright and dark features.
	PolarityBoth Polarity = 0
	// PolarityBright responds to bright lines and blobs only.
	PolarityBright Polarity = 1
)

// FilterParams are the log-Gabor and noise settings shared by every variant.
type FilterParams struct {
	// NScale is the number of wavelet scales.
	NScale int `yaml:"nscale"`

	// MinWaveLength is the wavelength of the smallest scale filter.
	MinWaveLength float64 `yaml:"minWaveLength"`

	// Mult is the scaling factor between successive filters.
	Mult float64 `yaml:"mult"`

	// SigmaOnf is the ratio of the standard deviation of the Gaussian
	// describing the log-Gabor transfer function to the filter centre
	// frequency.
	SigmaOnf float64 `yaml:"sigmaOnf"`

	// K is the noise sensitivity of the threshold.
	K float64 `yaml:"k"`

	LowPassCutoff float64 `yaml:"lowPassCutoff"`
	LowPassOrder  float64 `yaml:"lowPassOrder"`

	Noise     NoiseParams `yaml:"noise"`
	AngleUnit AngleUnit   `yaml:"angleUnit"`

	// Workers bounds the number of filters evaluated concurrently;
	// 0 uses GOMAXPROCS.
	Workers int `yaml:"-"`
}

// CongParams configures PhaseCong and PhaseCongMoments.
type CongParams struct {
	FilterParams `yaml:",inline"`

	// NOrient is the number of filter orientations.
	NOrient int `yaml:"norient"`

	// CutOff is the fractional frequency spread below which phase
	// congruency is penalised, and G the sharpness of that penalty.
	CutOff float64 `yaml:"cutOff"`
	G      float64 `yaml:"g"`

	AngularShape  filterbank.AngularShape `yaml:"angularShape"`
	DThetaOnSigma float64                 `yaml:"dThetaOnSigma"`
}

// CongMonoParams configures PhaseCongMono.
type CongMonoParams struct {
	FilterParams `yaml:",inline"`

	CutOff float64 `yaml:"cutOff"`
	G      float64 `yaml:"g"`

	// DeviationGain controls how sharply phase deviation reduces
	// congruency.
	DeviationGain float64 `yaml:"deviationGain"`
}

// SymParams configures PhaseSym.
type SymParams struct {
	FilterParams `yaml:",inline"`

	NOrient  int      `yaml:"norient"`
	Polarity Polarity `yaml:"polarity"`

	AngularShape  filterbank.AngularShape `yaml:"angularShape"`
	DThetaOnSigma float64                 `yaml:"dThetaOnSigma"`
}

// SymMonoParams configures PhaseSymMono.
type SymMonoParams struct {
	FilterParams `yaml:",inline"`

	Polarity Polarity `yaml:"polarity"`
}

func defaultFilterParams(lpCutoff, lpOrder float64) FilterParams {
	return FilterParams{
		NScale:        5,
		MinWaveLength: 3,
		Mult:          2.1,
		SigmaOnf:      0.55,
		K:             2,
		LowPassCutoff: lpCutoff,
		LowPassOrder:  lpOrder,
		Noise: NoiseParams{
			Method:    NoiseMode,
			Threshold: ThresholdAmplitude,
			Scope:     ScopeOrientation,
		},
		AngleUnit: Degrees,
	}
}

// DefaultCongParams returns the standard phase congruency settings.
func DefaultCongParams() CongParams {
	return CongParams{
		FilterParams:  defaultFilterParams(0.45, 15),
		NOrient:       6,
		CutOff:        0.5,
		G:             10,
		AngularShape:  filterbank.Gaussian,
		DThetaOnSigma: 1.3,
	}
}

// DefaultCongMonoParams returns the standard monogenic phase congruency settings.
func DefaultCongMonoParams() CongMonoParams {
	return CongMonoParams{
		FilterParams:  defaultFilterParams(0.45, 15),
		CutOff:        0.5,
		G:             10,
		DeviationGain: 1.5,
	}
}

// DefaultSymParams returns the standard phase symmetry settings.
func DefaultSymParams() SymParams {
	return SymParams{
		FilterParams:  defaultFilterParams(0.4, 10),
		NOrient:       6,
		Polarity:      PolarityBoth,
		AngularShape:  filterbank.Gaussian,
		DThetaOnSigma: 1.2,
	}
}

// DefaultSymMonoParams returns the standard monogenic phase symmetry settings.
func DefaultSymMonoParams() SymMonoParams {
	return SymMonoParams{
		FilterParams: defaultFilterParams(0.4, 10),
		Polarity:     PolarityBoth,
	}
}

// Validate checks the shared settings.
func (p FilterParams) Validate() error {
	if err := check.First(
		check.Positive("nscale", p.NScale),
		check.Above("minWaveLength", p.MinWaveLength, 0),
		check.Above("mult", p.Mult, 1),
		check.Open("sigmaOnf", p.SigmaOnf, 0, 1),
		check.NonNegative("k", p.K),
		check.Closed("lowPassCutoff", p.LowPassCutoff, 0, 0.5),
		check.Integer("lowPassOrder", p.LowPassOrder),
		check.NonNegative("noise.fixed", p.Noise.Fixed),
	); err != nil {
		return err
	}
	switch p.Noise.Method {
	case NoiseMode, NoiseMedian, NoiseFixed:
	default:
		return check.Param("noise.method", p.Noise.Method, fmt.Sprintf("one of %q, %q, %q", NoiseMode, NoiseMedian, NoiseFixed))
	}
	switch p.Noise.Threshold {
	case ThresholdAmplitude, ThresholdEnergy:
	default:
		return check.Param("noise.threshold", p.Noise.Threshold, fmt.Sprintf("%q or %q", ThresholdAmplitude, ThresholdEnergy))
	}
	switch p.Noise.Scope {
	case ScopeOrientation, ScopeGlobal:
	default:
		return check.Param("noise.scope", p.Noise.Scope, fmt.Sprintf("%q or %q", ScopeOrientation, ScopeGlobal))
	}
	if p.Noise.Bins < 0 {
		return check.Param("noise.bins", p.Noise.Bins, "a positive integer or 0 for the default")
	}
	switch p.AngleUnit {
	case Degrees, Radians:
	default:
		return check.Param("angleUnit", p.AngleUnit, fmt.Sprintf("%q or %q", Degrees, Radians))
	}
	if p.Workers < 0 {
		return check.Param("workers", p.Workers, "a non-negative integer")
	}
	return nil
}

// Validate checks p.
func (p CongParams) Validate() error {
	return check.First(
		p.FilterParams.Validate(),
		check.Positive("norient", p.NOrient),
		check.Closed("cutOff", p.CutOff, 0, 1),
		check.NonNegative("g", p.G),
		p.bank(1, 1).Validate(),
	)
}

// Validate checks p.
func (p CongMonoParams) Validate() error {
	return check.First(
		p.FilterParams.Validate(),
		check.Closed("cutOff", p.CutOff, 0, 1),
		check.NonNegative("g", p.G),
		check.NonNegative("deviationGain", p.DeviationGain),
	)
}

// Validate checks p.
func (p SymParams) Validate() error {
	return check.First(
		p.FilterParams.Validate(),
		check.Positive("norient", p.NOrient),
		p.Polarity.validate(),
		p.bank(1, 1).Validate(),
	)
}

// Validate checks p.
func (p SymMonoParams) Validate() error {
	return check.First(
		p.FilterParams.Validate(),
		p.Polarity.validate(),
	)
}

func (pol Polarity) validate() error {
	switch pol {
	case PolarityDark, PolarityBoth, PolarityBright:
		return nil
	}
	return check.Param("polarity", int(pol), "-1, 0 or 1")
}

// bank returns the filter bank description for an isotropic bank.
func (p FilterParams) bank(rows, cols int) filterbank.Params {
	return filterbank.Params{
		Rows:          rows,
		Cols:          cols,
		NScale:        p.NScale,
		MinWaveLength: p.MinWaveLength,
		Mult:          p.Mult,
		SigmaOnf:      p.SigmaOnf,
		LowPassCutoff: p.LowPassCutoff,
		LowPassOrder:  p.LowPassOrder,
	}
}

func (p CongParams) bank(rows, cols int) filterbank.Params {
	b := p.FilterParams.bank(rows, cols)
	b.NOrient = p.NOrient
	b.AngularShape = p.AngularShape
	b.DThetaOnSigma = p.DThetaOnSigma
	return b
}

func (p SymParams) bank(rows, cols int) filterbank.Params {
	b := p.FilterParams.bank(rows, cols)
	b.NOrient = p.NOrient
	b.AngularShape = p.AngularShape
	b.DThetaOnSigma = p.DThetaOnSigma
	return b
}

// angle converts an angle in [0, π) to the configured unit.
func (u AngleUnit) angle(rad float64) float64 {
	if u == Radians {
		return rad
	}
	deg := rad * 180 / math.Pi
	if deg >= 180 {
		deg -= 180
	}
	return deg
}

// wrapHalfTurn maps an angle in [-π, π] onto [0, π).
func wrapHalfTurn(a float64) float64 {
	if a < 0 {
		a += math.Pi
	}
	if a >= math.Pi {
		a -= math.Pi
	}
	return a
}
