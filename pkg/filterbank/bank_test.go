package filterbank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phasepack/internal/check"
)

func testParams() Params {
	return Params{
		Rows:          32,
		Cols:          32,
		NScale:        4,
		NOrient:       6,
		MinWaveLength: 3,
		Mult:          2.1,
		SigmaOnf:      0.55,
		AngularShape:  Gaussian,
		DThetaOnSigma: 1.3,
		LowPassCutoff: 0.45,
		LowPassOrder:  15,
	}
}

func TestBuild(t *testing.T) {
	b, err := Build(testParams())
	require.NoError(t, err)

	assert.Equal(t, 4, b.NScale())
	assert.Equal(t, 6, b.NOrient())
	require.Len(t, b.Wavelengths, 4)
	assert.InDelta(t, 3.0, b.Wavelengths[0], 1e-12)
	assert.InDelta(t, 3*2.1*2.1*2.1, b.Wavelengths[3], 1e-12)

	for s, f := range b.Radial {
		assert.Equal(t, 0.0, f[0], "scale %d has DC response", s)
		for _, v := range f {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
	for o, a := range b.Angles {
		assert.InDelta(t, float64(o)*math.Pi/6, a, 1e-12)
	}
}

// TestRadialPeak checks that the log-Gabor peaks at its centre frequency.
func TestRadialPeak(t *testing.T) {
	p := testParams()
	p.Rows, p.Cols = 1, 64
	p.NOrient = 0
	p.MinWaveLength = 4
	b, err := Build(p)
	require.NoError(t, err)

	// Along a single row index j is frequency j/64; 1/4 cycles per pixel is j=16
	f := b.Radial[0]
	peak := 0
	for j := 1; j < 32; j++ {
		if f[j] > f[peak] {
			peak = j
		}
	}
	assert.Equal(t, 16, peak)
}

func TestAngularSelectivity(t *testing.T) {
	for _, shape := range []AngularShape{Gaussian, Cosine} {
		t.Run(string(shape), func(t *testing.T) {
			p := testParams()
			p.AngularShape = shape
			b, err := Build(p)
			require.NoError(t, err)

			g := b.Grid
			for o, filter := range b.Angular {
				for i := 1; i < len(filter); i++ {
					// Value is maximal where the frequency direction matches
					d := math.Abs(math.Remainder(g.Theta[i]-b.Angles[o], 2*math.Pi))
					if d < 1e-9 {
						assert.InDelta(t, 1.0, filter[i], 1e-9)
					}
					// Opposite half plane is suppressed for directional filters
					if math.Abs(d-math.Pi) < 1e-9 {
						assert.Less(t, filter[i], 1e-3)
					}
					assert.GreaterOrEqual(t, filter[i], 0.0)
					assert.LessOrEqual(t, filter[i], 1.0)
				}
			}
		})
	}
}

// TestAngularWraparound checks that angles just either side of ±π are
// treated as close rather than 2π apart.
func TestAngularWraparound(t *testing.T) {
	p := testParams()
	b, err := Build(p)
	require.NoError(t, err)

	spread := b.createAngularFilter(math.Pi-0.01, p)
	g := b.Grid
	for i := 1; i < len(spread); i++ {
		if math.Abs(g.Theta[i]+math.Pi) < 0.02 || math.Abs(g.Theta[i]-math.Pi) < 0.02 {
			assert.Greater(t, spread[i], 0.99)
		}
	}
}

func TestFilterCombination(t *testing.T) {
	b, err := Build(testParams())
	require.NoError(t, err)

	f := b.Filter(1, 2)
	for i := range f {
		assert.InDelta(t, b.Radial[1][i]*b.Angular[2][i], f[i], 1e-15)
	}
	// Filter must not alias the stored radial filter
	f[5] = 42
	assert.NotEqual(t, 42.0, b.Radial[1][5])
}

func TestIsotropicBank(t *testing.T) {
	p := testParams()
	p.NOrient = 0
	p.AngularShape = ""
	b, err := Build(p)
	require.NoError(t, err)
	assert.Empty(t, b.Angular)
	assert.Equal(t, b.Radial[2], b.Filter(2, 0))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"zero scales", func(p *Params) { p.NScale = 0 }},
		{"negative orientations", func(p *Params) { p.NOrient = -1 }},
		{"zero wavelength", func(p *Params) { p.MinWaveLength = 0 }},
		{"mult of one", func(p *Params) { p.Mult = 1 }},
		{"sigmaOnf of one", func(p *Params) { p.SigmaOnf = 1 }},
		{"low-pass cutoff", func(p *Params) { p.LowPassCutoff = 0.6 }},
		{"low-pass order", func(p *Params) { p.LowPassOrder = 2.5 }},
		{"unknown shape", func(p *Params) { p.AngularShape = "box" }},
		{"zero dtheta", func(p *Params) { p.DThetaOnSigma = 0 }},
		{"empty grid", func(p *Params) { p.Rows = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := testParams()
			tt.mutate(&p)
			_, err := Build(p)
			require.Error(t, err)
			assert.ErrorIs(t, err, check.ErrInvalid)
		})
	}
}
