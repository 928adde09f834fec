package spectral

import (
	"math"
	"math/cmplx"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"phasepack/internal/check"
)

func randomImage(rows, cols int, seed uint64) *mat.Dense {
	rng := rand.New(rand.NewPCG(seed, 7))
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64()
	}
	return mat.NewDense(rows, cols, data)
}

// TestFFT2Impulse checks that the spectrum of a unit impulse is flat.
func TestFFT2Impulse(t *testing.T) {
	f := NewFFT2(4, 6)
	data := make([]complex128, 24)
	data[0] = 1
	require.NoError(t, f.Coefficients(data))
	for i, v := range data {
		assert.InDelta(t, 1.0, cmplx.Abs(v), 1e-12, "bin %d", i)
	}
}

func TestFFT2RoundTrip(t *testing.T) {
	for _, size := range [][2]int{{8, 8}, {5, 7}, {16, 3}, {1, 9}} {
		rows, cols := size[0], size[1]
		_, _, src := Raw(randomImage(rows, cols, 1))
		f := NewFFT2(rows, cols)
		coeffs, err := f.Real(src)
		require.NoError(t, err)

		// DC equals the sum of the samples
		var sum float64
		for _, v := range src {
			sum += v
		}
		assert.InDelta(t, sum, real(coeffs[0]), 1e-10)

		require.NoError(t, f.Sequence(coeffs))
		for i := range src {
			assert.InDelta(t, src[i], real(coeffs[i]), 1e-12)
			assert.InDelta(t, 0, imag(coeffs[i]), 1e-12)
		}
	}
}

func TestFFT2SizeMismatch(t *testing.T) {
	f := NewFFT2(4, 4)
	assert.Error(t, f.Coefficients(make([]complex128, 15)))
}

func TestPerFFT2SpectrumOnly(t *testing.T) {
	img := randomImage(32, 32, 2)
	d, err := PerFFT2(img, false, false)
	require.NoError(t, err)
	require.NotNil(t, d.S)
	r, c := d.S.Dims()
	assert.Equal(t, 32, r)
	assert.Equal(t, 32, c)
	assert.Nil(t, d.P)
	assert.Nil(t, d.Periodic)
	assert.Nil(t, d.Smooth)
}

func TestPerFFT2WithP(t *testing.T) {
	img := randomImage(16, 16, 3)
	d, err := PerFFT2(img, true, false)
	require.NoError(t, err)
	require.NotNil(t, d.P)
	r, c := d.P.Dims()
	assert.Equal(t, 16, r)
	assert.Equal(t, 16, c)
	assert.Equal(t, complex128(0), d.P.At(0, 0))
	assert.Nil(t, d.Periodic)
}

func TestPerFFT2Reconstruction(t *testing.T) {
	for _, size := range [][2]int{{16, 16}, {15, 22}} {
		img := randomImage(size[0], size[1], 4)
		d, err := PerFFT2(img, true, true)
		require.NoError(t, err)
		require.NotNil(t, d.Periodic)
		require.NotNil(t, d.Smooth)

		var sum mat.Dense
		sum.Add(d.Periodic, d.Smooth)
		assert.True(t, mat.EqualApprox(img, &sum, 1e-10))
	}
}

func TestPerFFT2IntegerInput(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 5))
	data := make([]float64, 256)
	for i := range data {
		data[i] = float64(uint8(rng.IntN(256)))
	}
	d, err := PerFFT2(mat.NewDense(16, 16, data), false, false)
	require.NoError(t, err)
	for _, v := range d.S.RawCMatrix().Data {
		assert.False(t, cmplx.IsNaN(v) || cmplx.IsInf(v))
	}
}

func TestPerFFT2ConstantImage(t *testing.T) {
	data := make([]float64, 64)
	for i := range data {
		data[i] = 3
	}
	d, err := PerFFT2(mat.NewDense(8, 8, data), true, false)
	require.NoError(t, err)
	assert.InDelta(t, 192, real(d.S.At(0, 0)), 1e-9)
	for i, v := range d.P.RawCMatrix().Data {
		assert.InDelta(t, 0, cmplx.Abs(v), 1e-12, "P[%d]", i)
	}
}

func TestPerFFT2Empty(t *testing.T) {
	_, err := PerFFT2(&mat.Dense{}, false, false)
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestFrequencyGrid(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"even", 8, 8},
		{"odd", 7, 9},
		{"mixed", 6, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewFrequencyGrid(tt.rows, tt.cols)
			require.Len(t, g.Radius, tt.rows*tt.cols)
			assert.Equal(t, DCRadius, g.Radius[0])
			assert.Equal(t, 0.0, g.U1[0])
			assert.Equal(t, 0.0, g.U2[0])
			for i := 1; i < len(g.Radius); i++ {
				assert.Greater(t, g.Radius[i], 0.0)
				assert.LessOrEqual(t, g.Radius[i], 0.5*math.Sqrt2+1e-12)
				assert.LessOrEqual(t, math.Abs(g.U1[i]), 0.5)
				assert.LessOrEqual(t, math.Abs(g.Theta[i]), math.Pi)
			}
		})
	}
}

func TestFrequencyGridAxes(t *testing.T) {
	g := NewFrequencyGrid(1, 8)
	assert.Equal(t, []float64{0, 0.125, 0.25, 0.375, -0.5, -0.375, -0.25, -0.125}, g.U1)

	g = NewFrequencyGrid(5, 1)
	assert.Equal(t, []float64{0, 0.25, 0.5, -0.5, -0.25}, g.U2)
}

func TestLowPassFilter(t *testing.T) {
	lp, err := LowPassFilter(32, 32, 0.25, 2)
	require.NoError(t, err)
	r, c := lp.Dims()
	assert.Equal(t, 32, r)
	assert.Equal(t, 32, c)
	for _, v := range lp.RawMatrix().Data {
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0))
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.Equal(t, 1.0, lp.At(0, 0))
	// Half power at the cutoff radius
	assert.InDelta(t, 0.5, lp.At(0, 8), 1e-12)
}

func TestLowPassFilterZeroCutoff(t *testing.T) {
	lp, err := LowPassFilter(4, 4, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lp.At(0, 0))
	assert.Equal(t, 1.0, mat.Sum(lp))
}

func TestLowPassFilterValidation(t *testing.T) {
	tests := []struct {
		name   string
		cutoff float64
		order  float64
	}{
		{"negative cutoff", -0.1, 2},
		{"cutoff above nyquist", 0.6, 2},
		{"fractional order", 0.25, 2.5},
		{"zero order", 0.25, 0},
		{"nan cutoff", math.NaN(), 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LowPassFilter(32, 32, tt.cutoff, tt.order)
			require.Error(t, err)
			assert.ErrorIs(t, err, check.ErrInvalid)
		})
	}
}

func rayleighSamples(n int, sigma float64, seed uint64) []float64 {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	out := make([]float64, n)
	for i := range out {
		out[i] = sigma * math.Sqrt(-2*math.Log(1-rng.Float64()))
	}
	return out
}

func TestRayleighMode(t *testing.T) {
	const sigma = 2.0
	data := rayleighSamples(1000, sigma, 42)

	mode, err := RayleighMode(data, 0)
	require.NoError(t, err)
	assert.Greater(t, mode, 0.0)
	assert.False(t, math.IsInf(mode, 0) || math.IsNaN(mode))
	assert.InDelta(t, sigma, mode, 1.0)
}

func TestRayleighModeBins(t *testing.T) {
	data := rayleighSamples(1000, 2.0, 42)

	mode25, err := RayleighMode(data, 25)
	require.NoError(t, err)
	mode100, err := RayleighMode(data, 100)
	require.NoError(t, err)
	assert.InDelta(t, mode25, mode100, 1.0)
}

func TestRayleighModeEdgeCases(t *testing.T) {
	_, err := RayleighMode(nil, 10)
	assert.Error(t, err)

	_, err = RayleighMode([]float64{1, 2}, -1)
	assert.ErrorIs(t, err, check.ErrInvalid)

	mode, err := RayleighMode(make([]float64, 100), 10)
	require.NoError(t, err)
	assert.Equal(t, 0.0, mode)

	_, err = RayleighMode([]float64{1, math.NaN()}, 10)
	assert.ErrorIs(t, err, check.ErrInvalid)
}
