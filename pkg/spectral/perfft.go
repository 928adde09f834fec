// Package spectral provides the frequency-domain building blocks of the
// phase congruency pipeline: 2D FFTs, the periodic + smooth image
// decomposition, the normalised frequency grid, the Butterworth low-pass
// envelope and the Rayleigh mode estimator used for noise compensation.
package spectral

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrEmptyImage is returned when a transform is asked to work on a 0x0 grid.
var ErrEmptyImage = errors.New("spectral: empty image")

// Decomposition is the result of PerFFT2.
type Decomposition struct {
	// S is the DFT of the periodic component. Every filter in the pipeline
	// is applied to this spectrum.
	S *mat.CDense

	// P is the DFT of the smooth component. Nil unless requested.
	P *mat.CDense

	// Periodic and Smooth are the spatial components; Periodic+Smooth
	// reconstructs the input. Nil unless requested.
	Periodic *mat.Dense
	Smooth   *mat.Dense
}

// PerFFT2 computes the 2D Fourier transform of the periodic component of img,
// following Moisan's periodic plus smooth decomposition. Transforming the
// periodic component instead of img removes the cross of spurious energy that
// image border discontinuities leave along the frequency axes.
//
// Parameters:
//   - img: input image; it is read, never modified
//   - computeP: also return the spectrum of the smooth component
//   - computeSpatial: also return both spatial components (implies computeP)
func PerFFT2(img mat.Matrix, computeP, computeSpatial bool) (*Decomposition, error) {
	rows, cols, data := Raw(img)
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyImage
	}

	f := NewFFT2(rows, cols)
	S, P, err := decompose(f, data, rows, cols)
	if err != nil {
		return nil, err
	}

	d := &Decomposition{S: mat.NewCDense(rows, cols, S)}
	if !computeP && !computeSpatial {
		return d, nil
	}
	d.P = mat.NewCDense(rows, cols, P)
	if !computeSpatial {
		return d, nil
	}

	s := make([]complex128, len(S))
	copy(s, S)
	if err := f.Sequence(s); err != nil {
		return nil, err
	}
	periodic := make([]float64, len(data))
	smooth := make([]float64, len(data))
	for i := range data {
		periodic[i] = real(s[i])
		smooth[i] = data[i] - periodic[i]
	}
	d.Periodic = mat.NewDense(rows, cols, periodic)
	d.Smooth = mat.NewDense(rows, cols, smooth)
	return d, nil
}

// PeriodicSpectrum returns the DFT of the periodic component of a row-major
// grid. It is the allocation-light path used by the filter pipelines.
func PeriodicSpectrum(data []float64, rows, cols int) ([]complex128, error) {
	if rows == 0 || cols == 0 {
		return nil, ErrEmptyImage
	}
	S, _, err := decompose(NewFFT2(rows, cols), data, rows, cols)
	return S, err
}

// decompose returns the spectra of the periodic and smooth components.
func decompose(f *FFT2, data []float64, rows, cols int) (S, P []complex128, err error) {
	// Boundary image: the jumps between opposite edges
	v := make([]complex128, rows*cols)
	for j := 0; j < cols; j++ {
		d := data[j] - data[(rows-1)*cols+j]
		v[j] += complex(d, 0)
		v[(rows-1)*cols+j] -= complex(d, 0)
	}
	for i := 0; i < rows; i++ {
		d := data[i*cols] - data[i*cols+cols-1]
		v[i*cols] += complex(d, 0)
		v[i*cols+cols-1] -= complex(d, 0)
	}
	if err := f.Coefficients(v); err != nil {
		return nil, nil, err
	}

	// Solve the Poisson equation for the smooth component. The discrete
	// Laplacian kernel only vanishes at DC, which is pinned to zero.
	P = v
	for i := 0; i < rows; i++ {
		cy := math.Cos(2 * math.Pi * float64(i) / float64(rows))
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			if idx == 0 {
				P[0] = 0
				continue
			}
			cx := math.Cos(2 * math.Pi * float64(j) / float64(cols))
			P[idx] /= complex(2*(2-cx-cy), 0)
		}
	}

	S, err = f.Real(data)
	if err != nil {
		return nil, nil, err
	}
	for i := range S {
		S[i] -= P[i]
	}
	return S, P, nil
}

// Raw copies m into a row-major float64 slice.
func Raw(m mat.Matrix) (rows, cols int, data []float64) {
	rows, cols = m.Dims()
	data = make([]float64, rows*cols)
	if d, ok := m.(mat.RawMatrixer); ok {
		raw := d.RawMatrix()
		for i := 0; i < rows; i++ {
			copy(data[i*cols:(i+1)*cols], raw.Data[i*raw.Stride:i*raw.Stride+cols])
		}
		return rows, cols, data
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			data[i*cols+j] = m.At(i, j)
		}
	}
	return rows, cols, data
}
