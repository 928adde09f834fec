package spectral

import (
	"fmt"

	"gonum.org/v1/gonum/dsp/fourier"
)

// FFT2 performs 2D Fast Fourier Transforms on row-major complex grids of a
// fixed size. The transform runs along rows and then along columns using the
// complex FFT from Gonum, so any grid size is supported.
//
// An FFT2 holds work buffers and must not be shared between goroutines.
type FFT2 struct {
	rows, cols int
	rowFFT     *fourier.CmplxFFT
	colFFT     *fourier.CmplxFFT
	col        []complex128
}

// NewFFT2 creates a transform for rows x cols grids.
func NewFFT2(rows, cols int) *FFT2 {
	return &FFT2{
		rows:   rows,
		cols:   cols,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		col:    make([]complex128, rows),
	}
}

// Dims returns the grid size the transform was built for.
func (f *FFT2) Dims() (rows, cols int) { return f.rows, f.cols }

// Coefficients replaces data with its forward 2D DFT.
func (f *FFT2) Coefficients(data []complex128) error {
	return f.transform(data, true)
}

// Sequence replaces data with its inverse 2D DFT. Gonum does not normalise
// the inverse transform, so the result is scaled by 1/(rows*cols) here.
func (f *FFT2) Sequence(data []complex128) error {
	if err := f.transform(data, false); err != nil {
		return err
	}
	scale := complex(1/float64(f.rows*f.cols), 0)
	for i := range data {
		data[i] *= scale
	}
	return nil
}

// Real returns the forward 2D DFT of a real grid.
func (f *FFT2) Real(data []float64) ([]complex128, error) {
	out := make([]complex128, len(data))
	for i, v := range data {
		out[i] = complex(v, 0)
	}
	if err := f.Coefficients(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (f *FFT2) transform(data []complex128, forward bool) error {
	if len(data) != f.rows*f.cols {
		return fmt.Errorf("fft2: grid has %d samples, transform expects %dx%d", len(data), f.rows, f.cols)
	}

	// Row-wise transform, in place
	for i := 0; i < f.rows; i++ {
		row := data[i*f.cols : (i+1)*f.cols]
		if forward {
			f.rowFFT.Coefficients(row, row)
		} else {
			f.rowFFT.Sequence(row, row)
		}
	}

	// Column-wise transform through the column buffer
	for j := 0; j < f.cols; j++ {
		for i := 0; i < f.rows; i++ {
			f.col[i] = data[i*f.cols+j]
		}
		if forward {
			f.colFFT.Coefficients(f.col, f.col)
		} else {
			f.colFFT.Sequence(f.col, f.col)
		}
		for i := 0; i < f.rows; i++ {
			data[i*f.cols+j] = f.col[i]
		}
	}
	return nil
}
