package phasepack

import (
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"phasepack/pkg/filterbank"
	"phasepack/pkg/spectral"
)

// QuadraturePair is the even (real) and odd (imaginary) response of one
// oriented log-Gabor filter.
type QuadraturePair struct {
	Even *mat.Dense
	Odd  *mat.Dense
}

// filterRun holds the periodic spectrum of one image and the bank applied to it.
type filterRun struct {
	rows, cols int
	spectrum   []complex128
	bank       *filterbank.Bank
	workers    int
}

// newFilterRun transforms the image and builds the bank. Parameters must
// already be validated.
func newFilterRun(img mat.Matrix, bp func(rows, cols int) filterbank.Params, workers int) (*filterRun, error) {
	rows, cols, data, err := prepare(img)
	if err != nil {
		return nil, err
	}
	bank, err := filterbank.Build(bp(rows, cols))
	if err != nil {
		return nil, err
	}
	spectrum, err := spectral.PeriodicSpectrum(data, rows, cols)
	if err != nil {
		return nil, fmt.Errorf("error transforming image: %w", err)
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &filterRun{
		rows:     rows,
		cols:     cols,
		spectrum: spectrum,
		bank:     bank,
		workers:  workers,
	}, nil
}

// response returns the complex spatial response of one filter. Real part is
// the even-symmetric output, imaginary part the odd-symmetric one.
func (r *filterRun) response(scale, orient int) ([]complex128, error) {
	filter := r.bank.Filter(scale, orient)
	out := make([]complex128, len(r.spectrum))
	for i, v := range r.spectrum {
		out[i] = v * complex(filter[i], 0)
	}
	if err := spectral.NewFFT2(r.rows, r.cols).Sequence(out); err != nil {
		return nil, err
	}
	return out, nil
}

// responses evaluates scales [0, nscale) for each orientation in orients,
// returning eo[k][s] for orients[k]. Filters run concurrently; every result
// lands in its own slot so accumulation order stays fixed.
func (r *filterRun) responses(orients []int, nscale int) ([][][]complex128, error) {
	eo := make([][][]complex128, len(orients))
	for k := range eo {
		eo[k] = make([][]complex128, nscale)
	}

	var g errgroup.Group
	g.SetLimit(r.workers)
	for k, o := range orients {
		for s := 0; s < nscale; s++ {
			g.Go(func() error {
				resp, err := r.response(s, o)
				if err != nil {
					return fmt.Errorf("filter scale %d orientation %d: %w", s, o, err)
				}
				eo[k][s] = resp
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return eo, nil
}

// allOrientations returns 0..n-1.
func allOrientations(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// monogenicScale is the monogenic signal at one scale: the band-passed
// image and its two Riesz components.
type monogenicScale struct {
	f, h1, h2 []float64
}

// monogenic evaluates every radial filter of an isotropic bank together with
// the Riesz transform (i·u1 - u2)/radius.
func (r *filterRun) monogenic() ([]monogenicScale, error) {
	grid := r.bank.Grid
	riesz := make([]complex128, len(r.spectrum))
	for i := range riesz {
		riesz[i] = complex(-grid.U2[i], grid.U1[i]) / complex(grid.Radius[i], 0)
	}

	out := make([]monogenicScale, r.bank.NScale())
	var g errgroup.Group
	g.SetLimit(r.workers)
	for s := range out {
		g.Go(func() error {
			filter := r.bank.Radial[s]
			band := make([]complex128, len(r.spectrum))
			h := make([]complex128, len(r.spectrum))
			for i, v := range r.spectrum {
				band[i] = v * complex(filter[i], 0)
				h[i] = band[i] * riesz[i]
			}
			fft := spectral.NewFFT2(r.rows, r.cols)
			if err := fft.Sequence(band); err != nil {
				return fmt.Errorf("filter scale %d: %w", s, err)
			}
			if err := fft.Sequence(h); err != nil {
				return fmt.Errorf("riesz scale %d: %w", s, err)
			}

			m := monogenicScale{
				f:  make([]float64, len(band)),
				h1: make([]float64, len(band)),
				h2: make([]float64, len(band)),
			}
			for i := range band {
				m.f[i] = real(band[i])
				m.h1[i] = real(h[i])
				m.h2[i] = imag(h[i])
			}
			out[s] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// amplitude returns |e + io| for each sample.
func amplitude(resp []complex128) []float64 {
	out := make([]float64, len(resp))
	for i, v := range resp {
		out[i] = math.Hypot(real(v), imag(v))
	}
	return out
}

// splitPair copies a complex response into its even and odd matrices.
func splitPair(rows, cols int, resp []complex128) QuadraturePair {
	even := make([]float64, len(resp))
	odd := make([]float64, len(resp))
	for i, v := range resp {
		even[i] = real(v)
		odd[i] = imag(v)
	}
	return QuadraturePair{
		Even: mat.NewDense(rows, cols, even),
		Odd:  mat.NewDense(rows, cols, odd),
	}
}
