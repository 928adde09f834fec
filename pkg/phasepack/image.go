package phasepack

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/mat"

	"phasepack/pkg/spectral"
)

// FromSlice promotes a row-major grid of any numeric type to float64.
func FromSlice[T constraints.Integer | constraints.Float](rows, cols int, data []T) (*mat.Dense, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d grid", ErrInvalidImage, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %d samples for a %dx%d grid", ErrInvalidImage, len(data), rows, cols)
	}
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}
	return mat.NewDense(rows, cols, out), nil
}

// FromImage converts an image to its luminance in [0, 1].
func FromImage(img image.Image) *mat.Dense {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	data := make([]float64, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			data[y*width+x] = float64(g.Y) / 65535.0
		}
	}
	return mat.NewDense(height, width, data)
}

// prepare copies img into a row-major slice, rejecting empty and
// non-finite input.
func prepare(img mat.Matrix) (rows, cols int, data []float64, err error) {
	if img == nil {
		return 0, 0, nil, fmt.Errorf("%w: nil", ErrInvalidImage)
	}
	rows, cols, data = spectral.Raw(img)
	if rows == 0 || cols == 0 {
		return 0, 0, nil, fmt.Errorf("%w: empty", ErrInvalidImage)
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, nil, fmt.Errorf("%w: sample %v at (%d, %d)", ErrInvalidImage, v, i/cols, i%cols)
		}
	}
	return rows, cols, data, nil
}
