package spectral

import "math"

// DCRadius replaces the zero radius at the DC entry of a filter-ready grid so
// that log(radius) and divisions by radius stay finite.
const DCRadius = 1.0

// FrequencyGrid holds the normalised frequency coordinates of every entry of
// an unshifted rows x cols spectrum (DC at index 0).
type FrequencyGrid struct {
	Rows, Cols int

	// U1 and U2 are the horizontal and vertical frequencies, in cycles per
	// pixel, ranging over [-0.5, 0.5).
	U1, U2 []float64

	// Radius is the distance from DC, 0.5 at Nyquist. Radius[0] is DCRadius.
	Radius []float64

	// Theta is atan2(-U2, U1), the angle of each frequency with y pointing up.
	Theta []float64
}

// NewFrequencyGrid builds the frequency grid matching a rows x cols transform.
func NewFrequencyGrid(rows, cols int) *FrequencyGrid {
	u1 := axisFrequencies(cols)
	u2 := axisFrequencies(rows)

	g := &FrequencyGrid{
		Rows:   rows,
		Cols:   cols,
		U1:     make([]float64, rows*cols),
		U2:     make([]float64, rows*cols),
		Radius: make([]float64, rows*cols),
		Theta:  make([]float64, rows*cols),
	}
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			idx := i*cols + j
			x, y := u1[j], u2[i]
			g.U1[idx] = x
			g.U2[idx] = y
			g.Radius[idx] = math.Hypot(x, y)
			g.Theta[idx] = math.Atan2(-y, x)
		}
	}
	if len(g.Radius) > 0 {
		g.Radius[0] = DCRadius
	}
	return g
}

// axisFrequencies returns the ifftshifted frequency values along one axis.
// Odd lengths are normalised by n-1 so that the extreme values are +-0.5.
func axisFrequencies(n int) []float64 {
	vals := make([]float64, n)
	if n == 1 {
		return vals
	}
	for k := 0; k < n; k++ {
		if n%2 == 0 {
			vals[k] = float64(k-n/2) / float64(n)
		} else {
			vals[k] = float64(k-(n-1)/2) / float64(n-1)
		}
	}
	return ifftshift(vals)
}

func ifftshift(v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	shift := n / 2
	for i := range v {
		out[i] = v[(i+shift)%n]
	}
	return out
}
