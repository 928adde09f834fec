package check

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamError(t *testing.T) {
	err := Param("nscale", 0, "a positive integer")
	assert.EqualError(t, err, "nscale = 0: must be a positive integer")
	assert.ErrorIs(t, err, ErrInvalid)

	var pe *ParamError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "nscale", pe.Name)
}

func TestChecks(t *testing.T) {
	nan := math.NaN()
	inf := math.Inf(1)
	tests := []struct {
		name string
		err  error
		ok   bool
	}{
		{"positive ok", Positive("n", 1), true},
		{"positive zero", Positive("n", 0), false},
		{"closed lower bound", Closed("c", 0, 0, 0.5), true},
		{"closed upper bound", Closed("c", 0.5, 0, 0.5), true},
		{"closed above", Closed("c", 0.51, 0, 0.5), false},
		{"closed nan", Closed("c", nan, 0, 0.5), false},
		{"open inside", Open("s", 0.55, 0, 1), true},
		{"open at bound", Open("s", 1, 0, 1), false},
		{"above ok", Above("m", 2.1, 1), true},
		{"above at bound", Above("m", 1, 1), false},
		{"above inf", Above("m", inf, 1), false},
		{"non-negative zero", NonNegative("k", 0), true},
		{"non-negative negative", NonNegative("k", -0.1), false},
		{"non-negative nan", NonNegative("k", nan), false},
		{"integer ok", Integer("o", 15), true},
		{"integer fractional", Integer("o", 2.5), false},
		{"integer zero", Integer("o", 0), false},
		{"integer inf", Integer("o", inf), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.ok {
				assert.NoError(t, tt.err)
			} else {
				assert.ErrorIs(t, tt.err, ErrInvalid)
			}
		})
	}
}

func TestFirst(t *testing.T) {
	assert.NoError(t, First())
	assert.NoError(t, First(nil, nil))

	a := Param("a", 1, "x")
	b := Param("b", 2, "y")
	assert.Same(t, a, First(nil, a, b))
}
