// Package check holds the validation error shared by the spectral, filterbank
// and phasepack packages.
package check

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalid is wrapped by every parameter validation failure.
var ErrInvalid = errors.New("invalid parameter")

// ParamError describes a rejected parameter together with the accepted range.
type ParamError struct {
	Name  string
	Value any
	Want  string
}

func (e *ParamError) Error() string {
	return fmt.Sprintf("%s = %v: must be %s", e.Name, e.Value, e.Want)
}

func (e *ParamError) Unwrap() error { return ErrInvalid }

// Param returns a ParamError for name.
func Param(name string, value any, want string) error {
	return &ParamError{Name: name, Value: value, Want: want}
}

// Positive rejects n < 1.
func Positive(name string, n int) error {
	if n < 1 {
		return Param(name, n, "a positive integer")
	}
	return nil
}

// Closed rejects v outside [lo, hi] and NaN.
func Closed(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v < lo || v > hi {
		return Param(name, v, fmt.Sprintf("in [%g, %g]", lo, hi))
	}
	return nil
}

// Open rejects v outside (lo, hi) and NaN.
func Open(name string, v, lo, hi float64) error {
	if math.IsNaN(v) || v <= lo || v >= hi {
		return Param(name, v, fmt.Sprintf("in (%g, %g)", lo, hi))
	}
	return nil
}

// Above rejects v <= lo, NaN and +Inf.
func Above(name string, v, lo float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= lo {
		return Param(name, v, fmt.Sprintf("finite and > %g", lo))
	}
	return nil
}

// NonNegative rejects v < 0, NaN and +Inf.
func NonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return Param(name, v, "finite and >= 0")
	}
	return nil
}

// Integer rejects non-integral or non-positive v.
func Integer(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 1 {
		return Param(name, v, "a positive integer")
	}
	return nil
}

// First returns the first non-nil error.
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
