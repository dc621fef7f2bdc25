package math

import (
	stdmath "math"

	"golang.org/x/exp/constraints"
)

const K_FLOAT_EPSILON float32 = 1.192092896e-07

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Clamp01 clamps to the unit interval and reports whether the input was out of range.
func Clamp01[T constraints.Float](f T) (T, bool) {
	c := Clamp(f, 0, 1)
	return c, c != f
}

func IsNaN[T constraints.Float](f T) bool {
	return stdmath.IsNaN(float64(f))
}

func ApproxEqual[T constraints.Float](a, b, tolerance T) bool {
	return stdmath.Abs(float64(a-b)) <= float64(tolerance)
}
