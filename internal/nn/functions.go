package nn

import "math"

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value > hi {
		return hi
	}
	if value < lo {
		return lo
	}
	return value
}

// Wrap folds value into the half-open range [lo, hi).
func Wrap(value, lo, hi float64) float64 {
	span := hi - lo
	if span <= 0 {
		return lo
	}
	wrapped := math.Mod(value-lo, span)
	if wrapped < 0 {
		wrapped += span
	}
	// Mod of a tiny negative number can round up to span.
	if wrapped >= span {
		wrapped = 0
	}
	return lo + wrapped
}

// WrapAngle folds an angle in radians into [-pi, pi).
func WrapAngle(angle float64) float64 {
	return Wrap(angle, -math.Pi, math.Pi)
}
