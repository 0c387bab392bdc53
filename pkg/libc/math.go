package libc

import "math"

// The <math.h> functions the checks probe. C computes all of them on
// doubles, so they take and return float64. Fixture values declared as
// C float must be widened at the call site, mirroring the promotion C
// applies when a float is passed to these functions.

// Floor returns the largest integer value not greater than x, like floor(3).
func Floor(x float64) float64 {
	return math.Floor(x)
}

// Ceil returns the smallest integer value not less than x, like ceil(3).
func Ceil(x float64) float64 {
	return math.Ceil(x)
}

// Sqrt returns the square root of x, like sqrt(3). For negative x the
// result is NaN.
func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

// Exp returns e raised to the power x, like exp(3).
func Exp(x float64) float64 {
	return math.Exp(x)
}
