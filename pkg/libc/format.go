package libc

import (
	"math"
	"strconv"
)

// FormatDouble renders v the way printf's "%f" conversion does in the C
// locale: six fractional digits, correctly rounded. Infinities render
// as "inf" and "-inf". NaN renders as "nan" without a sign regardless
// of the sign bit, the way musl's printf prints it.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}
