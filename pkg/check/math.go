package check

import (
	"fmt"
	"io"

	"libcprobe/pkg/libc"
)

func mathSuite() Suite {
	return Suite{
		Name: "math",
		Info: "floating point math: floor, ceil, sqrt, exp",
		Checks: []Check{
			{
				Name:   "floor",
				Info:   "round two floats toward negative infinity",
				Expect: "floor testing below:Value1 = -2.000000 \nValue2 = 2.000000 \n",
				Run:    runFloor,
			},
			{
				Name:   "ceil",
				Info:   "round two floats toward positive infinity",
				Expect: "ceil testing below:Value1 = -1.000000 \nValue2 = 3.000000 \n",
				Run:    runCeil,
			},
			{
				Name:   "sqrt",
				Info:   "take square roots, one of a negative number",
				Expect: "sqrt testing below:Value1 = nan \nValue2 = 1.673320 \n",
				Run:    runSqrt,
			},
			{
				Name:   "exp",
				Info:   "raise e to the first and second power",
				Expect: "exp testing below:The exponential value of 1.000000 is 2.718282\nThe exponential value of 2.000000 is 7.389056\n",
				Run:    runExp,
			},
		},
	}
}

// The fixtures declare val1 and val2 as C floats. They are widened to
// double at each call site, as C's argument promotion does, so the
// printed values carry the float32 representation error.

// runFloor floors one value below and one above zero.
func runFloor(w io.Writer) error {
	var val1, val2 float32 = -1.6, 2.8

	fmt.Fprintf(w, "floor testing below:")
	fmt.Fprintf(w, "Value1 = %s \n", libc.FormatDouble(libc.Floor(float64(val1))))
	fmt.Fprintf(w, "Value2 = %s \n", libc.FormatDouble(libc.Floor(float64(val2))))

	return nil
}

// runCeil ceils the same two values.
func runCeil(w io.Writer) error {
	var val1, val2 float32 = -1.6, 2.8

	fmt.Fprintf(w, "ceil testing below:")
	fmt.Fprintf(w, "Value1 = %s \n", libc.FormatDouble(libc.Ceil(float64(val1))))
	fmt.Fprintf(w, "Value2 = %s \n", libc.FormatDouble(libc.Ceil(float64(val2))))

	return nil
}

// runSqrt takes the square roots. The first input is negative, so the
// first line must render NaN.
func runSqrt(w io.Writer) error {
	var val1, val2 float32 = -1.6, 2.8

	fmt.Fprintf(w, "sqrt testing below:")
	fmt.Fprintf(w, "Value1 = %s \n", libc.FormatDouble(libc.Sqrt(float64(val1))))
	fmt.Fprintf(w, "Value2 = %s \n", libc.FormatDouble(libc.Sqrt(float64(val2))))

	return nil
}

// runExp prints e^x for x = 1 and x = 2. The inputs are doubles here,
// so the printed arguments are exact.
func runExp(w io.Writer) error {
	x := float64(1)

	fmt.Fprintf(w, "exp testing below:")
	fmt.Fprintf(w, "The exponential value of %s is %s\n", libc.FormatDouble(x), libc.FormatDouble(libc.Exp(x)))
	fmt.Fprintf(w, "The exponential value of %s is %s\n", libc.FormatDouble(x+1), libc.FormatDouble(libc.Exp(x+1)))

	return nil
}
