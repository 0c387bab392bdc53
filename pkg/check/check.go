// Package check defines the built-in probes and groups them into
// suites. Each check reproduces one sequence of C library calls and
// writes the exact bytes its C counterpart prints, so the output of a
// run can be compared against a known-good stream.
package check

import "io"

// Check is a single probe. Run writes the probe's diagnostic output to
// w and returns an error only when the probe cannot execute at all.
// Output that merely differs from Expect is the verifier's business,
// not the check's.
type Check struct {
	Name   string
	Info   string
	Expect string // canonical output, byte for byte
	Run    func(w io.Writer) error
}

// Suite is an ordered group of checks run together.
type Suite struct {
	Name   string
	Info   string
	Checks []Check
}

// Suites returns the built-in suites in canonical order. A full run
// executes them front to back with checks in declaration order, which
// makes the concatenated output reproducible.
func Suites() []Suite {
	return []Suite{
		stringSuite(),
		mathSuite(),
	}
}

// SuiteNames returns the names of all built-in suites in canonical order.
func SuiteNames() []string {
	var names []string
	for _, s := range Suites() {
		names = append(names, s.Name)
	}
	return names
}

// LookupSuite returns the built-in suite with the given name.
func LookupSuite(name string) (Suite, bool) {
	for _, s := range Suites() {
		if s.Name == name {
			return s, true
		}
	}
	return Suite{}, false
}

// LookupCheck returns the check with the given name along with the
// suite containing it. Check names are unique across suites.
func LookupCheck(name string) (Suite, Check, bool) {
	for _, s := range Suites() {
		for _, c := range s.Checks {
			if c.Name == name {
				return s, c, true
			}
		}
	}
	return Suite{}, Check{}, false
}
