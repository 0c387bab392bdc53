// Package manifest resolves the expected output for every check. The
// defaults come from the check definitions themselves. A YAML file can
// override individual expectations or skip checks entirely, for
// platforms whose libc renders some output differently.
package manifest

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"libcprobe/pkg/check"
)

// Entry overrides the treatment of a single check.
type Entry struct {
	Suite  string  `yaml:"suite"`
	Check  string  `yaml:"check"`
	Expect *string `yaml:"expect"` // nil keeps the built-in expectation
	Skip   bool    `yaml:"skip"`
}

type overrides struct {
	Checks []Entry `yaml:"checks"`
}

type key struct {
	suite string
	check string
}

// Manifest answers what output a check must produce and whether it is
// skipped.
type Manifest struct {
	expect map[key]string
	skip   map[key]bool
}

// Default returns the manifest holding the built-in expectations.
func Default() *Manifest {
	m := &Manifest{
		expect: make(map[key]string),
		skip:   make(map[key]bool),
	}
	for _, s := range check.Suites() {
		for _, c := range s.Checks {
			m.expect[key{suite: s.Name, check: c.Name}] = c.Expect
		}
	}
	return m
}

// Load reads a YAML override file and applies it on top of the built-in
// expectations. Entries naming unknown checks are rejected so that a
// typo cannot silently verify nothing.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %s", err)
	}

	var f overrides
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing manifest: %s", err)
	}

	m := Default()
	for _, e := range f.Checks {
		k := key{suite: e.Suite, check: e.Check}
		if _, ok := m.expect[k]; !ok {
			return nil, fmt.Errorf("manifest names unknown check %s/%s", e.Suite, e.Check)
		}

		if e.Expect != nil {
			m.expect[k] = *e.Expect
		}
		if e.Skip {
			m.skip[k] = true
		}
	}
	return m, nil
}

// Expected returns the expected output for the given check.
func (m *Manifest) Expected(suite, check string) (string, bool) {
	v, ok := m.expect[key{suite: suite, check: check}]
	return v, ok
}

// Skip reports whether the given check is marked skipped.
func (m *Manifest) Skip(suite, check string) bool {
	return m.skip[key{suite: suite, check: check}]
}
