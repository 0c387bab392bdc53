// Package run executes checks and verifies their output against the
// manifest. It is used directly for local runs and by the controller
// and agent handlers for remote runs.
package run

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"libcprobe/pkg/check"
	"libcprobe/pkg/manifest"
	"libcprobe/pkg/report"
)

// Item is a single check scheduled for execution.
type Item struct {
	Suite string
	Check check.Check
}

// Select resolves suite and check names to the checks to run, in
// registry order. Empty selections mean everything. A check matched by
// both a suite and a check name appears once. Unknown names are an
// error.
func Select(suites, checks []string) ([]Item, error) {
	wantSuite := make(map[string]bool, len(suites))
	for _, name := range suites {
		if _, ok := check.LookupSuite(name); !ok {
			return nil, fmt.Errorf("unknown suite '%s'", name)
		}
		wantSuite[name] = true
	}

	wantCheck := make(map[string]bool, len(checks))
	for _, name := range checks {
		if _, _, ok := check.LookupCheck(name); !ok {
			return nil, fmt.Errorf("unknown check '%s'", name)
		}
		wantCheck[name] = true
	}

	all := len(suites) == 0 && len(checks) == 0

	var out []Item
	for _, s := range check.Suites() {
		for _, c := range s.Checks {
			if all || wantSuite[s.Name] || wantCheck[c.Name] {
				out = append(out, Item{Suite: s.Name, Check: c})
			}
		}
	}

	return out, nil
}

// Execute runs a single check and captures its output and duration.
func Execute(c check.Check) (string, float64, error) {
	var buf bytes.Buffer

	start := time.Now()
	err := c.Run(&buf)
	durationMS := float64(time.Since(start)) / float64(time.Millisecond)

	return buf.String(), durationMS, err
}

// Config selects what Run executes and how results are judged.
type Config struct {
	// Suites and Checks restrict the selection. Empty means all.
	Suites []string
	Checks []string

	// Manifest holds the expected outputs. Nil means built-in defaults.
	Manifest *manifest.Manifest

	// Version is recorded in the report.
	Version string
}

// Run executes the selected checks, streams their combined output to
// out and verifies each against the manifest. A failing check never
// stops the run. The returned report covers every selected check.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*report.Report, error) {
	items, err := Select(cfg.Suites, cfg.Checks)
	if err != nil {
		return nil, fmt.Errorf("selecting checks: %s", err)
	}

	m := cfg.Manifest
	if m == nil {
		m = manifest.Default()
	}

	rep := report.New(cfg.Version)

	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rep.Add(runOne(it, m, out))
	}

	rep.Finish()
	return rep, nil
}

func runOne(it Item, m *manifest.Manifest, out io.Writer) report.CheckResult {
	res := report.CheckResult{
		Suite: it.Suite,
		Check: it.Check.Name,
	}

	if m.Skip(it.Suite, it.Check.Name) {
		res.Status = report.StatusSkip
		return res
	}

	output, durationMS, err := Execute(it.Check)
	res.Output = output
	res.DurationMS = durationMS

	if out != nil {
		_, _ = io.WriteString(out, output)
	}

	if err != nil {
		res.Status = report.StatusError
		res.Error = err.Error()
		return res
	}

	return Verify(res, m)
}

// Verify grades an executed result against the manifest. It assumes
// the result carries suite, check and output, and fills in status and,
// on mismatch, the expectation.
func Verify(res report.CheckResult, m *manifest.Manifest) report.CheckResult {
	expected, ok := m.Expected(res.Suite, res.Check)
	if !ok || res.Output != expected {
		res.Status = report.StatusFail
		res.Expected = expected
		return res
	}

	res.Status = report.StatusPass
	return res
}
