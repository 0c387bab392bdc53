// Package report collects the outcome of a run into a machine-readable
// document. Reports are written as indented JSON so they can be diffed
// and archived next to the fixtures they verify.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/google/uuid"
)

// Status classifies the outcome of a single check.
type Status string

const (
	StatusPass  Status = "pass"  // output matched the expectation
	StatusFail  Status = "fail"  // output differed from the expectation
	StatusSkip  Status = "skip"  // excluded by the manifest
	StatusError Status = "error" // the check could not execute
)

// CheckResult records one executed check.
type CheckResult struct {
	Suite      string  `json:"suite"`
	Check      string  `json:"check"`
	Status     Status  `json:"status"`
	Output     string  `json:"output"`
	Expected   string  `json:"expected,omitempty"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Usage holds process resource usage captured when the run finishes.
// On platforms without getrusage(2) all fields stay zero.
type Usage struct {
	UserTimeMS   int64 `json:"user_time_ms"`
	SystemTimeMS int64 `json:"system_time_ms"`
	MaxRSSKB     int64 `json:"max_rss_kb"`
}

// Report is the full outcome of one run.
type Report struct {
	ID         string        `json:"id"`
	Version    string        `json:"version"`
	GOOS       string        `json:"goos"`
	GOARCH     string        `json:"goarch"`
	StartedAt  time.Time     `json:"started_at"`
	DurationMS float64       `json:"duration_ms"`
	Checks     []CheckResult `json:"checks"`
	Passed     int           `json:"passed"`
	Failed     int           `json:"failed"`
	Skipped    int           `json:"skipped"`
	Errored    int           `json:"errored"`
	Usage      Usage         `json:"usage"`
}

// New creates an empty report with a fresh run ID.
func New(version string) *Report {
	return &Report{
		ID:        uuid.New().String(),
		Version:   version,
		GOOS:      runtime.GOOS,
		GOARCH:    runtime.GOARCH,
		StartedAt: time.Now(),
	}
}

// Add appends the result of one check and updates the tallies.
func (r *Report) Add(res CheckResult) {
	r.Checks = append(r.Checks, res)

	switch res.Status {
	case StatusPass:
		r.Passed++
	case StatusFail:
		r.Failed++
	case StatusSkip:
		r.Skipped++
	case StatusError:
		r.Errored++
	}
}

// Finish seals the report with the total duration and resource usage.
func (r *Report) Finish() {
	r.DurationMS = float64(time.Since(r.StartedAt)) / float64(time.Millisecond)
	r.Usage = CaptureUsage()
}

// Ok reports whether no check failed or errored.
func (r *Report) Ok() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Summary renders a one-line account of the run.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d checks: %d passed, %d failed, %d skipped, %d errored in %.0fms",
		len(r.Checks), r.Passed, r.Failed, r.Skipped, r.Errored, r.DurationMS)
}

// WriteFile writes the report to path as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %s", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing report: %s", err)
	}
	return nil
}
