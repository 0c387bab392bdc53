package ctl

import (
	"context"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"libcprobe/pkg/config"
	"libcprobe/pkg/log"
	"libcprobe/pkg/manifest"
	"libcprobe/pkg/mux/msg"
	"libcprobe/pkg/report"
	"libcprobe/pkg/run"
)

// handleRun asks the agent to execute the configured selection and
// consumes the event stream: check output goes to stdout as it
// arrives, results are verified against the local manifest and
// collected into a report.
func (c *Ctl) handleRun(ctx context.Context, hello msg.Hello) error {
	conn, err := c.sess.SendAndGetOneChannelContext(ctx, msg.RunRequest{
		Suites: c.cCfg.Suites,
		Checks: c.cCfg.Checks,
	})
	if err != nil {
		return fmt.Errorf("SendAndGetOneChannelContext(RunRequest): %s", err)
	}
	defer conn.Close()

	out := config.GetStdoutFunc(c.cfg.Deps)()
	if c.cfg.LogFile != "" {
		f, err := os.OpenFile(c.cfg.LogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("opening log file %s: %s", c.cfg.LogFile, err)
		}
		defer f.Close()
		out = io.MultiWriter(out, f)
	}

	m := c.cCfg.Manifest
	if m == nil {
		m = manifest.Default()
	}

	// The report describes the agent's platform, not ours.
	rep := report.New(c.cfg.Version)
	rep.GOOS = hello.OS
	rep.GOARCH = hello.Arch

	if err := c.consumeResults(ctx, conn, m, rep, out); err != nil {
		return err
	}

	log.InfoMsg("%s\n", rep.Summary())

	if c.cCfg.Report != "" {
		if err := rep.WriteFile(c.cCfg.Report); err != nil {
			return fmt.Errorf("writing report: %s", err)
		}
		log.VerboseMsg("Report written to %s\n", c.cCfg.Report)
	}

	if c.cCfg.Strict && !rep.Ok() {
		return fmt.Errorf("%d of %d checks did not pass", rep.Failed+rep.Errored, len(rep.Checks))
	}

	return nil
}

// consumeResults decodes CheckDone events until the terminating
// RunDone arrives. Checks the local manifest marks skipped are
// recorded as such and their output is suppressed, matching what a
// local run would have printed.
func (c *Ctl) consumeResults(ctx context.Context, conn io.Reader, m *manifest.Manifest, rep *report.Report, out io.Writer) error {
	dec := gob.NewDecoder(conn)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var ev msg.Message
		if err := dec.Decode(&ev); err != nil {
			if err == io.EOF {
				return fmt.Errorf("result stream ended before the run completed")
			}
			return fmt.Errorf("decoding result event: %s", err)
		}

		switch event := ev.(type) {
		case msg.CheckDone:
			rep.Add(c.gradeResult(event, m, out))
		case msg.RunDone:
			if event.Err != "" {
				return fmt.Errorf("agent rejected the run: %s", event.Err)
			}
			rep.DurationMS = event.DurationMS
			rep.Usage = report.Usage{
				UserTimeMS:   event.UserTimeMS,
				SystemTimeMS: event.SystemTimeMS,
				MaxRSSKB:     event.MaxRSSKB,
			}
			return nil
		default:
			return fmt.Errorf("unsupported result event '%s', this is a bug", ev.MsgType())
		}
	}
}

// gradeResult turns one CheckDone event into a report entry, streaming
// its output along the way.
func (c *Ctl) gradeResult(event msg.CheckDone, m *manifest.Manifest, out io.Writer) report.CheckResult {
	res := report.CheckResult{
		Suite:      event.Suite,
		Check:      event.Check,
		Output:     event.Output,
		DurationMS: event.DurationMS,
	}

	if m.Skip(event.Suite, event.Check) {
		res.Status = report.StatusSkip
		res.Output = ""
		return res
	}

	if event.Output != "" {
		_, _ = io.WriteString(out, event.Output)
	}

	if event.Err != "" {
		res.Status = report.StatusError
		res.Error = event.Err
		log.ErrorMsg("Check %s/%s: %s\n", event.Suite, event.Check, event.Err)
		return res
	}

	res = run.Verify(res, m)
	if res.Status == report.StatusFail {
		log.ErrorMsg("Check %s/%s: output mismatch\n", event.Suite, event.Check)
		log.VerboseMsg("got:  %q\n", res.Output)
		log.VerboseMsg("want: %q\n", res.Expected)
	}

	return res
}
