package agent

import (
	"context"
	"encoding/gob"
	"fmt"
	"time"

	"libcprobe/pkg/log"
	"libcprobe/pkg/mux/msg"
	"libcprobe/pkg/report"
	"libcprobe/pkg/run"
)

// handleRunAsync serves one run request in the background. Run requests
// are independent of each other and of console sessions, so they are
// not gated.
func (a *Agent) handleRunAsync(ctx context.Context, m msg.RunRequest) {
	go func() {
		if err := a.handleRun(ctx, m); err != nil {
			log.ErrorMsg("Running checks for %s: %s\n", a.remoteAddr, err)
		}
	}()
}

// handleRun executes the requested checks and streams one CheckDone
// event per check over the data channel the controller opened,
// terminated by a RunDone carrying timing and resource usage. The
// agent only reports what happened; judging the output is the
// controller's business.
func (a *Agent) handleRun(ctx context.Context, m msg.RunRequest) error {
	conn, err := a.sess.GetOneChannelContext(ctx)
	if err != nil {
		return fmt.Errorf("GetOneChannelContext() for results: %s", err)
	}
	defer conn.Close()

	enc := gob.NewEncoder(conn)
	send := func(ev msg.Message) error {
		return enc.Encode(&ev)
	}

	items, err := run.Select(m.Suites, m.Checks)
	if err != nil {
		// Tell the controller why nothing will arrive.
		if serr := send(msg.RunDone{Err: err.Error()}); serr != nil {
			return fmt.Errorf("sending run rejection: %s", serr)
		}
		return fmt.Errorf("selecting checks: %s", err)
	}

	log.VerboseMsg("Running %d checks for %s\n", len(items), a.remoteAddr)

	start := time.Now()
	for _, it := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		output, durationMS, runErr := run.Execute(it.Check)

		ev := msg.CheckDone{
			Suite:      it.Suite,
			Check:      it.Check.Name,
			Output:     output,
			DurationMS: durationMS,
		}
		if runErr != nil {
			ev.Err = runErr.Error()
		}

		if err := send(ev); err != nil {
			return fmt.Errorf("sending result for %s/%s: %s", it.Suite, it.Check.Name, err)
		}
	}

	usage := report.CaptureUsage()
	if err := send(msg.RunDone{
		DurationMS:   float64(time.Since(start)) / float64(time.Millisecond),
		UserTimeMS:   usage.UserTimeMS,
		SystemTimeMS: usage.SystemTimeMS,
		MaxRSSKB:     usage.MaxRSSKB,
	}); err != nil {
		return fmt.Errorf("sending run summary: %s", err)
	}

	return nil
}
