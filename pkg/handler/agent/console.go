package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"libcprobe/pkg/check"
	"libcprobe/pkg/log"
	"libcprobe/pkg/run"
)

// handleConsoleAsync serves one console attachment in the background.
// Only one console session may be active at a time; a second attach
// attempt is turned away so two controllers cannot interleave their
// output on the same process.
func (a *Agent) handleConsoleAsync(ctx context.Context) {
	go func() {
		if err := a.handleConsole(ctx); err != nil {
			log.ErrorMsg("Console session with %s: %s\n", a.remoteAddr, err)
		}
	}()
}

func (a *Agent) handleConsole(ctx context.Context) error {
	conn, err := a.sess.GetOneChannelContext(ctx)
	if err != nil {
		return fmt.Errorf("GetOneChannelContext() for console: %s", err)
	}
	defer conn.Close()

	if a.cfg.Deps != nil && a.cfg.Deps.ConnSem != nil {
		if err := a.cfg.Deps.ConnSem.Acquire(ctx); err != nil {
			fmt.Fprintf(conn, "console busy, try again later\n")
			return fmt.Errorf("acquiring console slot: %s", err)
		}
		defer a.cfg.Deps.ConnSem.Release()
	}

	log.InfoMsg("Console session with %s opened\n", a.remoteAddr)
	defer log.InfoMsg("Console session with %s closed\n", a.remoteAddr)

	return consoleLoop(ctx, conn, conn)
}

// consoleLoop reads commands line by line and answers on w. It returns
// when the controller sends quit, the input ends, or ctx is cancelled.
func consoleLoop(ctx context.Context, r io.Reader, w io.Writer) error {
	fmt.Fprintf(w, "libcprobe console, commands: list | run <suite|check> | quit\n")

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "list":
			consoleList(w)
		case "run":
			if len(fields) != 2 {
				fmt.Fprintf(w, "usage: run <suite|check>\n")
				continue
			}
			consoleRun(w, fields[1])
		case "quit", "exit":
			return nil
		default:
			fmt.Fprintf(w, "unknown command '%s', try: list | run <suite|check> | quit\n", fields[0])
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading command: %s", err)
	}
	return nil
}

// consoleList prints every suite and its checks.
func consoleList(w io.Writer) {
	for _, s := range check.Suites() {
		fmt.Fprintf(w, "%s - %s\n", s.Name, s.Info)
		for _, c := range s.Checks {
			fmt.Fprintf(w, "  %s - %s\n", c.Name, c.Info)
		}
	}
}

// consoleRun executes one suite or check by name and prints its raw
// output, followed by a blank line so consecutive runs stay readable.
func consoleRun(w io.Writer, name string) {
	var items []run.Item
	var err error

	if _, ok := check.LookupSuite(name); ok {
		items, err = run.Select([]string{name}, nil)
	} else {
		items, err = run.Select(nil, []string{name})
	}
	if err != nil {
		fmt.Fprintf(w, "%s\n", err)
		return
	}

	for _, it := range items {
		output, _, runErr := run.Execute(it.Check)
		io.WriteString(w, output)
		if runErr != nil {
			fmt.Fprintf(w, "check %s failed: %s", it.Check.Name, runErr)
		}
		fmt.Fprintf(w, "\n")
	}
}
