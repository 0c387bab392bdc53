// Package run implements the run command, which executes the built-in
// checks locally and prints their canonical output on stdout.
package run

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"libcprobe/cmd/shared"
	"libcprobe/cmd/version"
	"libcprobe/pkg/log"
	"libcprobe/pkg/manifest"
	"libcprobe/pkg/report"
	"libcprobe/pkg/run"
)

// GetCommand returns the CLI command for local runs.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run checks locally and print their output",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log.SetVerbose(cmd.Bool(shared.VerboseFlag))

			cfg := &run.Config{
				Suites:  cmd.StringSlice(shared.SuiteFlag),
				Checks:  cmd.StringSlice(shared.CheckFlag),
				Version: version.Version,
			}

			if path := cmd.String(shared.ManifestFlag); path != "" {
				m, err := manifest.Load(path)
				if err != nil {
					return fmt.Errorf("loading manifest: %s", err)
				}
				cfg.Manifest = m
			}

			rep, err := run.Run(ctx, cfg, os.Stdout)
			if err != nil {
				return err
			}

			// With stdout on a terminal the canonical stream is for human
			// eyes and a summary helps. Piped output stays bare so it can
			// be diffed byte for byte.
			if term.IsTerminal(int(os.Stdout.Fd())) {
				log.InfoMsg("%s\n", rep.Summary())
			}

			for _, res := range rep.Checks {
				switch res.Status {
				case report.StatusError:
					log.ErrorMsg("Check %s/%s: %s\n", res.Suite, res.Check, res.Error)
				case report.StatusFail:
					log.ErrorMsg("Check %s/%s: output mismatch\n", res.Suite, res.Check)
					log.VerboseMsg("got:  %q\n", res.Output)
					log.VerboseMsg("want: %q\n", res.Expected)
				}
			}

			if path := cmd.String(shared.ReportFlag); path != "" {
				if err := rep.WriteFile(path); err != nil {
					return err
				}
			}

			if cmd.Bool(shared.StrictFlag) && !rep.Ok() {
				return fmt.Errorf("%d of %d checks did not pass", rep.Failed+rep.Errored, len(rep.Checks))
			}

			return nil
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetRunFlags()...)
	flags = append(flags, &cli.BoolFlag{
		Name:     shared.VerboseFlag,
		Aliases:  []string{"v"},
		Usage:    "Verbose error logging",
		Value:    false,
		Required: false,
	})

	return flags
}
