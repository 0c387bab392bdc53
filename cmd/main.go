package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"libcprobe/cmd/agent"
	"libcprobe/cmd/ctl"
	runcmd "libcprobe/cmd/run"
	"libcprobe/cmd/shared"
	"libcprobe/cmd/suites"
	"libcprobe/cmd/version"
	"libcprobe/pkg/log"
)

func main() {
	root := &cli.Command{
		Name:  "libcprobe",
		Usage: "C standard library conformance probe",
		Commands: []*cli.Command{
			runcmd.GetCommand(),
			suites.GetCommand(),
			ctl.GetCommand(),
			agent.GetCommand(),
			version.GetCommand(),
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	shared.SetupSignalHandling(cancel)

	if err := root.Run(ctx, os.Args); err != nil {
		log.ErrorMsg("%s\n", err)
		os.Exit(1)
	}
}
