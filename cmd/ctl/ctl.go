// Package ctl provides the ctl command, the controlling side of a
// remote probing session. The controller can connect to or listen for
// agents.
package ctl

import (
	"github.com/urfave/cli/v3"

	"libcprobe/cmd/ctlconnect"
	"libcprobe/cmd/ctllisten"
)

// GetCommand returns the CLI command for ctl mode with its subcommands.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "ctl",
		Usage: "Drive a remote agent",
		Commands: []*cli.Command{
			ctllisten.GetCommand(),
			ctlconnect.GetCommand(),
		},
	}
}
