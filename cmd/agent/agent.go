// Package agent provides the agent command, the executing side of a
// remote probing session. The agent can connect to or listen for
// controllers.
package agent

import (
	"github.com/urfave/cli/v3"

	"libcprobe/cmd/agentconnect"
	"libcprobe/cmd/agentlisten"
)

// GetCommand returns the CLI command for agent mode with its subcommands.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Execute checks for a remote controller",
		Commands: []*cli.Command{
			agentlisten.GetCommand(),
			agentconnect.GetCommand(),
		},
	}
}
