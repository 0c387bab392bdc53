// Package suites implements the suites command, which lists the
// built-in suites and their checks.
package suites

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"libcprobe/pkg/check"
)

// GetCommand returns the CLI command listing suites and checks.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:  "suites",
		Usage: "List the built-in suites and their checks",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			for _, s := range check.Suites() {
				fmt.Printf("%s - %s\n", s.Name, s.Info)
				for _, c := range s.Checks {
					fmt.Printf("  %s - %s\n", c.Name, c.Info)
				}
			}
			return nil
		},
		Flags: []cli.Flag{},
	}
}
