// Package ctlconnect implements the ctl connect command, which
// connects to a listening agent and drives it.
package ctlconnect

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"libcprobe/cmd/shared"
	"libcprobe/cmd/version"
	"libcprobe/pkg/config"
	"libcprobe/pkg/entrypoint"
	"libcprobe/pkg/log"
)

// GetCommand returns the CLI command for ctl connect mode.
func GetCommand() *cli.Command {
	return &cli.Command{
		Name:        "connect",
		Usage:       "Connect to a remote agent",
		Description: shared.GetBaseDescription(),
		ArgsUsage:   shared.GetArgsUsage(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			args := cmd.Args()
			if args.Len() != 1 {
				return fmt.Errorf("must provide exactly one argument, got %d (%s)", args.Len(), strings.Join(args.Slice(), ", "))
			}

			proto, host, port, err := shared.ParseTransport(args.Get(0))
			if err != nil {
				return fmt.Errorf("parsing transport: %s", err)
			}
			if host == "" {
				return fmt.Errorf("parsing transport: %s: specify a host", args.Get(0))
			}

			log.SetVerbose(cmd.Bool(shared.VerboseFlag))

			cfg := &config.Shared{
				Protocol: proto,
				Host:     host,
				Port:     port,
				SSL:      cmd.Bool(shared.SSLFlag),
				Key:      cmd.String(shared.KeyFlag),
				Verbose:  cmd.Bool(shared.VerboseFlag),
				LogFile:  cmd.String(shared.LogFileFlag),
				Timeout:  time.Duration(cmd.Int(shared.TimeoutFlag)) * time.Millisecond,
				ID:       uuid.NewString(),
				Version:  version.Version,
			}

			cCfg := &config.Ctl{
				Suites:  cmd.StringSlice(shared.SuiteFlag),
				Checks:  cmd.StringSlice(shared.CheckFlag),
				Report:  cmd.String(shared.ReportFlag),
				Strict:  cmd.Bool(shared.StrictFlag),
				Console: cmd.Bool(shared.ConsoleFlag),
			}
			cCfg.LoadManifest(cmd.String(shared.ManifestFlag))

			if errors := config.Validate(cfg, cCfg); len(errors) > 0 {
				log.ErrorMsg("Argument validation errors:\n")
				for _, err := range errors {
					log.ErrorMsg(" - %s\n", err)
				}
				return fmt.Errorf("exiting")
			}

			return entrypoint.CtlConnect(ctx, cfg, cCfg)
		},
		Flags: getFlags(),
	}
}

func getFlags() []cli.Flag {
	flags := []cli.Flag{}

	flags = append(flags, shared.GetCommonFlags()...)
	flags = append(flags, shared.GetRunFlags()...)
	flags = append(flags, shared.GetCtlFlags()...)

	return flags
}
