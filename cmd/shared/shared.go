// Package shared provides common CLI flag definitions and utility
// functions used across libcprobe's command-line interface.
package shared

import (
	"strings"

	"github.com/urfave/cli/v3"
)

const categoryCommon = "common"

// SSLFlag is the name of the flag to enable TLS encryption.
const SSLFlag = "ssl"

// KeyFlag is the name of the flag to specify the mTLS authentication key.
const KeyFlag = "key"

// VerboseFlag is the name of the flag to enable verbose error logging.
const VerboseFlag = "verbose"

// TimeoutFlag is the name of the flag to specify operation timeout in milliseconds.
const TimeoutFlag = "timeout"

// GetBaseDescription returns the base description text for transport
// specifications used in CLI commands.
func GetBaseDescription() string {
	return strings.Join([]string{
		"Specify transport like this: tcp://127.0.0.1:123 (supports tcp|ws|wss|udp)",
		"You can omit the host when listening to bind to all interfaces.",
	}, "\n")
}

// GetArgsUsage returns the arguments usage string for CLI commands.
func GetArgsUsage() string {
	return strings.Join([]string{
		"transport",
	}, " ")
}

// GetCommonFlags returns the common CLI flags used by both ctl and agent modes.
func GetCommonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     SSLFlag,
			Aliases:  []string{"s"},
			Usage:    "Use TLS encryption",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     KeyFlag,
			Aliases:  []string{"k"},
			Usage:    "Key for mTLS authentication, leave empty to disable authentication",
			Category: categoryCommon,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     VerboseFlag,
			Aliases:  []string{"v"},
			Usage:    "Verbose error logging",
			Category: categoryCommon,
			Value:    false,
			Required: false,
		},
		&cli.IntFlag{
			Name:     TimeoutFlag,
			Aliases:  []string{"t"},
			Usage:    "Operation timeout in milliseconds (TLS handshake, mux control operations)",
			Category: categoryCommon,
			Value:    10000, // 10 seconds default
			Required: false,
		},
	}
}

const categoryRun = "run"

// SuiteFlag is the name of the flag selecting suites to run.
const SuiteFlag = "suite"

// CheckFlag is the name of the flag selecting individual checks to run.
const CheckFlag = "check"

// ManifestFlag is the name of the flag pointing at an expectations manifest.
const ManifestFlag = "manifest"

// ReportFlag is the name of the flag specifying the report output path.
const ReportFlag = "report"

// StrictFlag is the name of the flag that turns verification failures
// into a non-zero exit status.
const StrictFlag = "strict"

// GetRunFlags returns the CLI flags controlling check selection and
// verification, shared by the local run command and ctl mode.
func GetRunFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:     SuiteFlag,
			Aliases:  []string{"S"},
			Usage:    "Run only this suite (repeatable), default is all suites",
			Category: categoryRun,
			Value:    []string{},
			Required: false,
		},
		&cli.StringSliceFlag{
			Name:     CheckFlag,
			Aliases:  []string{"c"},
			Usage:    "Run only this check (repeatable), default is all checks",
			Category: categoryRun,
			Value:    []string{},
			Required: false,
		},
		&cli.StringFlag{
			Name:     ManifestFlag,
			Aliases:  []string{"m"},
			Usage:    "YAML manifest overriding expected outputs or skipping checks",
			Category: categoryRun,
			Value:    "",
			Required: false,
		},
		&cli.StringFlag{
			Name:     ReportFlag,
			Aliases:  []string{"r"},
			Usage:    "Write a JSON report of the run to this file",
			Category: categoryRun,
			Value:    "",
			Required: false,
		},
		&cli.BoolFlag{
			Name:     StrictFlag,
			Usage:    "Exit non-zero when any check fails verification",
			Category: categoryRun,
			Value:    false,
			Required: false,
		},
	}
}

const categoryCtl = "ctl"

// ConsoleFlag is the name of the flag attaching an interactive console
// to the agent instead of requesting a run.
const ConsoleFlag = "console"

// LogFileFlag is the name of the flag capturing the remote byte stream
// to a file.
const LogFileFlag = "log"

// GetCtlFlags returns the CLI flags specific to ctl mode.
func GetCtlFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     ConsoleFlag,
			Usage:    "Attach an interactive console to the agent",
			Category: categoryCtl,
			Value:    false,
			Required: false,
		},
		&cli.StringFlag{
			Name:     LogFileFlag,
			Aliases:  []string{"l"},
			Usage:    "Capture the remote output stream to this file",
			Category: categoryCtl,
			Value:    "",
			Required: false,
		},
	}
}

const categoryAgent = "agent"

// OnceFlag is the name of the flag making a listening agent exit after
// its first session.
const OnceFlag = "once"

// GetAgentFlags returns the CLI flags specific to agent mode.
func GetAgentFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:     OnceFlag,
			Usage:    "Exit after the first controller session ends",
			Category: categoryAgent,
			Value:    false,
			Required: false,
		},
	}
}
