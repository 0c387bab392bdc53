// Package log prints colored status messages to stderr. Stdout is
// reserved for check output, which must stay byte-exact, so everything
// human-facing goes through here.
package log

import (
	"os"
	"sync/atomic"

	"github.com/fatih/color"
)

var red = color.New(color.FgRed).FprintfFunc()
var blue = color.New(color.FgBlue).FprintfFunc()
var yellow = color.New(color.FgYellow).FprintfFunc()

var verbose atomic.Bool

// SetVerbose enables or disables verbose messages globally.
func SetVerbose(on bool) {
	verbose.Store(on)
}

// ErrorMsg prints an error message to stderr in red.
func ErrorMsg(format string, a ...interface{}) {
	red(os.Stderr, "[!] Error: "+format, a...)
}

// InfoMsg prints a status message to stderr in blue.
func InfoMsg(format string, a ...interface{}) {
	blue(os.Stderr, "[+] "+format, a...)
}

// VerboseMsg prints a debug message to stderr in yellow. It does
// nothing unless verbose logging was enabled with SetVerbose.
func VerboseMsg(format string, a ...interface{}) {
	if !verbose.Load() {
		return
	}
	yellow(os.Stderr, "[*] "+format, a...)
}
