package msg

import "encoding/gob"

func init() {
	gob.Register(RunDone{})
}

// RunDone terminates a result stream. It carries the total duration and
// the agent's resource usage so the controller can record them in the
// report.
type RunDone struct {
	DurationMS float64

	UserTimeMS   int64
	SystemTimeMS int64
	MaxRSSKB     int64

	// Err is set when the run could not start at all, for example when
	// the request named an unknown suite.
	Err string
}

// MsgType returns the message type identifier for RunDone messages.
func (m RunDone) MsgType() string {
	return "RunDone"
}
