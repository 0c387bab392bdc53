package msg

import "encoding/gob"

func init() {
	gob.Register(CheckDone{})
}

// CheckDone reports one executed check. The agent streams these over
// the data channel while a run is in progress. The agent only reports
// what happened, judging the output is up to the controller.
type CheckDone struct {
	Suite      string
	Check      string
	Output     string
	Err        string // empty if the check executed cleanly
	DurationMS float64
}

// MsgType returns the message type identifier for CheckDone messages.
func (m CheckDone) MsgType() string {
	return "CheckDone"
}
