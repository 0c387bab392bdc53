package msg

import "encoding/gob"

func init() {
	gob.Register(RunRequest{})
}

// RunRequest asks the agent to execute the named checks and stream the
// results back over a dedicated data channel. Empty selections mean
// every registered check.
type RunRequest struct {
	Suites []string
	Checks []string
}

// MsgType returns the message type identifier for RunRequest messages.
func (m RunRequest) MsgType() string {
	return "RunRequest"
}
