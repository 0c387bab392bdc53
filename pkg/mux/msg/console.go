package msg

import "encoding/gob"

func init() {
	gob.Register(Console{})
}

// Console asks the agent to attach its interactive console to a new
// channel.
type Console struct{}

// MsgType returns the message type identifier for Console messages.
func (m Console) MsgType() string {
	return "Console"
}
