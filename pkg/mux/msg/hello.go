package msg

import "encoding/gob"

func init() {
	gob.Register(Hello{})
}

// Hello is sent by both sides to identify themselves upon session
// establishment. OS and Arch describe the platform the sender runs on,
// which for agents is the platform under test.
type Hello struct {
	ID      string // Identifier of the connecting process
	Version string
	OS      string
	Arch    string
}

// MsgType returns the message type identifier for Hello messages.
func (m Hello) MsgType() string {
	return "Hello"
}
