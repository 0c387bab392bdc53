// Package msg defines message types for communication between controller
// and agent sessions. Messages are serialized using gob encoding and
// passed over control channels to coordinate check runs and interactive
// console sessions.
package msg

// Message is the interface that all message types must implement.
// MsgType returns a string identifier for the message type, used for
// debugging and logging purposes.
type Message interface {
	MsgType() string
}
