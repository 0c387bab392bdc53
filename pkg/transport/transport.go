// Package transport defines the interfaces shared by the tcp, ws and udp
// transports. A transport turns a configured address into net.Conn values:
// dialers produce one outbound connection per call, listeners accept inbound
// connections and hand them to a Handler.
//
// Listeners admit one active connection at a time. Sessions measure check
// timings and process resource usage, so overlapping sessions on the same
// process would contaminate each other's numbers. Surplus connections are
// rejected at the transport layer.
package transport

import (
	"context"
	"net"
)

// Handler processes one accepted connection. The connection is closed
// after the handler returns.
type Handler func(net.Conn) error

// Dialer establishes outbound connections to a fixed address.
type Dialer interface {
	Dial(ctx context.Context) (net.Conn, error)
}

// Listener accepts inbound connections and dispatches them to a handler.
type Listener interface {
	// Serve blocks accepting connections until the listener fails or is
	// closed. Closing the listener makes Serve return.
	Serve(handle Handler) error
	Close() error
}
