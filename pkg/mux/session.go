// Package mux multiplexes a single connection into a control layer and
// on-demand data channels using yamux. The controller side is always
// the yamux client regardless of which side dialed, so channel opens
// always originate from the controller except where a message exchange
// hands the initiative to the agent.
package mux

import (
	"io"
	"log"
	"net"

	"github.com/hashicorp/yamux"
)

// Session bundles the yamux session with the two dedicated control
// streams, one per direction.
type Session struct {
	mux *yamux.Session

	ctlClientToServer net.Conn
	ctlServerToClient net.Conn
}

// Close closes the control streams and the yamux session.
func (s *Session) Close() error {
	if s.ctlClientToServer != nil {
		s.ctlClientToServer.Close() // best effort
	}

	if s.ctlServerToClient != nil {
		s.ctlServerToClient.Close() // best effort
	}

	return s.mux.Close()
}

func config() *yamux.Config {
	cfg := yamux.DefaultConfig()
	cfg.LogOutput = nil
	cfg.Logger = log.New(io.Discard, "", log.LstdFlags) // discard all console logging in yamux
	return cfg
}
