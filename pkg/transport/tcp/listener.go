package tcp

import (
	"fmt"
	"net"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/log"
	"libcprobe/pkg/transport"
)

// Listener accepts TCP connections on a fixed address.
type Listener struct {
	nl net.Listener

	rdy bool // whether we can handle a new connection
	mu  sync.Mutex
}

// NewListener creates a new TCP listener on the specified address.
// The deps parameter is optional and can be nil to use default implementations.
func NewListener(addr string, deps *config.Dependencies) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	nl, err := config.GetTCPListenerFunc(deps)("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen(tcp, %s): %s", addr, err)
	}

	return &Listener{
		nl:  nl,
		rdy: true,
	}, nil
}

// Serve accepts connections until the listener is closed. While one
// connection is being handled, additional connections are closed right away.
func (l *Listener) Serve(handle transport.Handler) error {
	for {
		conn, err := l.nl.Accept()
		if err != nil {
			return fmt.Errorf("Accept(): %w", err)
		}

		l.mu.Lock()
		if !l.rdy {
			conn.Close() // we already handle a connection
			l.mu.Unlock()
			continue
		}
		l.rdy = false
		l.mu.Unlock()

		go func() {
			// get ready again eventually
			defer func() {
				l.mu.Lock()
				l.rdy = true
				l.mu.Unlock()
			}()

			if tcpConn, ok := conn.(*net.TCPConn); ok {
				tcpConn.SetKeepAlive(true)
			}

			log.InfoMsg("New TCP connection from %s\n", conn.RemoteAddr())

			if err := handle(conn); err != nil {
				log.ErrorMsg("Handling connection from %s: %s\n", conn.RemoteAddr(), err)
			}
		}()
	}
}

// Close stops the listener. A blocked Serve call returns afterwards.
func (l *Listener) Close() error {
	return l.nl.Close()
}
