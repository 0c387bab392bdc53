package udp

import (
	"errors"
	"fmt"
	"io"
	"net"
	"strings"

	kcp "github.com/xtaci/kcp-go/v5"

	"libcprobe/pkg/config"
	"libcprobe/pkg/log"
	"libcprobe/pkg/transport"
)

// Listener accepts KCP sessions over UDP on a fixed address.
type Listener struct {
	kcpListener *kcp.Listener
	sem         chan struct{} // capacity 1, allows a single active handler
}

// NewListener creates a new UDP listener with KCP on the specified address.
// The deps parameter is optional and can be nil to use default implementations.
func NewListener(addr string, deps *config.Dependencies) (*Listener, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveUDPAddr(udp, %s): %w", addr, err)
	}

	conn, err := config.GetUDPListenerFunc(deps)("udp", udpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen(udp, %s): %w", addr, err)
	}

	kcpListener, err := kcp.ServeConn(nil, 0, 0, conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("kcp.ServeConn(): %w", err)
	}

	l := &Listener{
		kcpListener: kcpListener,
		sem:         make(chan struct{}, 1),
	}
	l.sem <- struct{}{}
	return l, nil
}

// Serve accepts KCP sessions until the listener is closed. While one
// session is being handled, additional sessions are closed right away.
func (l *Listener) Serve(handle transport.Handler) error {
	for {
		kcpConn, err := l.kcpListener.AcceptKCP()
		if err != nil {
			if isClosedError(err) {
				return nil
			}
			return fmt.Errorf("AcceptKCP(): %w", err)
		}

		configureSession(kcpConn)

		select {
		case <-l.sem: // acquired the single slot
			go func(c *kcp.UDPSession) {
				defer func() {
					_ = c.Close()
					l.sem <- struct{}{} // release slot
				}()

				log.InfoMsg("New UDP connection from %s\n", c.RemoteAddr())

				if err := handle(c); err != nil {
					log.ErrorMsg("Handling connection from %s: %s\n", c.RemoteAddr(), err)
				}
			}(kcpConn)

		default:
			// we already handle a connection
			_ = kcpConn.Close()
		}
	}
}

// Close stops the listener. A blocked Serve call returns afterwards.
func (l *Listener) Close() error {
	return l.kcpListener.Close()
}

// isClosedError reports whether err is the shutdown noise AcceptKCP
// produces after the listener was closed.
func isClosedError(err error) bool {
	return errors.Is(err, net.ErrClosed) ||
		errors.Is(err, io.ErrClosedPipe) ||
		strings.Contains(err.Error(), "use of closed network connection")
}
