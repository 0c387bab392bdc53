// Package tcp provides the plain TCP transport.
package tcp

import (
	"context"
	"fmt"
	"net"

	"libcprobe/pkg/config"
)

// Dialer dials TCP connections to a fixed address.
type Dialer struct {
	tcpAddr *net.TCPAddr
	dial    config.TCPDialerFunc
}

// NewDialer creates a new TCP dialer for the specified address.
// The deps parameter is optional and can be nil to use default implementations.
func NewDialer(addr string, deps *config.Dependencies) (*Dialer, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	return &Dialer{
		tcpAddr: tcpAddr,
		dial:    config.GetTCPDialerFunc(deps),
	}, nil
}

// Dial establishes a TCP connection to the configured address with
// keep-alive enabled. The attempt is abandoned when ctx expires.
func (d *Dialer) Dial(ctx context.Context) (net.Conn, error) {
	type result struct {
		conn net.Conn
		err  error
	}

	resCh := make(chan result, 1)
	go func() {
		conn, err := d.dial("tcp", nil, d.tcpAddr)
		resCh <- result{conn: conn, err: err}
	}()

	select {
	case <-ctx.Done():
		go func() {
			// close the connection if the dial still completes
			if res := <-resCh; res.conn != nil {
				res.conn.Close()
			}
		}()
		return nil, ctx.Err()
	case res := <-resCh:
		if res.err != nil {
			return nil, fmt.Errorf("net.DialTCP(tcp, %s): %s", d.tcpAddr.String(), res.err)
		}

		if tcpConn, ok := res.conn.(*net.TCPConn); ok {
			tcpConn.SetKeepAlive(true)
		}
		return res.conn, nil
	}
}
