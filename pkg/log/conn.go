package log

import (
	"fmt"
	"net"
	"os"
	"time"
)

// tappedConn wraps a net.Conn and appends every byte read from or
// written to it to a capture file. Useful for inspecting what actually
// crossed the wire during a session.
type tappedConn struct {
	conn net.Conn
	tap  *os.File
}

// NewTappedConn wraps conn so that all traffic is also appended to the
// capture file at path. The file is created if missing.
func NewTappedConn(conn net.Conn, path string) (net.Conn, error) {
	tap, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening capture file %s: %s", path, err)
	}

	return &tappedConn{conn: conn, tap: tap}, nil
}

func (tc *tappedConn) Read(b []byte) (int, error) {
	n, err := tc.conn.Read(b)
	if n > 0 {
		if _, werr := tc.tap.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing read: %s", werr)
		}
	}
	return n, err
}

func (tc *tappedConn) Write(b []byte) (int, error) {
	n, err := tc.conn.Write(b)
	if n > 0 {
		if _, werr := tc.tap.Write(b[:n]); werr != nil {
			return n, fmt.Errorf("capturing write: %s", werr)
		}
	}
	return n, err
}

func (tc *tappedConn) Close() error {
	tc.tap.Close()
	return tc.conn.Close()
}

func (tc *tappedConn) LocalAddr() net.Addr {
	return tc.conn.LocalAddr()
}

func (tc *tappedConn) RemoteAddr() net.Addr {
	return tc.conn.RemoteAddr()
}

func (tc *tappedConn) SetDeadline(t time.Time) error {
	return tc.conn.SetDeadline(t)
}

func (tc *tappedConn) SetReadDeadline(t time.Time) error {
	return tc.conn.SetReadDeadline(t)
}

func (tc *tappedConn) SetWriteDeadline(t time.Time) error {
	return tc.conn.SetWriteDeadline(t)
}
