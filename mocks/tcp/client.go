package tcp

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
)

// DialFunc dials one connection. It matches MockTCPNetwork.DialTCP so
// tests can hand the mock network's dialer straight in.
type DialFunc func(network string, laddr, raddr *net.TCPAddr) (net.Conn, error)

// Client is a line-oriented test client. It dials on creation through
// the given DialFunc and exchanges newline-terminated messages.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
	w    *bufio.Writer

	mu sync.Mutex // serializes writes
}

// NewClient dials addr (e.g. "127.0.0.1:9001") through dial and returns
// a connected client.
func NewClient(dial DialFunc, network, addr string) (*Client, error) {
	if dial == nil {
		return nil, fmt.Errorf("dial func is nil")
	}

	raddr, err := net.ResolveTCPAddr(network, addr)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", addr, err)
	}

	conn, err := dial(network, nil, raddr)
	if err != nil {
		return nil, err
	}

	return &Client{
		conn: conn,
		r:    bufio.NewReader(conn),
		w:    bufio.NewWriter(conn),
	}, nil
}

// WriteLine sends one line, appending the newline if missing.
func (c *Client) WriteLine(line string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	if _, err := c.w.WriteString(line); err != nil {
		return err
	}
	return c.w.Flush()
}

// ReadLine receives one line, with the trailing newline stripped.
func (c *Client) ReadLine() (string, error) {
	s, err := c.r.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
