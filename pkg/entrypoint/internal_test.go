package entrypoint

import (
	"context"
	"fmt"
	"net"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/transport"
)

// fakeClient implements clientInterface for tests. It hands out one end
// of an in-memory pipe.
type fakeClient struct {
	conn    net.Conn
	failure error

	mu        sync.Mutex
	connected bool
	closed    bool
}

func newFakeClient(conn net.Conn) *fakeClient {
	return &fakeClient{conn: conn}
}

func (c *fakeClient) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failure != nil {
		return c.failure
	}
	c.connected = true
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *fakeClient) GetConnection() net.Conn {
	return c.conn
}

func (c *fakeClient) wasClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func fakeClientFactory(c *fakeClient) clientFactory {
	return func(ctx context.Context, cfg *config.Shared) clientInterface {
		return c
	}
}

// fakeServer implements serverInterface. Serve dispatches the queued
// connections to the handler, then blocks until Close.
type fakeServer struct {
	conns  []net.Conn
	handle transport.Handler

	closeCh   chan struct{}
	closeOnce sync.Once

	mu         sync.Mutex
	handleErrs []error
}

func newFakeServer(conns ...net.Conn) *fakeServer {
	return &fakeServer{
		conns:   conns,
		closeCh: make(chan struct{}),
	}
}

func (s *fakeServer) Serve() error {
	for _, conn := range s.conns {
		err := s.handle(conn)

		s.mu.Lock()
		s.handleErrs = append(s.handleErrs, err)
		s.mu.Unlock()
	}

	<-s.closeCh
	return net.ErrClosed
}

func (s *fakeServer) Close() error {
	s.closeOnce.Do(func() { close(s.closeCh) })
	return nil
}

func fakeServerFactory(s *fakeServer) serverFactory {
	return func(ctx context.Context, cfg *config.Shared, handle transport.Handler) (serverInterface, error) {
		s.handle = handle
		return s, nil
	}
}

func failingServerFactory(err error) serverFactory {
	return func(ctx context.Context, cfg *config.Shared, handle transport.Handler) (serverInterface, error) {
		return nil, err
	}
}

var errFactory = fmt.Errorf("factory failure")
