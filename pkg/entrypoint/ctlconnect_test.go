package entrypoint

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"libcprobe/pkg/config"
)

func TestCtlConnect_HandlerRuns(t *testing.T) {
	t.Parallel()

	local, remote := net.Pipe()
	defer remote.Close()

	c := newFakeClient(local)

	handled := make(chan net.Conn, 1)
	handle := func(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error {
		handled <- conn
		return nil
	}

	err := ctlConnect(context.Background(), &config.Shared{}, &config.Ctl{}, fakeClientFactory(c), handle)
	if err != nil {
		t.Fatalf("ctlConnect() failed: %v", err)
	}

	select {
	case conn := <-handled:
		if conn != local {
			t.Error("handler received a different connection than the client produced")
		}
	case <-time.After(time.Second):
		t.Fatal("handler was never invoked")
	}

	if !c.wasClosed() {
		t.Error("client was not closed after the handler returned")
	}
}

func TestCtlConnect_ConnectFailure(t *testing.T) {
	t.Parallel()

	c := newFakeClient(nil)
	c.failure = fmt.Errorf("connection refused")

	handle := func(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error {
		t.Error("handler must not run when the connect fails")
		return nil
	}

	err := ctlConnect(context.Background(), &config.Shared{}, &config.Ctl{}, fakeClientFactory(c), handle)
	if err == nil {
		t.Fatal("ctlConnect() succeeded; want error")
	}
}

func TestCtlConnect_HandlerError(t *testing.T) {
	t.Parallel()

	local, remote := net.Pipe()
	defer remote.Close()

	c := newFakeClient(local)

	handle := func(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error {
		return fmt.Errorf("session exploded")
	}

	err := ctlConnect(context.Background(), &config.Shared{}, &config.Ctl{}, fakeClientFactory(c), handle)
	if err == nil {
		t.Fatal("ctlConnect() succeeded; want error")
	}
}

func TestCtlConnect_Cancellation(t *testing.T) {
	t.Parallel()

	local, remote := net.Pipe()
	defer remote.Close()

	c := newFakeClient(local)

	ctx, cancel := context.WithCancel(context.Background())

	blocked := make(chan struct{})
	handle := func(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error {
		close(blocked)
		<-ctx.Done()
		return ctx.Err()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- ctlConnect(ctx, &config.Shared{}, &config.Ctl{}, fakeClientFactory(c), handle)
	}()

	<-blocked
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("ctlConnect() after cancel = %v; want nil", err)
		}
	case <-time.After(time.Second):
		t.Fatal("ctlConnect() did not return after cancellation")
	}
}
