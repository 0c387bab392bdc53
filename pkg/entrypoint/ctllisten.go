// Package entrypoint provides entry functions for the four remote
// operation modes. They encapsulate starting servers or clients and
// plugging in the session handlers, separated from CLI argument
// parsing so tests can drive them directly.
package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/handler/ctl"
)

// uses interfaces/factories from internal.go (DI for testing)

// CtlListen starts a server that waits for an agent to connect in and
// then drives it. Useful when the probed host can only dial out.
func CtlListen(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl) error {
	return ctlListen(ctx, cfg, cCfg, realServerFactory(), ctl.Handle)
}

func ctlListen(
	parent context.Context,
	cfg *config.Shared,
	cCfg *config.Ctl,
	newServer serverFactory,
	handle ctlHandler,
) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s, err := newServer(ctx, cfg, makeCtlHandler(ctx, cfg, cCfg, handle))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	var closeOnce sync.Once
	closeServer := func() { closeOnce.Do(func() { _ = s.Close() }) }
	defer closeServer()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Serve() }()

	select {
	case <-ctx.Done():
		closeServer()
		err := <-errCh
		if err == nil || isServerClosed(err) || errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("serving after cancel: %w", err)

	case err := <-errCh:
		if err == nil || isServerClosed(err) {
			return nil
		}
		return fmt.Errorf("serving: %w", err)
	}
}

// isServerClosed recognizes the benign error a closed listener returns.
func isServerClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}

func makeCtlHandler(
	parent context.Context,
	cfg *config.Shared,
	cCfg *config.Ctl,
	handle ctlHandler,
) func(conn net.Conn) error {
	return func(conn net.Conn) error {
		ctx, cancel := context.WithCancel(parent)
		defer cancel()

		var connOnce sync.Once
		closeConn := func() { connOnce.Do(func() { _ = conn.Close() }) }
		defer closeConn()

		errCh := make(chan error, 1)
		go func() { errCh <- handle(ctx, cfg, cCfg, conn) }()

		select {
		case <-ctx.Done():
			closeConn()
			err := <-errCh
			if err == nil || errors.Is(err, net.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("handling after cancel: %w", err)

		case err := <-errCh:
			if err == nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("handling: %w", err)
		}
	}
}
