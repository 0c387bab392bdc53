package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/handler/agent"
	"libcprobe/pkg/semaphore"
)

// uses interfaces/factories from internal.go (DI for testing)

// AgentListen starts a server that waits for controllers and serves
// their sessions. With aCfg.Once the server shuts down after the first
// session ends.
func AgentListen(ctx context.Context, cfg *config.Shared, aCfg *config.Agent) error {
	return agentListen(ctx, cfg, aCfg, realServerFactory(), agent.Handle)
}

func agentListen(
	parent context.Context,
	cfg *config.Shared,
	aCfg *config.Agent,
	newServer serverFactory,
	handle agentHandler,
) error {
	// A listening agent serves run requests concurrently but admits only
	// one console session at a time, so concurrent controllers cannot
	// interleave their keystrokes on the same process.
	if cfg.Deps == nil {
		cfg.Deps = &config.Dependencies{}
	}
	if cfg.Deps.ConnSem == nil {
		cfg.Deps.ConnSem = semaphore.New(1, cfg.Timeout)
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var s serverInterface
	var closeOnce sync.Once
	closeServer := func() { closeOnce.Do(func() { _ = s.Close() }) }

	s, err := newServer(ctx, cfg, makeAgentHandler(ctx, cfg, aCfg, handle, func() {
		if aCfg.Once {
			closeServer()
		}
	}))
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
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

func makeAgentHandler(
	parent context.Context,
	cfg *config.Shared,
	aCfg *config.Agent,
	handle agentHandler,
	done func(),
) func(conn net.Conn) error {
	return func(conn net.Conn) error {
		defer done()

		ctx, cancel := context.WithCancel(parent)
		defer cancel()

		var connOnce sync.Once
		closeConn := func() { connOnce.Do(func() { _ = conn.Close() }) }
		defer closeConn()

		errCh := make(chan error, 1)
		go func() { errCh <- handle(ctx, cfg, aCfg, conn) }()

		select {
		case <-ctx.Done():
			closeConn()
			err := <-errCh
			if err == nil || errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("handling after cancel: %w", err)

		case err := <-errCh:
			if err == nil {
				return nil
			}
			return fmt.Errorf("handling: %w", err)
		}
	}
}
