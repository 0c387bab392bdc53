package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/handler/agent"
	"libcprobe/pkg/log"
)

// uses interfaces/factories from internal.go (DI for testing)

// AgentConnect dials out to a listening controller and serves it.
func AgentConnect(ctx context.Context, cfg *config.Shared, aCfg *config.Agent) error {
	return agentConnect(ctx, cfg, aCfg, realClientFactory(), agent.Handle)
}

func agentConnect(
	parent context.Context,
	cfg *config.Shared,
	aCfg *config.Agent,
	newClient clientFactory,
	handle agentHandler,
) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	c := newClient(ctx, cfg)
	if err := c.Connect(); err != nil {
		return fmt.Errorf("connecting: %w", err)
	}
	var closeOnce sync.Once
	closeClient := func() { closeOnce.Do(func() { _ = c.Close() }) }
	defer closeClient()

	errCh := make(chan error, 1)
	go func() { errCh <- handle(ctx, cfg, aCfg, c.GetConnection()) }()

	select {
	case <-ctx.Done():
		log.VerboseMsg("Agent connect: context cancelled, closing connection\n")
		closeClient()
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
