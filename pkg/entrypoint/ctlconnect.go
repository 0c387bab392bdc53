package entrypoint

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"libcprobe/pkg/config"
	"libcprobe/pkg/handler/ctl"
	"libcprobe/pkg/log"
)

// uses interfaces/factories from internal.go (DI for testing)

// CtlConnect connects to a listening agent and drives it.
func CtlConnect(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl) error {
	return ctlConnect(ctx, cfg, cCfg, realClientFactory(), ctl.Handle)
}

func ctlConnect(
	parent context.Context,
	cfg *config.Shared,
	cCfg *config.Ctl,
	newClient clientFactory,
	handle ctlHandler,
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
	go func() {
		errCh <- handle(ctx, cfg, cCfg, c.GetConnection())
	}()

	select {
	case <-ctx.Done():
		// Cancellation: close the connection and wait for Handle to unwind.
		log.VerboseMsg("Ctl connect: context cancelled, closing connection\n")
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
