// Package ctl provides the controller-side handler driving a remote
// agent over a multiplexed connection. The controller requests check
// runs, renders the streamed output locally and judges it against its
// own manifest, or attaches an interactive console to the agent.
package ctl

import (
	"context"
	"fmt"
	"net"
	"runtime"

	"libcprobe/pkg/config"
	"libcprobe/pkg/log"
	"libcprobe/pkg/mux"
	"libcprobe/pkg/mux/msg"
)

// Ctl manages the controller side of a multiplexed connection.
type Ctl struct {
	ctx  context.Context
	cfg  *config.Shared
	cCfg *config.Ctl

	remoteAddr string

	sess *mux.CtlSession
}

// New creates a controller handler over the given connection. It opens
// the multiplexed session and its control channels.
func New(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) (*Ctl, error) {
	sess, err := mux.OpenSessionContext(ctx, conn, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("mux.OpenSessionContext(conn): %s", err)
	}

	return &Ctl{
		ctx:        ctx,
		cfg:        cfg,
		cCfg:       cCfg,
		remoteAddr: conn.RemoteAddr().String(),
		sess:       sess,
	}, nil
}

// Close closes the controller's multiplexed session.
func (c *Ctl) Close() error {
	return c.sess.Close()
}

// Handle exchanges hellos with the agent and performs the configured
// operation: an interactive console or a check run.
func (c *Ctl) Handle() error {
	ctx, cancel := context.WithCancel(c.ctx)
	defer cancel()

	if err := c.sess.SendContext(ctx, msg.Hello{
		ID:      c.cfg.ID,
		Version: c.cfg.Version,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}); err != nil {
		return fmt.Errorf("sending hello to agent: %s", err)
	}

	m, err := c.sess.ReceiveContext(ctx)
	if err != nil {
		return fmt.Errorf("receiving hello from agent: %s", err)
	}
	hello, ok := m.(msg.Hello)
	if !ok {
		return fmt.Errorf("expected hello, got '%s'", m.MsgType())
	}
	log.InfoMsg("Session with %s established (%s, %s/%s)\n", c.remoteAddr, hello.ID, hello.OS, hello.Arch)
	defer log.InfoMsg("Session with %s closed (%s)\n", c.remoteAddr, hello.ID)

	if c.cCfg.Console {
		return c.handleConsole(ctx)
	}

	return c.handleRun(ctx, hello)
}

// Handle runs a controller handler over conn and tears it down when
// done. It is the handler function the entrypoints plug into clients
// and servers.
func Handle(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error {
	c, err := New(ctx, cfg, cCfg, conn)
	if err != nil {
		return fmt.Errorf("ctl.New(conn): %s", err)
	}
	defer c.Close()

	return c.Handle()
}
