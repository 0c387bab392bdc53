// Package agent provides the agent-side handler responding to a
// controller over a multiplexed connection. The agent executes the
// built-in checks on request and streams back what they print; it can
// also serve an interactive console for poking at the checks by hand.
package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"runtime"

	"libcprobe/pkg/config"
	"libcprobe/pkg/log"
	"libcprobe/pkg/mux"
	"libcprobe/pkg/mux/msg"
)

// Agent manages the agent side of a multiplexed connection, responding
// to run requests and console attachments from the controller.
type Agent struct {
	ctx  context.Context
	cfg  *config.Shared
	aCfg *config.Agent

	remoteAddr string
	remoteID   string

	sess *mux.AgentSession
}

// New creates an agent handler over the given connection. It accepts
// the multiplexed session opened by the controller.
func New(ctx context.Context, cfg *config.Shared, aCfg *config.Agent, conn net.Conn) (*Agent, error) {
	sess, err := mux.AcceptSessionContext(ctx, conn, cfg.Timeout)
	if err != nil {
		return nil, fmt.Errorf("mux.AcceptSessionContext(conn): %s", err)
	}

	return &Agent{
		ctx:        ctx,
		cfg:        cfg,
		aCfg:       aCfg,
		remoteAddr: conn.RemoteAddr().String(),
		sess:       sess,
	}, nil
}

// Close closes the agent's multiplexed session and all associated resources.
func (a *Agent) Close() error {
	return a.sess.Close()
}

// Handle processes incoming messages from the controller and dispatches
// them to the appropriate handlers. It blocks until the connection is
// closed or an error occurs.
func (a *Agent) Handle() error {
	defer func() {
		if a.remoteID != "" {
			log.InfoMsg("Session with %s closed (%s)\n", a.remoteAddr, a.remoteID)
		}
	}()

	ctx, cancel := context.WithCancel(a.ctx)
	defer cancel()

	if err := a.sess.SendContext(ctx, msg.Hello{
		ID:      a.cfg.ID,
		Version: a.cfg.Version,
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
	}); err != nil {
		log.ErrorMsg("Sending hello to controller: %s\n", err)
	}

	for {
		m, err := a.sess.ReceiveContext(a.ctx)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			// Deadline noise from the periodic context checks is not a
			// session failure.
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				continue
			}

			log.ErrorMsg("Receiving next command: %s\n", err)
			continue
		}

		switch message := m.(type) {
		case msg.Hello:
			a.remoteID = message.ID
			log.InfoMsg("Session with %s established (%s, %s/%s)\n", a.remoteAddr, message.ID, message.OS, message.Arch)
		case msg.RunRequest:
			a.handleRunAsync(ctx, message)
		case msg.Console:
			a.handleConsoleAsync(ctx)
		default:
			return fmt.Errorf("unsupported message type '%s', this is a bug", m.MsgType())
		}
	}
}

// Handle runs an agent handler over conn and tears it down when done.
// It is the handler function the entrypoints plug into clients and
// servers.
func Handle(ctx context.Context, cfg *config.Shared, aCfg *config.Agent, conn net.Conn) error {
	a, err := New(ctx, cfg, aCfg, conn)
	if err != nil {
		return fmt.Errorf("agent.New(conn): %s", err)
	}
	defer a.Close()

	return a.Handle()
}
