package ctl

import (
	"context"
	"fmt"

	"libcprobe/pkg/log"
	"libcprobe/pkg/mux/msg"
	"libcprobe/pkg/pipeio"
)

// handleConsole attaches the local terminal to the agent's interactive
// console. Everything typed goes to the agent, everything the agent
// prints comes back, until either side closes the channel.
func (c *Ctl) handleConsole(ctx context.Context) error {
	conn, err := c.sess.SendAndGetOneChannelContext(ctx, msg.Console{})
	if err != nil {
		return fmt.Errorf("SendAndGetOneChannelContext(Console): %s", err)
	}
	defer conn.Close()

	if c.cfg.LogFile != "" {
		var err error
		conn, err = log.NewTappedConn(conn, c.cfg.LogFile)
		if err != nil {
			return fmt.Errorf("enabling capture to %s: %s", c.cfg.LogFile, err)
		}
	}

	stdio := pipeio.NewStdio(c.cfg.Deps)
	defer stdio.Close()

	pipeio.Pipe(ctx, conn, stdio, func(err error) {
		if c.cfg.Verbose {
			log.ErrorMsg("Console session with %s: %s\n", c.remoteAddr, err)
		}
	})

	return nil
}
