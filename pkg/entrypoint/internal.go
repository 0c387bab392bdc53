package entrypoint

import (
	"context"
	"net"

	"libcprobe/pkg/client"
	"libcprobe/pkg/config"
	"libcprobe/pkg/server"
	"libcprobe/pkg/transport"
)

// serverInterface defines the interface for a server that can serve and be closed.
type serverInterface interface {
	Serve() error
	Close() error
}

// serverFactory is a function type for creating servers.
type serverFactory func(ctx context.Context, cfg *config.Shared, handle transport.Handler) (serverInterface, error)

// realServerFactory returns the actual server factory used in production.
func realServerFactory() serverFactory {
	return func(ctx context.Context, cfg *config.Shared, handle transport.Handler) (serverInterface, error) {
		return server.New(ctx, cfg, handle)
	}
}

// clientInterface defines the interface for a client that can connect and provide a connection.
type clientInterface interface {
	Connect() error
	Close() error
	GetConnection() net.Conn
}

// clientFactory is a function type for creating clients.
type clientFactory func(context.Context, *config.Shared) clientInterface

// realClientFactory returns the actual client factory used in production.
func realClientFactory() clientFactory {
	return func(ctx context.Context, cfg *config.Shared) clientInterface {
		return client.New(ctx, cfg)
	}
}

// ctlHandler is the function type running a controller session over an
// established connection.
type ctlHandler func(ctx context.Context, cfg *config.Shared, cCfg *config.Ctl, conn net.Conn) error

// agentHandler is the function type running an agent session over an
// established connection.
type agentHandler func(ctx context.Context, cfg *config.Shared, aCfg *config.Agent, conn net.Conn) error
