// Package server runs the listening side of a session.
package server

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"sync"
	"time"

	"libcprobe/pkg/config"
	"libcprobe/pkg/crypto"
	"libcprobe/pkg/format"
	"libcprobe/pkg/log"
	"libcprobe/pkg/transport"
	"libcprobe/pkg/transport/tcp"
	"libcprobe/pkg/transport/udp"
	"libcprobe/pkg/transport/ws"
)

// Server ...
type Server struct {
	ctx    context.Context
	cfg    *config.Shared
	handle transport.Handler

	tlsCfg *tls.Config // nil unless SSL is enabled

	mu       sync.Mutex
	listener transport.Listener
}

// New creates a server for the configured transport. With SSL enabled the
// certificates are generated up front so a bad key fails before listening.
func New(ctx context.Context, cfg *config.Shared, handle transport.Handler) (*Server, error) {
	s := &Server{
		ctx:    ctx,
		cfg:    cfg,
		handle: handle,
	}

	if cfg.SSL {
		tlsCfg, err := newTLSConfig(cfg.GetKey())
		if err != nil {
			return nil, fmt.Errorf("configuring TLS: %s", err)
		}
		s.tlsCfg = tlsCfg
	}

	return s, nil
}

func newTLSConfig(key string) (*tls.Config, error) {
	caCert, cert, err := crypto.GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("crypto.GenerateCertificates(): %s", err)
	}

	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}
	if key != "" {
		cfg.ClientAuth = tls.RequireAndVerifyClientCert
		cfg.ClientCAs = caCert
	}

	return cfg, nil
}

// Serve listens on the configured address and dispatches connections to
// the handler until Close is called.
func (s *Server) Serve() error {
	addr := format.Addr(s.cfg.Host, s.cfg.Port)

	l, err := s.newListener(addr)
	if err != nil {
		return fmt.Errorf("NewListener: %s", err)
	}

	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	log.InfoMsg("Listening on %s://%s\n", s.cfg.Protocol, addr)

	return l.Serve(s.handleConn)
}

func (s *Server) newListener(addr string) (transport.Listener, error) {
	switch s.cfg.Protocol {
	case config.ProtoWS, config.ProtoWSS:
		return ws.NewListener(s.ctx, addr, s.cfg.Protocol == config.ProtoWSS)
	case config.ProtoUDP:
		return udp.NewListener(addr, s.cfg.Deps)
	default:
		return tcp.NewListener(addr, s.cfg.Deps)
	}
}

// handleConn upgrades the connection to TLS when SSL is enabled, then
// runs the session handler.
func (s *Server) handleConn(conn net.Conn) error {
	if s.tlsCfg != nil {
		tlsConn := tls.Server(conn, s.tlsCfg)

		// Bound the handshake, then clear the deadline so it cannot kill
		// the session later.
		if s.cfg.Timeout > 0 {
			if err := conn.SetDeadline(time.Now().Add(s.cfg.Timeout)); err != nil {
				return fmt.Errorf("conn.SetDeadline(timeout): %s", err)
			}
		}
		if err := tlsConn.Handshake(); err != nil {
			return fmt.Errorf("tlsConn.Handshake(): %s", err)
		}
		if err := conn.SetDeadline(time.Time{}); err != nil {
			return fmt.Errorf("conn.SetDeadline(zero): %s", err)
		}

		conn = tlsConn
	}

	return s.handle(conn)
}

// Close stops the server's listener. Safe to call before Serve.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Close()
}
