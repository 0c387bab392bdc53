// Package client establishes outbound connections for the connect modes.
package client

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
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

// Client ...
type Client struct {
	ctx context.Context
	cfg *config.Shared

	conn net.Conn
}

// New ...
func New(ctx context.Context, cfg *config.Shared) *Client {
	return &Client{
		ctx: ctx,
		cfg: cfg,
	}
}

// Close ...
func (c *Client) Close() error {
	log.InfoMsg("Connection to %s closed\n", c.conn.RemoteAddr())

	return c.conn.Close()
}

// GetConnection ...
func (c *Client) GetConnection() net.Conn {
	return c.conn
}

// dependencies carries the constructors Connect uses, so tests can
// substitute fakes.
type dependencies struct {
	newTCPDialer func(addr string, deps *config.Dependencies) (transport.Dialer, error)
	newUDPDialer func(addr string, deps *config.Dependencies) (transport.Dialer, error)
	newWSDialer  func(ctx context.Context, addr string, proto config.Protocol) transport.Dialer
	tlsUpgrader  func(conn net.Conn, key string, timeout time.Duration) (net.Conn, error)
}

func realDependencies() *dependencies {
	return &dependencies{
		newTCPDialer: func(addr string, deps *config.Dependencies) (transport.Dialer, error) {
			return tcp.NewDialer(addr, deps)
		},
		newUDPDialer: func(addr string, deps *config.Dependencies) (transport.Dialer, error) {
			return udp.NewDialer(addr, deps)
		},
		newWSDialer: func(ctx context.Context, addr string, proto config.Protocol) transport.Dialer {
			return ws.NewDialer(ctx, addr, proto)
		},
		tlsUpgrader: upgradeToTLS,
	}
}

// Connect establishes a connection over the configured transport and,
// with SSL enabled, upgrades it to TLS.
func (c *Client) Connect() error {
	return c.connect(realDependencies())
}

func (c *Client) connect(deps *dependencies) error {
	addr := format.Addr(c.cfg.Host, c.cfg.Port)

	log.InfoMsg("Connecting to %s\n", addr)

	var d transport.Dialer
	var err error
	switch c.cfg.Protocol {
	case config.ProtoWS, config.ProtoWSS:
		d = deps.newWSDialer(c.ctx, addr, c.cfg.Protocol)
	case config.ProtoUDP:
		d, err = deps.newUDPDialer(addr, c.cfg.Deps)
	default:
		d, err = deps.newTCPDialer(addr, c.cfg.Deps)
	}
	if err != nil {
		return fmt.Errorf("NewDialer: %s", err)
	}

	c.conn, err = d.Dial(c.ctx)
	if err != nil {
		return fmt.Errorf("Dial(): %s", err)
	}

	if c.cfg.SSL {
		c.conn, err = deps.tlsUpgrader(c.conn, c.cfg.GetKey(), c.cfg.Timeout)
		if err != nil {
			return fmt.Errorf("upgradeToTLS: %s", err)
		}
	}

	return nil
}

// upgradeToTLS upgrades conn to TLS 1.3. With a key, both ends present
// certificates from the same deterministically generated CA, which makes
// the session mutually authenticated.
func upgradeToTLS(conn net.Conn, key string, timeout time.Duration) (net.Conn, error) {
	cfg := &tls.Config{
		MinVersion: tls.VersionTLS13,
	}
	cfg.InsecureSkipVerify = true // we verify ourselves to skip hostname validation

	if key != "" {
		caCert, cert, err := crypto.GenerateCertificates(key)
		if err != nil {
			return nil, fmt.Errorf("crypto.GenerateCertificates(): %s", err)
		}

		cfg.Certificates = []tls.Certificate{cert} // client cert
		cfg.VerifyPeerCertificate = func(rawCerts [][]byte, _ [][]*x509.Certificate) error {
			return customVerifier(caCert, rawCerts)
		}
	}

	tlsConn := tls.Client(conn, cfg)

	// Bound the handshake, then clear the deadline so it cannot kill the
	// session later.
	if timeout > 0 {
		if err := conn.SetDeadline(time.Now().Add(timeout)); err != nil {
			return nil, fmt.Errorf("conn.SetDeadline(timeout): %s", err)
		}
	}
	if err := tlsConn.Handshake(); err != nil {
		return nil, fmt.Errorf("tlsConn.Handshake(): %s", err)
	}
	if err := conn.SetDeadline(time.Time{}); err != nil {
		return nil, fmt.Errorf("conn.SetDeadline(zero): %s", err)
	}

	return tlsConn, nil
}

// customVerifier verifies the certificate but cares only about the root
// certificate, not SANs.
func customVerifier(caCert *x509.CertPool, rawCerts [][]byte) error {
	if len(rawCerts) != 1 {
		return fmt.Errorf("unexpected number of rawCerts: %d", len(rawCerts))
	}

	cert, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("x509.ParseCertificate(rawCert): %s", err)
	}

	if _, err := cert.Verify(x509.VerifyOptions{
		Roots: caCert,
	}); err != nil {
		return fmt.Errorf("cert.Verify(caCert): %s", err)
	}

	return nil
}
