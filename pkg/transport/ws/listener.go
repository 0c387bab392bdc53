package ws

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/coder/websocket"

	"libcprobe/pkg/crypto"
	"libcprobe/pkg/log"
	"libcprobe/pkg/transport"
)

// Listener accepts WebSocket connections on a fixed address.
type Listener struct {
	ctx context.Context
	nl  net.Listener
	srv *http.Server

	sem chan struct{} // capacity 1, allows a single active handler
}

// NewListener creates a new WebSocket listener on the specified address.
// With useTLS the listener terminates TLS using an ephemeral self-signed
// certificate, which makes the transport wss.
func NewListener(ctx context.Context, addr string, useTLS bool) (*Listener, error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("net.ResolveTCPAddr(tcp, %s): %s", addr, err)
	}

	var nl net.Listener
	nl, err = net.ListenTCP("tcp", tcpAddr)
	if err != nil {
		return nil, fmt.Errorf("listen(tcp, %s): %s", addr, err)
	}

	if useTLS {
		tlsNl, err := wrapWithTLS(nl)
		if err != nil {
			nl.Close()
			return nil, fmt.Errorf("enabling TLS: %s", err)
		}
		nl = tlsNl
	}

	l := &Listener{
		ctx: ctx,
		nl:  nl,
		sem: make(chan struct{}, 1),
	}
	l.sem <- struct{}{}

	l.srv = &http.Server{
		// Sessions are long-lived, so only the header read gets a deadline.
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return l, nil
}

// Serve handles WebSocket upgrade requests until the listener is closed.
// While one connection is being handled, additional requests are rejected
// with status 503.
func (l *Listener) Serve(handle transport.Handler) error {
	l.srv.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		l.handleUpgrade(w, r, handle)
	})

	err := l.srv.Serve(l.nl)
	if err == nil || errors.Is(err, http.ErrServerClosed) || errors.Is(err, net.ErrClosed) {
		return nil
	}
	return fmt.Errorf("http.Server.Serve(): %s", err)
}

// Close stops the listener. A blocked Serve call returns afterwards.
func (l *Listener) Close() error {
	return l.nl.Close()
}

func (l *Listener) handleUpgrade(w http.ResponseWriter, r *http.Request, handle transport.Handler) {
	select {
	case <-l.sem:
		defer func() { l.sem <- struct{}{} }()
	default:
		// we already handle a connection
		http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		Subprotocols: []string{"bin"},
	})
	if err != nil {
		log.ErrorMsg("websocket.Accept(): %s\n", err)
		return
	}

	conn := websocket.NetConn(l.ctx, c, websocket.MessageBinary)
	defer conn.Close()

	log.InfoMsg("New WS connection from %s\n", r.RemoteAddr)

	if err := handle(conn); err != nil {
		log.ErrorMsg("Handling connection from %s: %s\n", r.RemoteAddr, err)
	}
}

// wrapWithTLS wraps a listener with TLS using an ephemeral certificate.
func wrapWithTLS(nl net.Listener) (net.Listener, error) {
	key, err := crypto.GenerateRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key: %s", err)
	}

	_, cert, err := crypto.GenerateCertificates(key)
	if err != nil {
		return nil, fmt.Errorf("crypto.GenerateCertificates(): %s", err)
	}

	tlsCfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS13,
	}

	return tls.NewListener(nl, tlsCfg), nil
}
