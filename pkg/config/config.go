// Package config holds the configuration shared by the CLI commands and
// the packages implementing them, plus injectable dependencies for tests.
package config

import (
	"fmt"
	"time"
)

// Protocol identifies the transport used between controller and agent.
type Protocol int

// Transports supported for remote probing.
const (
	ProtoTCP Protocol = iota
	ProtoWS
	ProtoWSS
	ProtoUDP
)

// String returns the URL scheme of the protocol, or "" if it is unknown.
func (p Protocol) String() string {
	switch p {
	case ProtoTCP:
		return "tcp"
	case ProtoWS:
		return "ws"
	case ProtoWSS:
		return "wss"
	case ProtoUDP:
		return "udp"
	default:
		return ""
	}
}

// Shared contains the configuration common to controller and agent mode.
type Shared struct {
	Protocol Protocol
	Host     string
	Port     int
	SSL      bool
	Key      string
	Verbose  bool
	LogFile  string
	Timeout  time.Duration

	// ID identifies this process in session handshakes.
	ID string

	// Version is the build version announced in session handshakes.
	Version string

	Deps *Dependencies
}

var KeySalt = "mw3XhqZg7BfkTvlpx9N2hd54ROybuF8C" // overwrite with custom value during release build

// Validate ...
func (cfg *Shared) Validate() []error {
	var errors []error

	if !cfg.SSL && cfg.Key != "" {
		errors = append(errors, fmt.Errorf("You must use '--ssl' to use '--key'"))
	}

	if err := validatePort(cfg.Port); err != nil {
		errors = append(errors, fmt.Errorf("transport port: %s", err))
	}

	return errors
}

// GetKey returns the mTLS key with the compile-time salt applied, or ""
// if no key is configured.
func (cfg *Shared) GetKey() string {
	if cfg.Key == "" {
		return ""
	}

	return KeySalt + cfg.Key
}
