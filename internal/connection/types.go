package connection

import (
	"errors"
	"net/http"
	"time"

	"github.com/apexops/realtime/internal/protocol"
)

// Errors
var (
	ErrMaxReconnects = errors.New("max reconnect attempts reached")
)

// State is the connection lifecycle state. Transitions are total-ordered per
// Core; a Core is never in two states at once.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateAuthenticated
)

// String returns the lowercase state name used in stats and logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// EventSink receives decoded inbound frames and synthetic lifecycle events.
// *dispatch.Dispatcher satisfies it; the voice channel wraps it to observe
// its own authentication traffic.
type EventSink interface {
	Dispatch(msgType string, payload []byte)
}

// Config tunes one Connection Core.
type Config struct {
	Name   string // channel label carried in synthetic event payloads
	URL    string
	Header http.Header // extra handshake headers

	ClientType   string
	Version      string
	Capabilities protocol.Capabilities

	HeartbeatInterval    time.Duration
	ReconnectBaseDelay   time.Duration
	ReconnectCapExponent int
	MaxReconnectAttempts int
	AutoReconnect        bool
	HandshakeTimeout     time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		Name:                 "primary",
		ClientType:           "ai_engine",
		HeartbeatInterval:    30 * time.Second,
		ReconnectBaseDelay:   2 * time.Second,
		ReconnectCapExponent: 5,
		MaxReconnectAttempts: 5,
		AutoReconnect:        true,
		HandshakeTimeout:     10 * time.Second,
	}
}

func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Name == "" {
		c.Name = def.Name
	}
	if c.ClientType == "" {
		c.ClientType = def.ClientType
	}
	if c.HeartbeatInterval == 0 {
		c.HeartbeatInterval = def.HeartbeatInterval
	}
	if c.ReconnectBaseDelay == 0 {
		c.ReconnectBaseDelay = def.ReconnectBaseDelay
	}
	if c.ReconnectCapExponent == 0 {
		c.ReconnectCapExponent = def.ReconnectCapExponent
	}
	if c.MaxReconnectAttempts == 0 {
		c.MaxReconnectAttempts = def.MaxReconnectAttempts
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = def.HandshakeTimeout
	}
}
