package voice

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/apexops/realtime/internal/connection"
	"github.com/apexops/realtime/internal/dispatch"
	"github.com/apexops/realtime/internal/protocol"
	"github.com/apexops/realtime/internal/transport"
)

// ChannelName tags the voice core's synthetic events.
const ChannelName = "voice"

// Session is the authentication state for the voice channel. It lives for
// one physical connection at most.
type Session struct {
	Authenticated bool
	Token         string
	Role          string
}

// Channel is the secondary, separately-authenticated connection.
type Channel struct {
	core   *connection.Core
	logger *slog.Logger

	mu      sync.Mutex
	session Session
}

// NewChannel builds the voice channel on top of its own connection core.
// The core's events flow into the shared dispatcher, with the channel
// observing its own authentication and disconnect traffic on the way
// through.
func NewChannel(cfg connection.Config, dialer transport.Dialer, dispatcher *dispatch.Dispatcher, logger *slog.Logger) *Channel {
	if logger == nil {
		logger = slog.Default()
	}

	ch := &Channel{
		logger: logger.With("channel", ChannelName),
	}

	cfg.Name = ChannelName
	ch.core = connection.NewCore(cfg, dialer, &channelSink{ch: ch, next: dispatcher}, logger)
	return ch
}

// Connect starts the transport-level connection (handshake step one).
func (c *Channel) Connect() {
	c.core.Connect()
}

// Disconnect tears the channel down and clears the session.
func (c *Channel) Disconnect() {
	c.core.Disconnect()
}

// Stats returns the underlying core's counters.
func (c *Channel) Stats() connection.Stats {
	return c.core.Stats()
}

// IsAuthenticated reports whether the current connection has completed the
// authentication handshake.
func (c *Channel) IsAuthenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session.Authenticated
}

// Session returns a copy of the current session.
func (c *Channel) Session() Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Authenticate sends the credentials for handshake step two. It is only
// meaningful while connected; the result arrives asynchronously as an
// authentication_result frame and, on success, a synthetic "authenticated"
// event. Returns whether the request was transmitted.
func (c *Channel) Authenticate(token, role string) bool {
	if st := c.core.State(); st != connection.StateConnected && st != connection.StateAuthenticated {
		c.logger.Warn("authenticate rejected: not connected", "state", st.String())
		return false
	}

	c.mu.Lock()
	c.session = Session{Token: token, Role: role}
	c.mu.Unlock()

	return c.core.Send(protocol.TypeAuthenticate, protocol.AuthRequest{
		Token:    token,
		UserRole: role,
	})
}

// ready is the fail-fast precondition shared by every privileged command.
func (c *Channel) ready() bool {
	if c.core.State() != connection.StateAuthenticated {
		return false
	}
	return c.IsAuthenticated()
}

// handleAuthResult processes the server's answer to an AuthRequest.
func (c *Channel) handleAuthResult(payload []byte) {
	var result protocol.AuthResult
	if err := json.Unmarshal(payload, &result); err != nil {
		c.logger.Warn("undecodable authentication result", "error", err)
		return
	}

	if !result.Success {
		c.mu.Lock()
		c.session.Authenticated = false
		c.mu.Unlock()
		c.core.SetAuthenticated(false)
		c.logger.Warn("authentication failed", "error", result.Error)
		return
	}

	c.mu.Lock()
	c.session.Authenticated = true
	if result.UserRole != "" {
		c.session.Role = result.UserRole
	}
	c.mu.Unlock()
	c.core.SetAuthenticated(true)
	c.logger.Info("authenticated", "role", result.UserRole)
}

// handleDisconnect clears the session whenever the connection drops, manual
// or not. The next connection starts unauthenticated.
func (c *Channel) handleDisconnect() {
	c.mu.Lock()
	c.session = Session{}
	c.mu.Unlock()
}

// channelSink sits between the voice core and the shared dispatcher. It
// updates the session from authentication and disconnect traffic, then
// forwards everything so subscribers see the uniform event stream.
type channelSink struct {
	ch   *Channel
	next *dispatch.Dispatcher
}

func (s *channelSink) Dispatch(msgType string, payload []byte) {
	switch msgType {
	case protocol.TypeAuthenticationResult:
		s.ch.handleAuthResult(payload)
		if s.ch.IsAuthenticated() {
			// Surface the success as a synthetic lifecycle event too,
			// mirroring connect/disconnect.
			s.next.Dispatch(protocol.EventAuthenticated, payload)
		}
	case protocol.EventDisconnect:
		s.ch.handleDisconnect()
	}
	s.next.Dispatch(msgType, payload)
}
