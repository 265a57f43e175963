package connection

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/apexops/realtime/internal/protocol"
	"github.com/apexops/realtime/internal/transport"
)

// Core manages one transport connection's lifecycle and exposes send/receive
// primitives to the layers above. All state transitions happen under c.mu;
// the generation counter invalidates callbacks from torn-down connections,
// since timer cancellation and teardown are not atomic.
type Core struct {
	cfg      Config
	dialer   transport.Dialer
	sink     EventSink
	logger   *slog.Logger
	clientID string

	mu          sync.Mutex
	state       State
	sock        transport.Transport
	gen         uint64 // bumped on every teardown; stale callbacks check it
	connecting  bool
	manualClose bool
	hbStop      chan struct{}
	pending     *time.Timer // at most one scheduled reconnect
	attempts    int

	backoff Backoff
	stats   *stats
}

// NewCore creates a Core. It does not connect; call Connect.
func NewCore(cfg Config, dialer transport.Dialer, sink EventSink, logger *slog.Logger) *Core {
	cfg.applyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Core{
		cfg:      cfg,
		dialer:   dialer,
		sink:     sink,
		logger:   logger.With("channel", cfg.Name),
		clientID: uuid.NewString(),
		backoff: Backoff{
			Base:        cfg.ReconnectBaseDelay,
			CapExponent: cfg.ReconnectCapExponent,
		},
		stats: newStats(),
	}
}

// State returns the current connection state.
func (c *Core) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Stats returns a snapshot of the connection counters.
func (c *Core) Stats() Stats {
	snap := c.stats.snapshot()
	snap.State = c.State()
	return snap
}

// ClientID returns the instance id sent in the identification frame.
func (c *Core) ClientID() string {
	return c.clientID
}

// Connect starts a connection attempt. It is a no-op while already
// Connecting or Connected, so re-entrant calls from repeated initialization
// are safe. An explicit Connect clears the manual-disconnect flag and
// replaces any scheduled reconnect.
func (c *Core) Connect() {
	c.connect(true)
}

func (c *Core) connect(explicit bool) {
	c.mu.Lock()
	if explicit {
		c.manualClose = false
		c.cancelReconnectLocked()
	} else if c.manualClose {
		// A reconnect timer raced a manual disconnect; drop the attempt.
		c.mu.Unlock()
		return
	}
	if c.connecting || c.state == StateConnected || c.state == StateAuthenticated {
		c.mu.Unlock()
		return
	}
	c.connecting = true
	c.state = StateConnecting
	gen := c.gen
	c.mu.Unlock()

	go c.dial(gen)
}

// dial runs the transport handshake off the caller's goroutine.
func (c *Core) dial(gen uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.HandshakeTimeout)
	defer cancel()

	sock, err := c.dialer.Dial(ctx, c.cfg.URL, c.cfg.Header)

	c.mu.Lock()
	if gen != c.gen || !c.connecting {
		// Disconnect happened while the handshake was in flight.
		c.mu.Unlock()
		if err == nil {
			sock.Close()
		}
		return
	}
	c.connecting = false

	if err != nil {
		c.state = StateDisconnected
		c.stats.setLastError(err.Error())
		c.mu.Unlock()

		c.logger.Warn("connect failed", "url", c.cfg.URL, "error", err)
		c.emitError(err.Error())
		c.scheduleReconnect()
		return
	}

	c.sock = sock
	c.state = StateConnected
	c.attempts = 0
	c.stats.onConnected(time.Now())
	hbStop := make(chan struct{})
	c.hbStop = hbStop
	c.mu.Unlock()

	c.logger.Info("connected", "url", c.cfg.URL)

	c.sendIdentification()
	go c.heartbeatLoop(hbStop)
	go c.pump(gen, sock)

	c.emit(protocol.EventConnect, map[string]any{"channel": c.cfg.Name})
}

// Disconnect tears the connection down and suppresses auto-reconnect until
// the next explicit Connect. Idempotent; always leaves zero live timers.
func (c *Core) Disconnect() {
	c.mu.Lock()
	c.manualClose = true
	c.connecting = false
	c.gen++
	c.stopHeartbeatLocked()
	c.cancelReconnectLocked()
	sock := c.sock
	c.sock = nil
	already := c.state == StateDisconnected
	c.state = StateDisconnected
	c.mu.Unlock()

	if sock != nil {
		sock.Close()
	}
	if !already {
		c.logger.Info("disconnected", "reason", "manual")
		c.emit(protocol.EventDisconnect, map[string]any{
			"channel": c.cfg.Name,
			"reason":  "manual",
		})
	}
}

// Send encodes and transmits one frame. Returns false without side effects
// when not connected; transport failures are recorded in LastError rather
// than returned.
func (c *Core) Send(msgType string, payload any) bool {
	c.mu.Lock()
	sock := c.sock
	ready := sock != nil && (c.state == StateConnected || c.state == StateAuthenticated)
	c.mu.Unlock()

	if !ready {
		return false
	}

	data, err := protocol.Encode(msgType, payload)
	if err != nil {
		c.logger.Error("encode frame", "type", msgType, "error", err)
		c.stats.setLastError(err.Error())
		return false
	}

	if err := sock.Send(data); err != nil {
		c.logger.Warn("send failed", "type", msgType, "error", err)
		c.stats.setLastError(err.Error())
		return false
	}

	c.stats.messagesSent.Inc()
	return true
}

// SetAuthenticated moves between Connected and Authenticated. Losing the
// connection always clears Authenticated via the regular teardown path.
func (c *Core) SetAuthenticated(v bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v && c.state == StateConnected {
		c.state = StateAuthenticated
	} else if !v && c.state == StateAuthenticated {
		c.state = StateConnected
	}
}

// pump consumes the transport's channels until the connection dies.
func (c *Core) pump(gen uint64, sock transport.Transport) {
	for {
		select {
		case msg, ok := <-sock.Messages():
			if !ok {
				c.handleClose(gen, "connection closed")
				return
			}
			c.handleFrame(msg)

		case err := <-sock.Errors():
			c.stats.setLastError(err.Error())
			c.emitError(err.Error())
			c.handleClose(gen, err.Error())
			return
		}
	}
}

// handleFrame decodes one inbound frame and fans it out. Malformed frames
// are logged and dropped, never fatal.
func (c *Core) handleFrame(msg transport.Message) {
	c.stats.messagesReceived.Inc()

	msgType, err := protocol.DecodeType(msg.Data)
	if err != nil {
		c.logger.Warn("dropping malformed frame", "error", err)
		return
	}

	if msgType == protocol.TypeHeartbeatAck {
		c.recordLatency(msg)
	}

	c.sink.Dispatch(msgType, msg.Data)
}

func (c *Core) recordLatency(msg transport.Message) {
	var ack protocol.HeartbeatAck
	if err := json.Unmarshal(msg.Data, &ack); err != nil || ack.ClientTime == 0 {
		return
	}
	latency := msg.ReceivedAt.UnixMilli() - ack.ClientTime
	if latency < 0 {
		latency = 0
	}
	c.stats.latencyMs.Store(latency)
}

// handleClose runs teardown for a transport-initiated close. The generation
// check makes it a no-op when Disconnect already tore this connection down.
func (c *Core) handleClose(gen uint64, reason string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.stopHeartbeatLocked()
	wasManual := c.manualClose
	sock := c.sock
	c.sock = nil
	c.state = StateDisconnected
	c.mu.Unlock()

	if sock != nil {
		sock.Close()
	}

	c.logger.Warn("connection lost", "reason", reason)
	c.emit(protocol.EventDisconnect, map[string]any{
		"channel": c.cfg.Name,
		"reason":  reason,
	})

	if c.cfg.AutoReconnect && !wasManual {
		c.scheduleReconnect()
	}
}

// scheduleReconnect arms the single pending reconnect timer, replacing any
// prior one. Beyond the attempt cap it records a terminal error instead;
// only an explicit Connect resumes from there.
func (c *Core) scheduleReconnect() {
	c.mu.Lock()
	if c.manualClose || !c.cfg.AutoReconnect {
		c.mu.Unlock()
		return
	}
	if c.attempts >= c.cfg.MaxReconnectAttempts {
		c.stats.setLastError(ErrMaxReconnects.Error())
		attempts := c.attempts
		c.mu.Unlock()

		c.logger.Error("giving up on reconnection", "attempts", attempts)
		c.emitError(ErrMaxReconnects.Error())
		return
	}

	delay := c.backoff.Delay(c.attempts)
	c.attempts++
	c.stats.reconnectAttempts.Store(int64(c.attempts))
	attempt := c.attempts

	c.cancelReconnectLocked()
	c.pending = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.pending = nil
		c.mu.Unlock()
		c.connect(false)
	})
	c.mu.Unlock()

	c.logger.Info("reconnect scheduled", "attempt", attempt, "delay", delay)
}

// heartbeatLoop sends the liveness probe while its connection session is up.
// The stop channel is closed as the first step of any teardown, and the
// state is re-checked before every send because the two are not atomic.
func (c *Core) heartbeatLoop(stop chan struct{}) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if st := c.State(); st != StateConnected && st != StateAuthenticated {
				continue
			}
			c.Send(protocol.TypeHeartbeat, protocol.Heartbeat{
				ClientTime: time.Now().UnixMilli(),
			})
		}
	}
}

func (c *Core) sendIdentification() {
	c.Send(protocol.TypeClientIdentification, protocol.Identification{
		ClientType:   c.cfg.ClientType,
		ClientID:     c.clientID,
		Capabilities: c.cfg.Capabilities,
		Version:      c.cfg.Version,
	})
}

func (c *Core) stopHeartbeatLocked() {
	if c.hbStop != nil {
		close(c.hbStop)
		c.hbStop = nil
	}
}

func (c *Core) cancelReconnectLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

// HasPendingReconnect reports whether a reconnect timer is armed.
func (c *Core) HasPendingReconnect() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

func (c *Core) emit(event string, fields map[string]any) {
	payload, err := json.Marshal(fields)
	if err != nil {
		payload = nil
	}
	c.sink.Dispatch(event, payload)
}

func (c *Core) emitError(msg string) {
	c.emit(protocol.TypeError, map[string]any{
		"channel": c.cfg.Name,
		"message": msg,
	})
}
