// Package realtime is the APEX platform's real-time connection manager.
//
// A Manager maintains the client side of the platform's WebSocket plane: a
// primary telemetry/alert channel that is always constructed, and a
// privileged voice-call channel created lazily the first time it is used.
// Both channels share one event dispatcher, so application code subscribes
// to message types in one place regardless of which connection delivered
// them.
//
// Construct exactly one Manager at process startup and pass it by reference
// to every consumer. The Manager outlives any individual subscriber; its
// connections and subscription registry are not tied to a caller's
// lifetime, and subscribers must cancel their own subscriptions when they
// go away.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/apexops/realtime/internal/config"
	"github.com/apexops/realtime/internal/connection"
	"github.com/apexops/realtime/internal/dispatch"
	"github.com/apexops/realtime/internal/protocol"
	"github.com/apexops/realtime/internal/transport"
	"github.com/apexops/realtime/internal/version"
	"github.com/apexops/realtime/internal/voice"
)

// Manager composes the per-channel connection cores behind one facade.
type Manager struct {
	cfg    *config.Config
	logger *slog.Logger

	dispatcher *dispatch.Dispatcher
	dialer     transport.Dialer
	primary    *connection.Core

	voiceMu sync.Mutex
	voiceCh *voice.Channel
}

// Stats is the per-channel snapshot returned by Manager.Stats. Voice is nil
// until the voice channel has been created.
type Stats struct {
	Primary connection.Stats
	Voice   *connection.Stats
}

// New creates the Manager. It does not connect; call Connect.
func New(cfg *config.Config, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}

	dialer := transport.NewWSDialer(transport.Config{
		HandshakeTimeout: cfg.Connection.HandshakeTimeout,
		WriteTimeout:     cfg.Connection.WriteTimeout,
		BufferSize:       cfg.Connection.BufferSize,
		Compression:      cfg.Connection.Compression,
	}, logger)

	return newManager(cfg, dialer, logger)
}

// newManager is the injectable constructor shared with the tests.
func newManager(cfg *config.Config, dialer transport.Dialer, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		cfg:        cfg,
		logger:     logger,
		dispatcher: dispatch.NewDispatcher(logger),
		dialer:     dialer,
	}
	m.primary = connection.NewCore(m.coreConfig("primary", cfg.Server.URL), dialer, m.dispatcher, logger)
	return m
}

func (m *Manager) coreConfig(name, url string) connection.Config {
	clientVersion := m.cfg.Client.Version
	if clientVersion == "" {
		clientVersion = version.Version
	}

	return connection.Config{
		Name:       name,
		URL:        url,
		ClientType: m.cfg.Client.Type,
		Version:    clientVersion,
		Capabilities: protocol.Capabilities{
			AIDetection:     m.cfg.Client.AIDetection,
			FaceRecognition: m.cfg.Client.FaceRecognition,
			RealTimeAlerts:  m.cfg.Client.RealTimeAlerts,
			Compression:     m.cfg.Connection.Compression,
		},
		HeartbeatInterval:    m.cfg.Connection.HeartbeatInterval,
		ReconnectBaseDelay:   m.cfg.Connection.ReconnectBaseDelay,
		ReconnectCapExponent: m.cfg.Connection.ReconnectCapExponent,
		MaxReconnectAttempts: m.cfg.Connection.MaxReconnectAttempts,
		AutoReconnect:        m.cfg.Connection.AutoReconnectEnabled(),
		HandshakeTimeout:     m.cfg.Connection.HandshakeTimeout,
	}
}

// Connect starts the primary channel. Safe to call repeatedly.
func (m *Manager) Connect() {
	m.primary.Connect()
}

// Disconnect tears down every channel. Idempotent.
func (m *Manager) Disconnect() {
	m.primary.Disconnect()

	m.voiceMu.Lock()
	ch := m.voiceCh
	m.voiceMu.Unlock()
	if ch != nil {
		ch.Disconnect()
	}
}

// OnMessage subscribes a handler to one message type. Server frames and
// synthetic lifecycle events (connect, authenticated, disconnect, error)
// use the same registry. Cancel the returned subscription on teardown.
func (m *Manager) OnMessage(msgType string, handler dispatch.Handler) dispatch.Subscription {
	return m.dispatcher.Subscribe(msgType, handler)
}

// OffMessage removes every handler for a message type.
func (m *Manager) OffMessage(msgType string) {
	m.dispatcher.Clear(msgType)
}

// SendMessage transmits an arbitrary frame on the primary channel. Returns
// whether the frame was handed to the transport.
func (m *Manager) SendMessage(msgType string, payload any) bool {
	return m.primary.Send(msgType, payload)
}

// Voice returns the privileged voice channel, creating it on first use.
// Creation does not connect; call Connect and Authenticate on the result.
func (m *Manager) Voice() *voice.Channel {
	m.voiceMu.Lock()
	defer m.voiceMu.Unlock()

	if m.voiceCh == nil {
		url := m.cfg.Server.VoiceURL
		if url == "" {
			url = m.cfg.Server.URL
		}
		m.voiceCh = voice.NewChannel(m.coreConfig(voice.ChannelName, url), m.dialer, m.dispatcher, m.logger)
		m.logger.Info("voice channel created", "url", url)
	}
	return m.voiceCh
}

// VoiceCreated reports whether the lazy voice channel exists yet.
func (m *Manager) VoiceCreated() bool {
	m.voiceMu.Lock()
	defer m.voiceMu.Unlock()
	return m.voiceCh != nil
}

// Stats returns a point-in-time snapshot of every channel's counters.
func (m *Manager) Stats() Stats {
	s := Stats{Primary: m.primary.Stats()}

	m.voiceMu.Lock()
	ch := m.voiceCh
	m.voiceMu.Unlock()
	if ch != nil {
		vs := ch.Stats()
		s.Voice = &vs
	}
	return s
}
