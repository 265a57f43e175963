package config

import "time"

// Config is the root configuration for the realtime client.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Client     ClientConfig     `yaml:"client"`
	Connection ConnectionConfig `yaml:"connection"`
}

// ServerConfig holds the gateway endpoints. The voice URL is only needed
// when the privileged voice channel is used.
type ServerConfig struct {
	URL      string `yaml:"url"`
	VoiceURL string `yaml:"voice_url"`
}

// ClientConfig identifies this client to the gateway.
type ClientConfig struct {
	Type            string `yaml:"type"`
	Version         string `yaml:"version"`
	AIDetection     bool   `yaml:"ai_detection"`
	FaceRecognition bool   `yaml:"face_recognition"`
	RealTimeAlerts  bool   `yaml:"real_time_alerts"`
}

// ConnectionConfig tunes the per-channel connection cores and sockets.
type ConnectionConfig struct {
	HeartbeatInterval    time.Duration `yaml:"heartbeat_interval"`
	ReconnectBaseDelay   time.Duration `yaml:"reconnect_base_delay"`
	ReconnectCapExponent int           `yaml:"reconnect_cap_exponent"`
	MaxReconnectAttempts int           `yaml:"max_reconnect_attempts"`
	AutoReconnect        *bool         `yaml:"auto_reconnect"`
	HandshakeTimeout     time.Duration `yaml:"handshake_timeout"`
	WriteTimeout         time.Duration `yaml:"write_timeout"`
	BufferSize           int           `yaml:"buffer_size"`
	Compression          bool          `yaml:"compression"`
}

// AutoReconnectEnabled resolves the tri-state flag; unset means enabled.
func (c *ConnectionConfig) AutoReconnectEnabled() bool {
	return c.AutoReconnect == nil || *c.AutoReconnect
}
