package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that required fields are set and values are sane.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return errors.New("server.url is required")
	}
	if err := validateWSURL("server.url", c.Server.URL); err != nil {
		return err
	}
	if c.Server.VoiceURL != "" {
		if err := validateWSURL("server.voice_url", c.Server.VoiceURL); err != nil {
			return err
		}
	}

	if c.Connection.HeartbeatInterval < 0 {
		return errors.New("connection.heartbeat_interval must be positive")
	}
	if c.Connection.ReconnectBaseDelay < 0 {
		return errors.New("connection.reconnect_base_delay must be positive")
	}
	if c.Connection.MaxReconnectAttempts < 1 {
		return errors.New("connection.max_reconnect_attempts must be >= 1")
	}
	if c.Connection.BufferSize < 1 {
		return errors.New("connection.buffer_size must be >= 1")
	}

	return nil
}

func validateWSURL(field, url string) error {
	if !strings.HasPrefix(url, "ws://") && !strings.HasPrefix(url, "wss://") {
		return fmt.Errorf("%s must be a ws:// or wss:// URL, got %q", field, url)
	}
	return nil
}
